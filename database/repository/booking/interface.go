// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"prepbook/models"
)

// StatusUpdate describes a conditional status transition.
type StatusUpdate struct {
	Status             string
	PaymentID          string
	CancellationReason string
	Settled            *bool
	At                 time.Time
}

type BookingRepository interface {
	// Create inserts a booking. Returns repository.ErrDuplicate when another active booking holds the same slot.
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ExistsActiveSlot reports whether a pending, confirmed or completed booking holds the exact slot.
	ExistsActiveSlot(ctx context.Context, providerID, date, start, end string) (bool, error)
	ListActiveByProviderDate(ctx context.Context, providerID, date string) ([]models.Booking, error)
	// TransitionStatus applies update only while the booking is in one of from.
	// Returns repository.ErrStateChanged when the booking exists in another status.
	TransitionStatus(ctx context.Context, id string, from []string, update StatusUpdate) (*models.Booking, error)
	ListPendingCreatedBefore(ctx context.Context, before time.Time) ([]models.Booking, error)
	ListByStatusOnDate(ctx context.Context, status, date string) ([]models.Booking, error)
	// MarkReminderSent flips the reminder flag for offset (15 or 5) and reports whether this call flipped it.
	MarkReminderSent(ctx context.Context, id string, offset int) (bool, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error)
}

// ReminderField returns the document field tracking the reminder sent for offset minutes.
func ReminderField(offset int) string {
	if offset == 5 {
		return "reminder5Sent"
	}
	return "reminder15Sent"
}
