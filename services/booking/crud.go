package booking

import (
	"context"

	"prepbook/models"
	"prepbook/utils"
)

// Get returns a booking to its payer, its interviewer or an admin.
func (s *DefaultBookingService) Get(ctx context.Context, subjectID, role, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && b.UserID != subjectID && b.ProviderID != subjectID {
		return nil, ErrNotParty
	}
	return b, nil
}

func (s *DefaultBookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error) {
	if filter.Status != "" {
		switch filter.Status {
		case models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled:
		default:
			return nil, 0, invalidRequest("INVALID_REQUEST", "unknown booking status "+filter.Status)
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	bookings, total, err := s.Bookings.List(ctx, filter)
	if err != nil {
		return nil, 0, utils.Internal("could not list bookings", err)
	}
	return bookings, total, nil
}
