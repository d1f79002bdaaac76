package booking

import (
	"context"
	"time"

	"prepbook/database/repository"
	bookingRepo "prepbook/database/repository/booking"
	userRepo "prepbook/database/repository/user"
	"prepbook/models"
	"prepbook/services/notification"
	"prepbook/services/payment"
	"prepbook/services/wallet"

	"go.uber.org/zap"
)

// BookingService owns the booking state machine:
// pending -> confirmed -> completed, with pending/confirmed -> cancelled.
type BookingService interface {
	Create(ctx context.Context, subjectID string, req models.CreateBookingRequest) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID string, proof models.PaymentProof) (*models.Booking, error)
	Cancel(ctx context.Context, subjectID, bookingID, reason string) (*models.Booking, error)
	Complete(ctx context.Context, subjectID, bookingID string) (*models.Booking, error)
	// Expire cancels a booking still waiting for payment. Used by the reaper.
	Expire(ctx context.Context, bookingID string) (*models.Booking, error)
	Get(ctx context.Context, subjectID, role, bookingID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Wallet   wallet.WalletService
	Tx       repository.TxRunner
	Verifier payment.SignatureVerifier
	// Orders, when set, checks proofs against the gateway's own record of the order.
	Orders   payment.OrderLookup
	Notifier notification.Notifier

	FeePercent         float64
	CancellationCutoff time.Duration
	Location           *time.Location
	Now                func() time.Time
	Logger             *zap.Logger
}

const ExpiryReason = "payment not completed in time"

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}
