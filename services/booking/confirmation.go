package booking

import (
	"context"
	"errors"

	"prepbook/database/repository"
	bookingRepo "prepbook/database/repository/booking"
	"prepbook/models"
	"prepbook/services/payment"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, unitError(err, "could not load booking")
	}
	return b, nil
}

// ConfirmPayment settles a pending gateway booking once the gateway's signature checks out.
func (s *DefaultBookingService) ConfirmPayment(ctx context.Context, bookingID string, proof models.PaymentProof) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !s.Verifier.Verify(proof) {
		s.Logger.Warn("payment signature mismatch", zap.String("bookingId", bookingID), zap.String("orderId", proof.OrderID))
		return nil, ErrSignatureMismatch
	}
	if b.PaymentMethod != models.PaymentGateway {
		return nil, invalidState("only gateway bookings take payment confirmations")
	}
	if b.Status != models.BookingPending {
		return nil, invalidState("booking is " + b.Status + ", not awaiting payment")
	}
	if b.PaymentOrderID != proof.OrderID {
		return nil, ErrOrderMismatch
	}
	if err := s.checkOrder(ctx, b); err != nil {
		return nil, err
	}

	platformID, err := s.platformAccount(ctx)
	if err != nil {
		return nil, err
	}

	settled := true
	var updated *models.Booking
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		paid := *b
		paid.PaymentID = proof.PaymentID
		if err := s.claimPayment(ctx, &paid); err != nil {
			return err
		}
		var err error
		updated, err = s.Bookings.TransitionStatus(ctx, b.ID, []string{models.BookingPending}, bookingRepo.StatusUpdate{
			Status:    models.BookingConfirmed,
			PaymentID: proof.PaymentID,
			Settled:   &settled,
			At:        s.now(),
		})
		switch {
		case errors.Is(err, repository.ErrStateChanged):
			return invalidState("booking is no longer awaiting payment")
		case errors.Is(err, repository.ErrDuplicate):
			return ErrPaymentUsed
		case err != nil:
			return err
		}
		_, err = s.Wallet.PostBatch(ctx, settlementPostings(updated, platformID, models.EventPaymentConfirmed, false))
		return err
	})
	if err != nil {
		return nil, unitError(err, "could not confirm payment")
	}

	s.Logger.Info("booking payment confirmed",
		zap.String("bookingId", updated.ID), zap.String("paymentId", proof.PaymentID))
	s.notifyConfirmed(ctx, updated)
	return updated, nil
}

// claimPayment consumes b's gateway payment so no other booking or top-up can reuse it.
func (s *DefaultBookingService) claimPayment(ctx context.Context, b *models.Booking) error {
	return s.Wallet.ClaimPayment(ctx, models.PaymentClaim{
		PaymentID: b.PaymentID,
		OrderID:   b.PaymentOrderID,
		SubjectID: b.UserID,
		Purpose:   models.PurposeBooking,
		BookingID: b.ID,
		Amount:    b.Amount,
		CreatedAt: s.now(),
	})
}

// checkOrder asks the gateway whether b's order was paid by b's payer for b's amount.
func (s *DefaultBookingService) checkOrder(ctx context.Context, b *models.Booking) error {
	if s.Orders == nil {
		return nil
	}
	_, err := payment.PaidOrder(ctx, s.Orders, b.PaymentOrderID, b.UserID, b.Amount)
	return err
}
