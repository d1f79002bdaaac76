// File: services/booking/bookingUpdates.go
package booking

import (
	"context"
	"errors"
	"strings"

	"prepbook/database/repository"
	bookingRepo "prepbook/database/repository/booking"
	"prepbook/models"
	"prepbook/utils"

	"go.uber.org/zap"
)

// Cancel lets the payer cancel a booking that starts at least CancellationCutoff from now.
// A settled booking is refunded with a reversing triad in the same unit as the status change.
func (s *DefaultBookingService) Cancel(ctx context.Context, subjectID, bookingID, reason string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != subjectID {
		return nil, ErrNotOwner
	}
	if b.IsTerminal() {
		return nil, invalidState("booking is already " + b.Status)
	}

	startsAt, err := utils.SlotStart(b.Date, b.StartTime, s.loc())
	if err != nil {
		return nil, utils.Internal("booking has a malformed start", err)
	}
	if startsAt.Sub(s.now()) < s.CancellationCutoff {
		return nil, ErrWindowClosed
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "cancelled by user"
	}
	// Only from the status we saw: a concurrent confirmation changes whether a refund is owed.
	return s.cancel(ctx, b, []string{b.Status}, reason, models.EventBookingCancelled)
}

// Expire cancels a booking that is still pending. Bookings that moved on are left alone.
func (s *DefaultBookingService) Expire(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending {
		return nil, invalidState("booking is no longer pending")
	}
	return s.cancel(ctx, b, []string{models.BookingPending}, ExpiryReason, models.EventBookingExpired)
}

func (s *DefaultBookingService) cancel(ctx context.Context, b *models.Booking, from []string, reason, event string) (*models.Booking, error) {
	var platformID string
	if b.Settled {
		var err error
		if platformID, err = s.platformAccount(ctx); err != nil {
			return nil, err
		}
	}

	var updated *models.Booking
	err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if b.Settled {
			if _, err := s.Wallet.PostBatch(ctx, reversalPostings(b, platformID, event, reason)); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.Bookings.TransitionStatus(ctx, b.ID, from, bookingRepo.StatusUpdate{
			Status:             models.BookingCancelled,
			CancellationReason: reason,
			At:                 s.now(),
		})
		if errors.Is(err, repository.ErrStateChanged) {
			return invalidState("booking changed while cancelling")
		}
		return err
	})
	if err != nil {
		s.Logger.Warn("booking cancellation failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, unitError(err, "could not cancel booking")
	}

	s.Logger.Info("booking cancelled",
		zap.String("bookingId", updated.ID),
		zap.String("reason", reason),
		zap.Bool("refunded", b.Settled))
	s.notifyCancelled(ctx, updated)
	return updated, nil
}

// Complete marks a confirmed booking completed. Completing twice is a no-op.
func (s *DefaultBookingService) Complete(ctx context.Context, subjectID, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != subjectID && b.ProviderID != subjectID {
		return nil, ErrNotParty
	}
	if b.Status == models.BookingCompleted {
		return b, nil
	}
	if b.Status != models.BookingConfirmed {
		return nil, invalidState("only confirmed bookings can be completed")
	}

	updated, err := s.Bookings.TransitionStatus(ctx, b.ID, []string{models.BookingConfirmed}, bookingRepo.StatusUpdate{
		Status: models.BookingCompleted,
		At:     s.now(),
	})
	if errors.Is(err, repository.ErrStateChanged) {
		current, lerr := s.load(ctx, bookingID)
		if lerr == nil && current.Status == models.BookingCompleted {
			return current, nil
		}
		return nil, invalidState("booking changed while completing")
	}
	if err != nil {
		return nil, unitError(err, "could not complete booking")
	}

	s.Logger.Info("booking completed", zap.String("bookingId", updated.ID), zap.String("by", subjectID))
	return updated, nil
}
