package booking

import (
	"context"
	"errors"

	"prepbook/database/repository"
	"prepbook/models"
	"prepbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) validateCreate(subjectID string, req models.CreateBookingRequest) error {
	if subjectID == "" || req.ProviderID == "" {
		return invalidRequest("INVALID_REQUEST", "payer and interviewer are required")
	}
	if subjectID == req.ProviderID {
		return invalidRequest("INVALID_REQUEST", "you cannot book your own session")
	}
	if len(req.Date) != len(utils.DateLayout) {
		return invalidRequest("INVALID_DATE", "date must be YYYY-MM-DD")
	}
	if _, err := utils.ParseDate(req.Date, s.loc()); err != nil {
		return invalidRequest("INVALID_DATE", "date must be YYYY-MM-DD")
	}
	start, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return invalidRequest("INVALID_TIME", "start time must be HH:MM")
	}
	end, err := utils.ParseClock(req.EndTime)
	if err != nil {
		return invalidRequest("INVALID_TIME", "end time must be HH:MM")
	}
	if end <= start {
		return invalidRequest("INVALID_TIME", "end time must be after start time")
	}
	if req.Amount <= 0 {
		return invalidRequest("INVALID_REQUEST", "amount must be positive")
	}
	if req.PaymentMethod != models.PaymentWallet && req.PaymentMethod != models.PaymentGateway {
		return invalidRequest("INVALID_REQUEST", "payment method must be wallet or gateway")
	}
	if req.PaymentMethod == models.PaymentGateway && gatewayOrderID(req) == "" {
		return invalidRequest("INVALID_REQUEST", "gateway bookings need a payment order id")
	}

	startsAt, _ := utils.SlotStart(req.Date, req.StartTime, s.loc())
	if !startsAt.After(s.now()) {
		return invalidRequest("PAST_DATE", "the selected slot has already started")
	}
	return nil
}

// gatewayOrderID is the order a gateway booking pays through. A proof's order stands in
// when the client sent no separate order id.
func gatewayOrderID(req models.CreateBookingRequest) string {
	if req.PaymentOrderID != "" {
		return req.PaymentOrderID
	}
	if req.Payment != nil {
		return req.Payment.OrderID
	}
	return ""
}

// Create books a slot. Wallet and pre-verified gateway payments settle immediately, other gateway
// bookings wait as pending until ConfirmPayment or the reaper.
func (s *DefaultBookingService) Create(ctx context.Context, subjectID string, req models.CreateBookingRequest) (*models.Booking, error) {
	logger := s.Logger.With(zap.String("userId", subjectID), zap.String("providerId", req.ProviderID))

	if err := s.validateCreate(subjectID, req); err != nil {
		return nil, err
	}

	if _, err := s.Users.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, utils.Internal("could not load user", err)
	}
	if _, err := s.Users.FindApprovedProviderByID(ctx, req.ProviderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, utils.Internal("could not load interviewer", err)
	}

	taken, err := s.Bookings.ExistsActiveSlot(ctx, req.ProviderID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, utils.Internal("could not check slot", err)
	}
	if taken {
		return nil, ErrSlotUnavailable
	}

	now := s.now()
	amount := roundAmount(req.Amount)
	share, fee := Split(amount, s.FeePercent)
	b := &models.Booking{
		ID:             uuid.New().String(),
		UserID:         subjectID,
		ProviderID:     req.ProviderID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Amount:         amount,
		ProviderShare:  share,
		PlatformFee:    fee,
		Status:         models.BookingPending,
		PaymentMethod:  req.PaymentMethod,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	debitPayer := false
	switch {
	case req.PaymentMethod == models.PaymentWallet:
		summary, err := s.Wallet.Summary(ctx, subjectID, models.RoleUser)
		if err != nil {
			return nil, err
		}
		if summary.Balance < amount {
			return nil, utils.Conflict("INSUFFICIENT_BALANCE", "wallet balance does not cover the booking amount")
		}
		b.Status = models.BookingConfirmed
		debitPayer = true
	case req.Payment != nil:
		b.PaymentOrderID = gatewayOrderID(req)
		if b.PaymentOrderID != req.Payment.OrderID {
			return nil, ErrOrderMismatch
		}
		if !s.Verifier.Verify(*req.Payment) {
			return nil, ErrSignatureMismatch
		}
		if err := s.checkOrder(ctx, b); err != nil {
			return nil, err
		}
		b.Status = models.BookingConfirmed
		b.PaymentID = req.Payment.PaymentID
	default:
		b.PaymentOrderID = gatewayOrderID(req)
	}

	settle := b.Status == models.BookingConfirmed
	var platformID string
	if settle {
		if platformID, err = s.platformAccount(ctx); err != nil {
			return nil, err
		}
		b.Settled = true
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if b.PaymentID != "" {
			if err := s.claimPayment(ctx, b); err != nil {
				return err
			}
		}
		if err := s.Bookings.Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrSlotUnavailable
			}
			return err
		}
		if !settle {
			return nil
		}
		_, err := s.Wallet.PostBatch(ctx, settlementPostings(b, platformID, models.EventBookingCreated, debitPayer))
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrSlotUnavailable) && !errors.Is(err, ErrPaymentUsed) {
			logger.Error("booking creation failed", zap.Error(err))
		}
		return nil, unitError(err, "could not create booking")
	}

	logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("status", b.Status),
		zap.String("paymentMethod", b.PaymentMethod),
		zap.Float64("amount", b.Amount))

	if settle {
		s.notifyConfirmed(ctx, b)
	}
	return b, nil
}

func (s *DefaultBookingService) notifyConfirmed(ctx context.Context, b *models.Booking) {
	if s.Notifier != nil {
		s.Notifier.NotifyBookingConfirmed(context.WithoutCancel(ctx), b)
	}
}

func (s *DefaultBookingService) notifyCancelled(ctx context.Context, b *models.Booking) {
	if s.Notifier != nil {
		s.Notifier.NotifyBookingCancelled(context.WithoutCancel(ctx), b)
	}
}
