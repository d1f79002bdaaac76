package wallet

import (
	"context"
	"errors"
	"time"

	"prepbook/database/repository"
	"prepbook/models"
	"prepbook/services/payment"
	"prepbook/utils"

	"go.uber.org/zap"
)

func (s *DefaultWalletService) ClaimPayment(ctx context.Context, claim models.PaymentClaim) error {
	if claim.PaymentID == "" {
		return utils.Validation("INVALID_REQUEST", "payment claim needs a payment id")
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	err := s.Repo.ClaimPayment(ctx, &claim)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		s.Logger.Warn("payment replay rejected",
			zap.String("paymentId", claim.PaymentID), zap.String("subjectId", claim.SubjectID))
		return ErrPaymentUsed
	default:
		return err
	}
}

// TopUp credits the caller's user wallet from a verified gateway payment.
// The amount comes from the gateway order and the payment id can be spent once.
func (s *DefaultWalletService) TopUp(ctx context.Context, subjectID string, req models.TopUpRequest) (*models.WalletTransaction, error) {
	if req.Amount < 0 {
		return nil, utils.Validation("INVALID_REQUEST", "top-up amount must be positive")
	}
	if s.Verifier == nil || !s.Verifier.Verify(req.Payment) {
		return nil, utils.Payment("SIGNATURE_MISMATCH", "payment signature could not be verified")
	}
	if s.Orders == nil {
		return nil, utils.Internal("top-ups are not configured", errors.New("no order lookup"))
	}
	order, err := payment.PaidOrder(ctx, s.Orders, req.Payment.OrderID, subjectID, req.Amount)
	if err != nil {
		return nil, err
	}

	var tx *models.WalletTransaction
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		err := s.ClaimPayment(ctx, models.PaymentClaim{
			PaymentID: req.Payment.PaymentID,
			OrderID:   order.OrderID,
			SubjectID: subjectID,
			Purpose:   models.PurposeTopUp,
			Amount:    order.Amount,
		})
		if err != nil {
			return err
		}
		tx, err = s.Post(ctx, models.Posting{
			SubjectID: subjectID,
			Role:      models.RoleUser,
			Type:      models.TxCredit,
			Amount:    round2(order.Amount),
			Reason:    "Wallet top-up",
			Event:     models.EventTopUp,
			Reference: req.Payment.PaymentID,
		})
		return err
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		if errors.Is(err, repository.ErrCommitUnknown) {
			return nil, utils.Reconciliation("top-up commit outcome unknown", err)
		}
		return nil, utils.Internal("could not top up wallet", err)
	}

	s.Logger.Info("wallet topped up",
		zap.String("subjectId", subjectID),
		zap.Float64("amount", tx.Amount),
		zap.String("orderId", order.OrderID),
		zap.String("paymentId", req.Payment.PaymentID))
	return tx, nil
}
