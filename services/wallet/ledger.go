package wallet

import (
	"context"
	"errors"
	"fmt"

	"prepbook/database/repository"
	"prepbook/models"
	"prepbook/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInsufficientBalance = utils.Conflict("INSUFFICIENT_BALANCE", "wallet balance does not cover the amount")
	ErrDuplicatePosting    = utils.Conflict("DUPLICATE_POSTING", "this money event was already posted")
	ErrPaymentUsed         = utils.Conflict("PAYMENT_ALREADY_USED", "this payment was already applied")
)

func validRole(role string) bool {
	return role == models.RoleUser || role == models.RoleInterviewer || role == models.RoleAdmin
}

func validatePosting(p models.Posting) error {
	if p.SubjectID == "" || !validRole(p.Role) {
		return utils.Validation("INVALID_REQUEST", "posting needs a subject and a known role")
	}
	if p.Type != models.TxCredit && p.Type != models.TxDebit {
		return utils.Validation("INVALID_REQUEST", fmt.Sprintf("unknown transaction type %q", p.Type))
	}
	if !decimal.NewFromFloat(p.Amount).IsPositive() {
		return utils.Validation("INVALID_REQUEST", "posting amount must be positive")
	}
	return nil
}

func (s *DefaultWalletService) GetOrCreate(ctx context.Context, subjectID, role string) (*models.Wallet, error) {
	if subjectID == "" || !validRole(role) {
		return nil, utils.Validation("INVALID_REQUEST", "wallet needs a subject and a known role")
	}
	w, err := s.Repo.GetOrCreate(ctx, subjectID, role)
	if err != nil {
		return nil, utils.Internal("could not load wallet", err)
	}
	return w, nil
}

func (s *DefaultWalletService) apply(ctx context.Context, p models.Posting) (*models.WalletTransaction, error) {
	tx, err := s.Repo.Apply(ctx, p)
	switch {
	case err == nil:
		return tx, nil
	case errors.Is(err, repository.ErrInsufficientFunds):
		return nil, ErrInsufficientBalance
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrDuplicatePosting
	default:
		return nil, err
	}
}

func (s *DefaultWalletService) Post(ctx context.Context, p models.Posting) (*models.WalletTransaction, error) {
	txns, err := s.PostBatch(ctx, []models.Posting{p})
	if err != nil {
		return nil, err
	}
	return &txns[0], nil
}

func (s *DefaultWalletService) PostBatch(ctx context.Context, postings []models.Posting) ([]models.WalletTransaction, error) {
	for _, p := range postings {
		if err := validatePosting(p); err != nil {
			return nil, err
		}
	}

	var out []models.WalletTransaction
	err := s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		out = out[:0]
		for _, p := range postings {
			tx, err := s.apply(ctx, p)
			if err != nil {
				return err
			}
			out = append(out, *tx)
		}
		return nil
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		if errors.Is(err, repository.ErrCommitUnknown) {
			return nil, utils.Reconciliation("ledger commit outcome unknown", err)
		}
		s.Logger.Error("ledger posting failed", zap.Int("postings", len(postings)), zap.Error(err))
		return nil, utils.Internal("could not post ledger transactions", err)
	}
	return out, nil
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func (s *DefaultWalletService) Summary(ctx context.Context, subjectID, role string) (*models.WalletSummary, error) {
	if subjectID == "" || !validRole(role) {
		return nil, utils.Validation("INVALID_REQUEST", "wallet needs a subject and a known role")
	}

	balance := 0.0
	w, err := s.Repo.Get(ctx, subjectID, role)
	switch {
	case err == nil:
		balance = w.Balance
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, utils.Internal("could not load wallet", err)
	}

	totals, err := s.Repo.Totals(ctx, subjectID, role)
	if err != nil {
		return nil, utils.Internal("could not aggregate wallet transactions", err)
	}
	totals.Credits = round2(totals.Credits)
	totals.Debits = round2(totals.Debits)

	return &models.WalletSummary{SubjectID: subjectID, Role: role, Balance: round2(balance), Totals: totals}, nil
}

func (s *DefaultWalletService) ListTransactions(ctx context.Context, subjectID, role string, page, limit int) ([]models.WalletTransaction, int64, error) {
	if subjectID == "" || !validRole(role) {
		return nil, 0, utils.Validation("INVALID_REQUEST", "wallet needs a subject and a known role")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	txns, total, err := s.Repo.ListTransactions(ctx, subjectID, role, page, limit)
	if err != nil {
		return nil, 0, utils.Internal("could not list wallet transactions", err)
	}
	return txns, total, nil
}

func (s *DefaultWalletService) ListSummaries(ctx context.Context, role string) ([]models.WalletSummary, error) {
	if role != "" && !validRole(role) {
		return nil, utils.Validation("INVALID_REQUEST", fmt.Sprintf("unknown role %q", role))
	}
	wallets, err := s.Repo.ListWallets(ctx, role)
	if err != nil {
		return nil, utils.Internal("could not list wallets", err)
	}

	out := make([]models.WalletSummary, 0, len(wallets))
	for _, w := range wallets {
		totals, err := s.Repo.Totals(ctx, w.SubjectID, w.Role)
		if err != nil {
			return nil, utils.Internal("could not aggregate wallet transactions", err)
		}
		totals.Credits = round2(totals.Credits)
		totals.Debits = round2(totals.Debits)
		out = append(out, models.WalletSummary{SubjectID: w.SubjectID, Role: w.Role, Balance: round2(w.Balance), Totals: totals})
	}
	return out, nil
}
