package memoryRepo

import (
	"context"
	"sort"
	"time"

	"prepbook/database/repository"
	walletRepo "prepbook/database/repository/wallet"
	"prepbook/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type walletStore struct{ *Store }

// Wallets returns the store's WalletRepository.
func (s *Store) Wallets() walletRepo.WalletRepository { return walletStore{s} }

func walletKey(subjectID, role string) string { return subjectID + "|" + role }

// getOrCreate requires s.mu.
func (r walletStore) getOrCreate(subjectID, role string) models.Wallet {
	key := walletKey(subjectID, role)
	if w, ok := r.wallets[key]; ok {
		return w
	}
	now := time.Now()
	w := models.Wallet{ID: uuid.New().String(), SubjectID: subjectID, Role: role, CreatedAt: now, UpdatedAt: now}
	r.wallets[key] = w
	return w
}

func (r walletStore) GetOrCreate(ctx context.Context, subjectID, role string) (*models.Wallet, error) {
	var w models.Wallet
	_ = r.write(ctx, func() error {
		w = r.getOrCreate(subjectID, role)
		return nil
	})
	return &w, nil
}

func (r walletStore) Get(_ context.Context, subjectID, role string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletKey(subjectID, role)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r walletStore) Apply(ctx context.Context, p models.Posting) (*models.WalletTransaction, error) {
	var tx *models.WalletTransaction
	err := r.write(ctx, func() error {
		var err error
		tx, err = r.apply(p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// apply requires s.mu.
func (r walletStore) apply(p models.Posting) (*models.WalletTransaction, error) {
	if err := r.fault("wallet.apply"); err != nil {
		return nil, err
	}
	w := r.getOrCreate(p.SubjectID, p.Role)
	for _, t := range r.txns {
		if t.WalletID != w.ID || t.Event != p.Event {
			continue
		}
		if (p.BookingID != "" && t.BookingID == p.BookingID) || (p.Reference != "" && t.Reference == p.Reference) {
			return nil, repository.ErrDuplicate
		}
	}
	if p.Type == models.TxDebit && p.RequireFunds && w.Balance < p.Amount {
		return nil, repository.ErrInsufficientFunds
	}

	now := time.Now()
	w.Balance, _ = decimal.NewFromFloat(w.Balance).Add(decimal.NewFromFloat(p.SignedAmount())).Float64()
	w.UpdatedAt = now
	r.wallets[walletKey(p.SubjectID, p.Role)] = w

	tx := models.WalletTransaction{
		ID:          uuid.New().String(),
		WalletID:    w.ID,
		SubjectID:   w.SubjectID,
		Role:        w.Role,
		Type:        p.Type,
		Amount:      p.SignedAmount(),
		Reason:      p.Reason,
		BookingID:   p.BookingID,
		Event:       p.Event,
		Reference:   p.Reference,
		Breakdown:   p.Breakdown,
		DisplayName: p.DisplayName,
		CreatedAt:   now,
	}
	r.txns = append(r.txns, tx)
	return &tx, nil
}

func (r walletStore) Totals(_ context.Context, subjectID, role string) (models.WalletTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	credits, debits := decimal.Zero, decimal.Zero
	var count int64
	for _, t := range r.txns {
		if t.SubjectID != subjectID || t.Role != role {
			continue
		}
		amt := decimal.NewFromFloat(t.Amount)
		if amt.IsPositive() {
			credits = credits.Add(amt)
		} else {
			debits = debits.Add(amt.Abs())
		}
		count++
	}
	c, _ := credits.Float64()
	d, _ := debits.Float64()
	return models.WalletTotals{Credits: c, Debits: d, Count: count}, nil
}

func (r walletStore) ListTransactions(_ context.Context, subjectID, role string, page, limit int) ([]models.WalletTransaction, int64, error) {
	r.mu.Lock()
	var out []models.WalletTransaction
	for _, t := range r.txns {
		if t.SubjectID == subjectID && t.Role == role {
			out = append(out, t)
		}
	}
	r.mu.Unlock()

	// Newest first; the log is append-only so reverse insertion order is creation order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	start, end := paginate(page, limit, len(out))
	return out[start:end], int64(len(out)), nil
}

func (r walletStore) ListByBooking(_ context.Context, bookingID string) ([]models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.WalletTransaction
	for _, t := range r.txns {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r walletStore) ListWallets(_ context.Context, role string) ([]models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Wallet
	for _, w := range r.wallets {
		if role == "" || w.Role == role {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	return out, nil
}

func (r walletStore) ClaimPayment(ctx context.Context, claim *models.PaymentClaim) error {
	return r.write(ctx, func() error {
		if _, taken := r.claims[claim.PaymentID]; taken {
			return repository.ErrDuplicate
		}
		r.claims[claim.PaymentID] = *claim
		return nil
	})
}
