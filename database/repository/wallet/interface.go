// File: database/repository/wallet/interface.go
package walletRepo

import (
	"context"

	"prepbook/models"
)

type WalletRepository interface {
	// GetOrCreate returns the (subjectID, role) wallet, creating it with a zero balance on first use.
	GetOrCreate(ctx context.Context, subjectID, role string) (*models.Wallet, error)
	// Get returns repository.ErrNotFound when the wallet was never created.
	Get(ctx context.Context, subjectID, role string) (*models.Wallet, error)
	// Apply appends one transaction and moves the wallet balance by its signed amount.
	// Call it inside a TxRunner unit so both writes land together.
	Apply(ctx context.Context, posting models.Posting) (*models.WalletTransaction, error)
	// Totals aggregates lifetime credits and debits from the transaction log.
	Totals(ctx context.Context, subjectID, role string) (models.WalletTotals, error)
	ListTransactions(ctx context.Context, subjectID, role string, page, limit int) ([]models.WalletTransaction, int64, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.WalletTransaction, error)
	ListWallets(ctx context.Context, role string) ([]models.Wallet, error)
	// ClaimPayment records that a gateway payment was consumed.
	// Returns repository.ErrDuplicate when the payment id was already claimed.
	ClaimPayment(ctx context.Context, claim *models.PaymentClaim) error
}
