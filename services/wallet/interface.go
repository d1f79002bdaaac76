package wallet

import (
	"context"

	"prepbook/database/repository"
	walletRepo "prepbook/database/repository/wallet"
	"prepbook/models"
	"prepbook/services/payment"

	"go.uber.org/zap"
)

// WalletService is the only writer of wallet balances.
type WalletService interface {
	GetOrCreate(ctx context.Context, subjectID, role string) (*models.Wallet, error)
	// Post appends one transaction and moves the balance in a single atomic unit.
	Post(ctx context.Context, posting models.Posting) (*models.WalletTransaction, error)
	// PostBatch applies every posting or none of them.
	PostBatch(ctx context.Context, postings []models.Posting) ([]models.WalletTransaction, error)
	Summary(ctx context.Context, subjectID, role string) (*models.WalletSummary, error)
	ListTransactions(ctx context.Context, subjectID, role string, page, limit int) ([]models.WalletTransaction, int64, error)
	ListSummaries(ctx context.Context, role string) ([]models.WalletSummary, error)
	TopUp(ctx context.Context, subjectID string, req models.TopUpRequest) (*models.WalletTransaction, error)
	// ClaimPayment marks a gateway payment as consumed. A second claim fails with PAYMENT_ALREADY_USED.
	ClaimPayment(ctx context.Context, claim models.PaymentClaim) error
}

// DefaultWalletService implements WalletService.
type DefaultWalletService struct {
	Repo     walletRepo.WalletRepository
	Tx       repository.TxRunner
	Verifier payment.SignatureVerifier
	Orders   payment.OrderLookup
	Logger   *zap.Logger
}
