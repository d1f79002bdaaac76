package userRepo

import (
	"context"

	"prepbook/models"
)

// UserRepository is the read-only identity lookup the booking engine depends on.
// User documents are written by the identity service.
type UserRepository interface {
	// FindByID retrieves any account by its unique ID.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindApprovedProviderByID retrieves an interviewer account that has been approved.
	FindApprovedProviderByID(ctx context.Context, id string) (*models.User, error)
	// FindAdminAccount retrieves the account that owns the platform wallet.
	FindAdminAccount(ctx context.Context) (*models.User, error)
}
