// File: database/repository/slotrule/interface.go
package slotRuleRepo

import (
	"context"

	"prepbook/models"
)

type SlotRuleRepository interface {
	// GetByProviderID returns repository.ErrNotFound when the provider never saved rules.
	GetByProviderID(ctx context.Context, providerID string) (*models.SlotRule, error)
	// Upsert creates the provider's rule set on first save and replaces it afterwards.
	Upsert(ctx context.Context, rule *models.SlotRule) (*models.SlotRule, error)
}
