package memoryRepo

import (
	"context"
	"time"

	"prepbook/database/repository"
	slotRuleRepo "prepbook/database/repository/slotrule"
	"prepbook/models"

	"github.com/google/uuid"
)

type ruleStore struct{ *Store }

// SlotRules returns the store's SlotRuleRepository.
func (s *Store) SlotRules() slotRuleRepo.SlotRuleRepository { return ruleStore{s} }

func (r ruleStore) GetByProviderID(_ context.Context, providerID string) (*models.SlotRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[providerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rule, nil
}

func (r ruleStore) Upsert(ctx context.Context, rule *models.SlotRule) (*models.SlotRule, error) {
	var saved models.SlotRule
	err := r.write(ctx, func() error {
		now := time.Now()
		var ok bool
		saved, ok = r.rules[rule.ProviderID]
		if !ok {
			saved = models.SlotRule{ID: uuid.New().String(), ProviderID: rule.ProviderID, CreatedAt: now}
		}
		saved.Days = append([]models.DayRule(nil), rule.Days...)
		saved.BlockedDates = append([]string(nil), rule.BlockedDates...)
		saved.ExcludedSlots = rule.ExcludedSlots
		saved.UpdatedAt = now
		r.rules[rule.ProviderID] = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
