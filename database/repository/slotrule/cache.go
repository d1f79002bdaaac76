// File: database/repository/slotrule/cache.go
package slotRuleRepo

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"prepbook/models"

	"github.com/go-redis/redis/v8"
)

const cachePrefix = "slotrules:"

type cachedSlotRuleRepo struct {
	inner SlotRuleRepository
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedSlotRuleRepo wraps inner with a read-through Redis cache. Writes invalidate the provider's key.
func NewCachedSlotRuleRepo(inner SlotRuleRepository, cache *redis.Client, ttl time.Duration) SlotRuleRepository {
	return &cachedSlotRuleRepo{inner: inner, cache: cache, ttl: ttl}
}

func (r *cachedSlotRuleRepo) GetByProviderID(ctx context.Context, providerID string) (*models.SlotRule, error) {
	key := cachePrefix + providerID
	if val, err := r.cache.Get(ctx, key).Result(); err == nil {
		var rule models.SlotRule
		if jsonErr := json.Unmarshal([]byte(val), &rule); jsonErr == nil {
			return &rule, nil
		}
	} else if err != redis.Nil {
		log.Printf("[SlotRuleCache] read failed for %s: %v", providerID, err)
	}

	rule, err := r.inner.GetByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(rule); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
			log.Printf("[SlotRuleCache] write failed for %s: %v", providerID, err)
		}
	}
	return rule, nil
}

func (r *cachedSlotRuleRepo) Upsert(ctx context.Context, rule *models.SlotRule) (*models.SlotRule, error) {
	saved, err := r.inner.Upsert(ctx, rule)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Del(ctx, cachePrefix+rule.ProviderID).Err(); err != nil {
		log.Printf("[SlotRuleCache] invalidate failed for %s: %v", rule.ProviderID, err)
	}
	return saved, nil
}
