package slotRuleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prepbook/database/repository"
	"prepbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSlotRuleRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRuleRepo constructs a SlotRuleRepository on the slot_rules collection.
func NewMongoSlotRuleRepo(db *mongo.Database) SlotRuleRepository {
	repo := &mongoSlotRuleRepo{coll: db.Collection("slot_rules")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create slot rule indexes: %v\n", err)
	}
	return repo
}

func (r *mongoSlotRuleRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "providerId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *mongoSlotRuleRepo) GetByProviderID(ctx context.Context, providerID string) (*models.SlotRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rule models.SlotRule
	if err := r.coll.FindOne(ctx, bson.M{"providerId": providerID}).Decode(&rule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching slot rules for provider %s: %w", providerID, err)
	}
	return &rule, nil
}

func (r *mongoSlotRuleRepo) Upsert(ctx context.Context, rule *models.SlotRule) (*models.SlotRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"days":          rule.Days,
			"blockedDates":  rule.BlockedDates,
			"excludedSlots": rule.ExcludedSlots,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"id":         uuid.New().String(),
			"providerId": rule.ProviderID,
			"createdAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.SlotRule
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"providerId": rule.ProviderID}, update, opts).Decode(&saved)
	if err != nil {
		// Two first saves raced on the unique providerId index; the loser retries as an update.
		if mongo.IsDuplicateKeyError(err) {
			err = r.coll.FindOneAndUpdate(ctx, bson.M{"providerId": rule.ProviderID}, update, opts).Decode(&saved)
		}
		if err != nil {
			return nil, fmt.Errorf("error saving slot rules for provider %s: %w", rule.ProviderID, err)
		}
	}
	return &saved, nil
}
