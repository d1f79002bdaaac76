// FILE: database/repository/wallet/indexes.go
package walletRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the wallet and transaction indexes.
func (r *mongoWalletRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	walletIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One wallet per subject and role.
		{
			Keys:    bson.D{{Key: "subjectId", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_subject_role"),
		},
	}
	if _, err := r.wallets.Indexes().CreateMany(ctx, walletIndexes); err != nil {
		return fmt.Errorf("failed to create wallet indexes: %w", err)
	}

	txIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "subjectId", Value: 1}, {Key: "role", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("subject_role_created_idx"),
		},
		// A booking event posts to each wallet at most once.
		{
			Keys: bson.D{{Key: "bookingId", Value: 1}, {Key: "walletId", Value: 1}, {Key: "event", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"bookingId": bson.M{"$exists": true}}).
				SetName("unique_booking_wallet_event"),
		},
		// A gateway payment reference credits each wallet at most once per event.
		{
			Keys: bson.D{{Key: "reference", Value: 1}, {Key: "walletId", Value: 1}, {Key: "event", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"reference": bson.M{"$exists": true}}).
				SetName("unique_reference_wallet_event"),
		},
	}
	if _, err := r.transactions.Indexes().CreateMany(ctx, txIndexes); err != nil {
		return fmt.Errorf("failed to create wallet transaction indexes: %w", err)
	}

	// A gateway payment pays for one booking or one top-up.
	claimIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "paymentId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_payment_id"),
	}
	if _, err := r.claims.Indexes().CreateOne(ctx, claimIndex); err != nil {
		return fmt.Errorf("failed to create payment claim index: %w", err)
	}
	return nil
}
