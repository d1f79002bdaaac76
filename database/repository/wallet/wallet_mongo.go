package walletRepo

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

type mongoWalletRepo struct {
	wallets      *mongo.Collection
	transactions *mongo.Collection
	claims       *mongo.Collection
}

// NewMongoWalletRepo constructs a WalletRepository on the wallets, wallet_transactions
// and payment_claims collections.
func NewMongoWalletRepo(db *mongo.Database) WalletRepository {
	repo := &mongoWalletRepo{
		wallets:      db.Collection("wallets"),
		transactions: db.Collection("wallet_transactions"),
		claims:       db.Collection("payment_claims"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create wallet indexes: %v\n", err)
	}
	return repo
}

func (r *mongoWalletRepo) GetOrCreate(ctx context.Context, subjectID, role string) (*models.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"subjectId": subjectID, "role": role}
	update := bson.M{"$setOnInsert": bson.M{
		"id":        uuid.New().String(),
		"subjectId": subjectID,
		"role":      role,
		"balance":   0.0,
		"createdAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.wallets.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert won the unique (subjectId, role) index.
		err = r.wallets.FindOne(ctx, filter).Decode(&wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving wallet %s/%s: %w", subjectID, role, err)
	}
	return &wallet, nil
}

func (r *mongoWalletRepo) Get(ctx context.Context, subjectID, role string) (*models.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var wallet models.Wallet
	if err := r.wallets.FindOne(ctx, bson.M{"subjectId": subjectID, "role": role}).Decode(&wallet); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching wallet %s/%s: %w", subjectID, role, err)
	}
	return &wallet, nil
}

func (r *mongoWalletRepo) Apply(ctx context.Context, p models.Posting) (*models.WalletTransaction, error) {
	wallet, err := r.GetOrCreate(ctx, p.SubjectID, p.Role)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"id": wallet.ID}
	if p.Type == models.TxDebit && p.RequireFunds {
		filter["balance"] = bson.M{"$gte": p.Amount}
	}
	res, err := r.wallets.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"balance": p.SignedAmount()},
		"$set": bson.M{"updatedAt": now},
	})
	if err != nil {
		return nil, fmt.Errorf("error updating wallet %s balance: %w", wallet.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, repository.ErrInsufficientFunds
	}

	tx := newTransaction(wallet, p, now)
	if _, err := r.transactions.InsertOne(ctx, tx); err != nil {
		return nil, fmt.Errorf("error recording wallet transaction: %w", repository.TranslateWriteError(err))
	}
	return tx, nil
}

func newTransaction(wallet *models.Wallet, p models.Posting, at time.Time) *models.WalletTransaction {
	return &models.WalletTransaction{
		ID:          uuid.New().String(),
		WalletID:    wallet.ID,
		SubjectID:   wallet.SubjectID,
		Role:        wallet.Role,
		Type:        p.Type,
		Amount:      p.SignedAmount(),
		Reason:      p.Reason,
		BookingID:   p.BookingID,
		Event:       p.Event,
		Reference:   p.Reference,
		Breakdown:   p.Breakdown,
		DisplayName: p.DisplayName,
		CreatedAt:   at,
	}
}

func (r *mongoWalletRepo) Totals(ctx context.Context, subjectID, role string) (models.WalletTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"subjectId": subjectID, "role": role}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"credits": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$gt": bson.A{"$amount", 0}}, "$amount", 0},
			}},
			"debits": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$lt": bson.A{"$amount", 0}}, bson.M{"$abs": "$amount"}, 0},
			}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.transactions.Aggregate(ctx, pipeline)
	if err != nil {
		return models.WalletTotals{}, fmt.Errorf("failed to aggregate wallet totals: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Credits float64 `bson:"credits"`
		Debits  float64 `bson:"debits"`
		Count   int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return models.WalletTotals{}, fmt.Errorf("decode error: %w", err)
	}
	if len(result) == 0 {
		return models.WalletTotals{}, nil
	}
	return models.WalletTotals{Credits: result[0].Credits, Debits: result[0].Debits, Count: result[0].Count}, nil
}

func (r *mongoWalletRepo) ListTransactions(ctx context.Context, subjectID, role string, page, limit int) ([]models.WalletTransaction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"subjectId": subjectID, "role": role}
	total, err := r.transactions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting wallet transactions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing wallet transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.WalletTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, 0, fmt.Errorf("error decoding wallet transactions: %w", err)
	}
	return txs, total, nil
}

func (r *mongoWalletRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.WalletTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.transactions.Find(ctx, bson.M{"bookingId": bookingID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing booking transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.WalletTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("error decoding booking transactions: %w", err)
	}
	return txs, nil
}

func (r *mongoWalletRepo) ListWallets(ctx context.Context, role string) ([]models.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	cursor, err := r.wallets.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "balance", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing wallets: %w", err)
	}
	defer cursor.Close(ctx)

	var wallets []models.Wallet
	if err := cursor.All(ctx, &wallets); err != nil {
		return nil, fmt.Errorf("error decoding wallets: %w", err)
	}
	return wallets, nil
}

func (r *mongoWalletRepo) ClaimPayment(ctx context.Context, claim *models.PaymentClaim) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.claims.InsertOne(ctx, claim); err != nil {
		return fmt.Errorf("error claiming payment %s: %w", claim.PaymentID, repository.TranslateWriteError(err))
	}
	return nil
}
