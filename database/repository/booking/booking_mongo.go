package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prepbook/database/repository"
	"prepbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a BookingRepository on the bookings collection.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &mongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	booking.Active = booking.Status != models.BookingCancelled
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", repository.TranslateWriteError(err))
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *mongoBookingRepo) ExistsActiveSlot(ctx context.Context, providerID, date, start, end string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"startTime":  start,
		"endTime":    end,
		"status":     bson.M{"$in": models.ActiveBookingStatuses},
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking slot %s %s-%s: %w", date, start, end, err)
	}
	return n > 0, nil
}

func (r *mongoBookingRepo) ListActiveByProviderDate(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"providerId": providerID,
		"date":       date,
		"status":     bson.M{"$in": models.ActiveBookingStatuses},
	}, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
}

func (r *mongoBookingRepo) TransitionStatus(ctx context.Context, id string, from []string, update StatusUpdate) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":    update.Status,
		"active":    update.Status != models.BookingCancelled,
		"updatedAt": update.At,
	}
	if update.PaymentID != "" {
		set["paymentId"] = update.PaymentID
	}
	if update.CancellationReason != "" {
		set["cancellationReason"] = update.CancellationReason
	}
	if update.Settled != nil {
		set["settled"] = *update.Settled
	}

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating booking %s: %w", id, repository.TranslateWriteError(err))
	}

	n, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, countErr)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrStateChanged
}

func (r *mongoBookingRepo) ListPendingCreatedBefore(ctx context.Context, before time.Time) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"status":    models.BookingPending,
		"createdAt": bson.M{"$lt": before},
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *mongoBookingRepo) ListByStatusOnDate(ctx context.Context, status, date string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{
		"status": status,
		"date":   date,
	}, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
}

func (r *mongoBookingRepo) MarkReminderSent(ctx context.Context, id string, offset int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	field := ReminderField(offset)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, field: bson.M{"$ne": true}},
		bson.M{"$set": bson.M{field: true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("error flagging reminder for booking %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoBookingRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, int64, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.ProviderID != "" {
		filter["providerId"] = f.ProviderID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	countCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	total, err := r.coll.CountDocuments(countCtx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))
	bookings, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *mongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
