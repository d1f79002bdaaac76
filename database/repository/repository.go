package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInsufficientFunds is returned when a funded debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrStateChanged is returned when a conditional status update matched the document but not its expected state.
	ErrStateChanged = errors.New("document state changed")
	// ErrCommitUnknown is returned when a transaction commit could not be confirmed either way.
	ErrCommitUnknown = errors.New("transaction commit result unknown")
)

// TxRunner runs fn as one atomic unit. Repositories called with the ctx handed to fn join the unit.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner runs units of work inside a MongoDB multi-document transaction.
type MongoTxRunner struct {
	client *mongo.Client
}

func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Already inside a session: join it.
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if commitUnknown(err) {
			return fmt.Errorf("%w: %v", ErrCommitUnknown, err)
		}
		return err
	}
	return nil
}

func commitUnknown(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorLabel("UnknownTransactionCommitResult")
}

// TranslateWriteError maps driver write errors onto repository sentinels.
func TranslateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
