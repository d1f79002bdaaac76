// Package memoryRepo is an in-process backend for the repositories. It enforces the same
// unique constraints as the MongoDB indexes and rolls back failed transactions.
// Writes outside a transaction wait for the running one, so a rollback never erases them.
package memoryRepo

import (
	"context"
	"sync"

	"prepbook/models"
)

type txKey struct{}

// Store holds all collections. Build repositories from it with the accessor methods.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	bookings map[string]models.Booking
	rules    map[string]models.SlotRule
	wallets  map[string]models.Wallet // keyed by subjectID + "|" + role
	txns     []models.WalletTransaction
	claims   map[string]models.PaymentClaim // keyed by paymentID
	users    map[string]models.User

	faults map[string]error
}

func NewStore() *Store {
	return &Store{
		bookings: make(map[string]models.Booking),
		rules:    make(map[string]models.SlotRule),
		wallets:  make(map[string]models.Wallet),
		claims:   make(map[string]models.PaymentClaim),
		users:    make(map[string]models.User),
		faults:   make(map[string]error),
	}
}

// FailNext makes the next call to op return err. Ops: "booking.create", "booking.transition", "wallet.apply".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault consumes an injected failure. Callers hold s.mu.
func (s *Store) fault(op string) error {
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

// PutUser seeds an identity record.
func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

type snapshot struct {
	bookings map[string]models.Booking
	rules    map[string]models.SlotRule
	wallets  map[string]models.Wallet
	txns     []models.WalletTransaction
	claims   map[string]models.PaymentClaim
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		bookings: make(map[string]models.Booking, len(s.bookings)),
		rules:    make(map[string]models.SlotRule, len(s.rules)),
		wallets:  make(map[string]models.Wallet, len(s.wallets)),
		txns:     append([]models.WalletTransaction(nil), s.txns...),
		claims:   make(map[string]models.PaymentClaim, len(s.claims)),
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.rules {
		snap.rules[k] = v
	}
	for k, v := range s.wallets {
		snap.wallets[k] = v
	}
	for k, v := range s.claims {
		snap.claims[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = snap.bookings
	s.rules = snap.rules
	s.wallets = snap.wallets
	s.txns = snap.txns
	s.claims = snap.claims
}

// WithTransaction serializes units of work and restores every collection when fn fails.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// write runs fn under s.mu. Outside a transaction it first waits for txMu so the write
// lands before or after a running unit, never inside its snapshot window.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func paginate(page, limit, n int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return 0, n
	}
	start := (page - 1) * limit
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}
