package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	memoryRepo "prepbook/database/repository/memory"
	"prepbook/models"
	"prepbook/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pendingBooking(id, start string, createdAt time.Time) *models.Booking {
	return &models.Booking{
		ID: id, UserID: "u1", ProviderID: "p1", Date: "2025-06-05", StartTime: start, EndTime: start[:2] + ":59",
		Amount: 1000, ProviderShare: 900, PlatformFee: 100,
		Status: models.BookingPending, PaymentMethod: models.PaymentGateway,
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}
}

func TestReaperExpiresOnlyStaleBookings(t *testing.T) {
	store := memoryRepo.NewStore()
	ctx := context.Background()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Bookings().Create(ctx, pendingBooking("fresh", "10:00", clock.Add(-9*time.Minute))))
	require.NoError(t, store.Bookings().Create(ctx, pendingBooking("stale", "11:00", clock.Add(-11*time.Minute))))

	svc := &booking.DefaultBookingService{
		Bookings: store.Bookings(),
		Users:    store.Users(),
		Tx:       store,
		Now:      func() time.Time { return clock },
		Logger:   zap.NewNop(),
	}
	reaper := &Reaper{
		Bookings: store.Bookings(),
		Expirer:  svc,
		Timeout:  10 * time.Minute,
		Now:      func() time.Time { return clock },
		Logger:   zap.NewNop(),
	}

	assert.Equal(t, 1, reaper.Tick(ctx))

	fresh, err := store.Bookings().GetByID(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, fresh.Status)

	stale, err := store.Bookings().GetByID(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, stale.Status)
	assert.Equal(t, booking.ExpiryReason, stale.CancellationReason)

	txns, err := store.Wallets().ListByBooking(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, txns, "unpaid booking expires without ledger movement")

	// Two minutes later the other booking crosses the timeout.
	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 1, reaper.Tick(ctx))
	assert.Equal(t, 0, reaper.Tick(ctx))
}

type failingExpirer struct {
	mu    sync.Mutex
	calls []string
}

func (f *failingExpirer) callsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *failingExpirer) Expire(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if id == "a" {
		return nil, assert.AnError
	}
	return &models.Booking{ID: id, Status: models.BookingCancelled}, nil
}

func TestReaperContinuesAfterFailure(t *testing.T) {
	store := memoryRepo.NewStore()
	ctx := context.Background()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Bookings().Create(ctx, pendingBooking("a", "10:00", clock.Add(-30*time.Minute))))
	require.NoError(t, store.Bookings().Create(ctx, pendingBooking("b", "11:00", clock.Add(-20*time.Minute))))

	exp := &failingExpirer{}
	reaper := &Reaper{Bookings: store.Bookings(), Expirer: exp, Timeout: 10 * time.Minute,
		Now: func() time.Time { return clock }, Logger: zap.NewNop()}

	assert.Equal(t, 1, reaper.Tick(ctx))
	assert.ElementsMatch(t, []string{"a", "b"}, exp.callsSnapshot())
}

func TestReaperRunTicksImmediately(t *testing.T) {
	store := memoryRepo.NewStore()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Bookings().Create(context.Background(), pendingBooking("a", "10:00", clock.Add(-time.Hour))))

	exp := &failingExpirer{}
	reaper := &Reaper{Bookings: store.Bookings(), Expirer: exp, Timeout: 10 * time.Minute,
		Interval: time.Hour, Now: func() time.Time { return clock }, Logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(exp.callsSnapshot()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
