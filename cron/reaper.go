package cron

import (
	"context"
	"time"

	bookingRepo "prepbook/database/repository/booking"
	"prepbook/models"

	"go.uber.org/zap"
)

// Expirer cancels a booking that is still waiting for payment.
type Expirer interface {
	Expire(ctx context.Context, bookingID string) (*models.Booking, error)
}

// Reaper cancels pending bookings whose payment never arrived.
type Reaper struct {
	Bookings bookingRepo.BookingRepository
	Expirer  Expirer
	Timeout  time.Duration
	Interval time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

// Run ticks immediately and then every Interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	runEvery(ctx, r.Interval, func() { r.Tick(ctx) })
	r.Logger.Info("expiry reaper stopped")
}

// Tick expires every pending booking older than Timeout and returns how many it cancelled.
func (r *Reaper) Tick(ctx context.Context) int {
	cutoff := now(r.Now).Add(-r.Timeout)
	stale, err := r.Bookings.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		r.Logger.Error("reaper: failed to list pending bookings", zap.Error(err))
		return 0
	}

	expired := 0
	for _, b := range stale {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.Expirer.Expire(ctx, b.ID); err != nil {
			r.Logger.Warn("reaper: failed to expire booking", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		r.Logger.Info("reaper: expired unpaid bookings", zap.Int("count", expired))
	}
	return expired
}

func now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock()
	}
	return time.Now()
}

// runEvery calls fn right away and then on every tick.
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = time.Minute
	}
	fn()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
