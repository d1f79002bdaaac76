package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	memoryRepo "prepbook/database/repository/memory"
	"prepbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentReminder struct {
	bookingID, recipient string
	offset               int
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentReminder
	failFor string
}

func (n *fakeNotifier) SendSessionReminder(_ context.Context, b *models.Booking, recipientID, _ string, offset int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if recipientID == n.failFor {
		return assert.AnError
	}
	n.sent = append(n.sent, sentReminder{b.ID, recipientID, offset})
	return nil
}

func (n *fakeNotifier) NotifyBookingConfirmed(context.Context, *models.Booking) {}
func (n *fakeNotifier) NotifyBookingCancelled(context.Context, *models.Booking) {}

func confirmedAt(id, date, start string) *models.Booking {
	return &models.Booking{
		ID: id, UserID: "u1", ProviderID: "p1", Date: date, StartTime: start, EndTime: "23:00",
		Status: models.BookingConfirmed, PaymentMethod: models.PaymentWallet,
	}
}

func TestReminderOffset(t *testing.T) {
	cases := map[float64]int{20: 0, 15: 15, 12: 15, 5.5: 15, 5: 5, 1: 5, 0: 5, -1: 0}
	for minutes, want := range cases {
		assert.Equal(t, want, reminderOffset(minutes), "minutes=%v", minutes)
	}
}

func TestDispatcherSendsEachOffsetOnce(t *testing.T) {
	store := memoryRepo.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Bookings().Create(ctx, confirmedAt("b1", "2025-06-01", "10:20")))
	require.NoError(t, store.Bookings().Create(ctx, confirmedAt("later", "2025-06-01", "15:00")))
	require.NoError(t, store.Bookings().Create(ctx, confirmedAt("tomorrow", "2025-06-02", "10:20")))

	clock := time.Date(2025, 6, 1, 10, 8, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	d := &ReminderDispatcher{
		Bookings: store.Bookings(),
		Notifier: notifier,
		Location: time.UTC,
		Now:      func() time.Time { return clock },
		Logger:   zap.NewNop(),
	}

	assert.Equal(t, 1, d.Tick(ctx))
	assert.Equal(t, 0, d.Tick(ctx), "repeated tick inside the same window")
	assert.ElementsMatch(t, []sentReminder{{"b1", "u1", 15}, {"b1", "p1", 15}}, notifier.sent)

	clock = clock.Add(8 * time.Minute) // 4 minutes to go
	assert.Equal(t, 1, d.Tick(ctx))
	clock = clock.Add(time.Minute)
	assert.Equal(t, 0, d.Tick(ctx))
	assert.Len(t, notifier.sent, 4)

	b, err := store.Bookings().GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, b.Reminder15Sent)
	assert.True(t, b.Reminder5Sent)

	clock = clock.Add(10 * time.Minute) // session started
	assert.Equal(t, 0, d.Tick(ctx))
	assert.Len(t, notifier.sent, 4)
}

func TestDispatcherSkipsCancelledBookings(t *testing.T) {
	store := memoryRepo.NewStore()
	ctx := context.Background()
	b := confirmedAt("b1", "2025-06-01", "10:20")
	b.Status = models.BookingCancelled
	require.NoError(t, store.Bookings().Create(ctx, b))

	notifier := &fakeNotifier{}
	d := &ReminderDispatcher{Bookings: store.Bookings(), Notifier: notifier, Location: time.UTC,
		Now: func() time.Time { return time.Date(2025, 6, 1, 10, 10, 0, 0, time.UTC) }, Logger: zap.NewNop()}

	assert.Equal(t, 0, d.Tick(ctx))
	assert.Empty(t, notifier.sent)
}

func TestDispatcherFailureDoesNotBlockOtherRecipient(t *testing.T) {
	store := memoryRepo.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Bookings().Create(ctx, confirmedAt("b1", "2025-06-01", "10:20")))

	notifier := &fakeNotifier{failFor: "u1"}
	d := &ReminderDispatcher{Bookings: store.Bookings(), Notifier: notifier, Location: time.UTC,
		Now: func() time.Time { return time.Date(2025, 6, 1, 10, 10, 0, 0, time.UTC) }, Logger: zap.NewNop()}

	assert.Equal(t, 1, d.Tick(ctx))
	assert.Equal(t, []sentReminder{{"b1", "p1", 15}}, notifier.sent)

	// The failed side is not retried.
	assert.Equal(t, 0, d.Tick(ctx))
	assert.Len(t, notifier.sent, 1)
}
