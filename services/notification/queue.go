package notification

import (
	"context"

	"prepbook/models"
	"prepbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier turns booking notices into asynq delivery tasks.
type QueueNotifier struct {
	Queue  Enqueuer
	Logger *zap.Logger
}

func NewQueueNotifier(queue Enqueuer, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{Queue: queue, Logger: logger}
}

func payloadFor(kind string, b *models.Booking, recipientID, target string) models.NotificationPayload {
	return models.NotificationPayload{
		Kind:        kind,
		RecipientID: recipientID,
		Target:      target,
		BookingID:   b.ID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Reason:      b.CancellationReason,
	}
}

func (n *QueueNotifier) enqueue(ctx context.Context, p models.NotificationPayload) error {
	task, opts, err := tasks.NewNotificationTask(p)
	if err != nil {
		return err
	}
	if _, err := n.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		return err
	}
	return nil
}

func (n *QueueNotifier) SendSessionReminder(ctx context.Context, b *models.Booking, recipientID, target string, minutesBefore int) error {
	p := payloadFor(models.NoticeSessionReminder, b, recipientID, target)
	p.MinutesBefore = minutesBefore
	return n.enqueue(ctx, p)
}

func (n *QueueNotifier) NotifyBookingConfirmed(ctx context.Context, b *models.Booking) {
	n.both(ctx, models.NoticeBookingConfirmed, b)
}

func (n *QueueNotifier) NotifyBookingCancelled(ctx context.Context, b *models.Booking) {
	n.both(ctx, models.NoticeBookingCancelled, b)
}

func (n *QueueNotifier) both(ctx context.Context, kind string, b *models.Booking) {
	for _, r := range []struct{ id, target string }{
		{b.UserID, models.RoleUser},
		{b.ProviderID, models.RoleInterviewer},
	} {
		if err := n.enqueue(ctx, payloadFor(kind, b, r.id, r.target)); err != nil {
			n.Logger.Warn("failed to enqueue notification",
				zap.String("kind", kind), zap.String("bookingId", b.ID),
				zap.String("recipientId", r.id), zap.Error(err))
		}
	}
}
