package cron

import (
	"context"
	"fmt"
	"time"

	"prepbook/models"
	"prepbook/services/notification"
	"prepbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// StartNotificationWorker starts the asynq delivery worker in the background. Call Shutdown on the returned server.
func StartNotificationWorker(redisOpts asynq.RedisClientOpt, deliverer *notification.Deliverer, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"notifications": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, HandleNotificationTask(deliverer, logger))

	go func() {
		logger.Info("notification worker starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("notification worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("notification worker gave up; notices stay queued")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleNotificationTask delivers one queued notice. Failed reminders are dropped, not retried.
func HandleNotificationTask(deliverer *notification.Deliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("invalid notification payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		if err := deliverer.Deliver(ctx, p); err != nil {
			logger.Warn("notification delivery failed",
				zap.String("kind", p.Kind),
				zap.String("bookingId", p.BookingID),
				zap.String("recipientId", p.RecipientID),
				zap.Error(err))
			if p.Kind == models.NoticeSessionReminder {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		return nil
	}
}
