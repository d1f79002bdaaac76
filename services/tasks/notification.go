package tasks

import (
	"encoding/json"

	"prepbook/models"

	"github.com/hibiken/asynq"
)

const TypeDeliverNotification = "notification:deliver"

// NewNotificationTask builds a delivery task. Session reminders are sent at most once, other notices retry a few times.
func NewNotificationTask(payload models.NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)

	opts := []asynq.Option{asynq.Queue("notifications")}
	if payload.Kind == models.NoticeSessionReminder {
		opts = append(opts, asynq.MaxRetry(0))
	} else {
		opts = append(opts, asynq.MaxRetry(3))
	}
	return task, opts, nil
}

// ParseNotificationTask decodes a delivery task payload.
func ParseNotificationTask(task *asynq.Task) (models.NotificationPayload, error) {
	var p models.NotificationPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
