package notification

import (
	"context"

	"prepbook/models"
)

// Notifier hands booking notices to the delivery pipeline. Calls never block on delivery.
type Notifier interface {
	// SendSessionReminder queues one reminder for one recipient. The error only reports a failed hand-off.
	SendSessionReminder(ctx context.Context, booking *models.Booking, recipientID, target string, minutesBefore int) error
	NotifyBookingConfirmed(ctx context.Context, booking *models.Booking)
	NotifyBookingCancelled(ctx context.Context, booking *models.Booking)
}

// Mailer sends a plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

// PushSender sends a push message to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
