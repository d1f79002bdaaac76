package notification

import (
	"context"
	"errors"
	"fmt"

	userRepo "prepbook/database/repository/user"
	"prepbook/models"

	"go.uber.org/zap"
)

// Deliverer resolves a queued notice to a recipient and sends it over every configured channel.
type Deliverer struct {
	Users  userRepo.UserRepository
	Mailer Mailer     // nil disables email
	Push   PushSender // nil disables push
	Logger *zap.Logger
}

// Render returns the title and body for a notice.
func Render(p models.NotificationPayload) (string, string) {
	when := fmt.Sprintf("%s %s-%s", p.Date, p.StartTime, p.EndTime)
	switch p.Kind {
	case models.NoticeSessionReminder:
		return "Your interview starts soon",
			fmt.Sprintf("Your session on %s starts in %d minutes.", when, p.MinutesBefore)
	case models.NoticeBookingConfirmed:
		return "Booking confirmed",
			fmt.Sprintf("Your session on %s is confirmed.", when)
	case models.NoticeBookingCancelled:
		body := fmt.Sprintf("Your session on %s was cancelled.", when)
		if p.Reason != "" {
			body += " Reason: " + p.Reason + "."
		}
		return "Booking cancelled", body
	default:
		return "Booking update", fmt.Sprintf("There is an update to your session on %s.", when)
	}
}

// Deliver sends p. It fails only when no channel could deliver.
func (d *Deliverer) Deliver(ctx context.Context, p models.NotificationPayload) error {
	u, err := d.Users.FindByID(ctx, p.RecipientID)
	if err != nil {
		return fmt.Errorf("recipient %s: %w", p.RecipientID, err)
	}
	title, body := Render(p)

	var errs []error
	sent := 0
	if d.Mailer != nil && u.Email != "" {
		if err := d.Mailer.Send(u.Email, title, body); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		} else {
			sent++
		}
	}
	if d.Push != nil && u.FCMToken != "" {
		data := map[string]string{
			"type":      p.Kind,
			"bookingId": p.BookingID,
			"role":      p.Target,
		}
		if err := d.Push.Send(ctx, u.FCMToken, title, body, data); err != nil {
			errs = append(errs, fmt.Errorf("push: %w", err))
		} else {
			sent++
		}
	}

	if sent == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, e := range errs {
		d.Logger.Warn("notification channel failed", zap.String("bookingId", p.BookingID), zap.Error(e))
	}
	if sent == 0 {
		d.Logger.Debug("no delivery channel for recipient", zap.String("recipientId", p.RecipientID))
	}
	return nil
}
