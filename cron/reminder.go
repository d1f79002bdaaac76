package cron

import (
	"context"
	"time"

	bookingRepo "prepbook/database/repository/booking"
	"prepbook/models"
	"prepbook/services/notification"
	"prepbook/utils"

	"go.uber.org/zap"
)

// ReminderDispatcher sends the 15 and 5 minute session reminders for today's confirmed bookings.
type ReminderDispatcher struct {
	Bookings bookingRepo.BookingRepository
	Notifier notification.Notifier
	Location *time.Location
	Interval time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

func (d *ReminderDispatcher) Run(ctx context.Context) {
	runEvery(ctx, d.Interval, func() { d.Tick(ctx) })
	d.Logger.Info("reminder dispatcher stopped")
}

// reminderOffset picks the reminder due minutesLeft before the start, or 0.
func reminderOffset(minutesLeft float64) int {
	switch {
	case minutesLeft > 5 && minutesLeft <= 15:
		return 15
	case minutesLeft >= 0 && minutesLeft <= 5:
		return 5
	default:
		return 0
	}
}

func alreadySent(b models.Booking, offset int) bool {
	if offset == 5 {
		return b.Reminder5Sent
	}
	return b.Reminder15Sent
}

// Tick returns the number of reminder offsets it fired.
func (d *ReminderDispatcher) Tick(ctx context.Context) int {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	current := now(d.Now).In(loc)
	today := current.Format(utils.DateLayout)

	bookings, err := d.Bookings.ListByStatusOnDate(ctx, models.BookingConfirmed, today)
	if err != nil {
		d.Logger.Error("reminders: failed to list today's bookings", zap.Error(err))
		return 0
	}

	fired := 0
	for _, b := range bookings {
		start, err := utils.SlotStart(b.Date, b.StartTime, loc)
		if err != nil {
			d.Logger.Warn("reminders: malformed booking start", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		offset := reminderOffset(start.Sub(current).Minutes())
		if offset == 0 || alreadySent(b, offset) {
			continue
		}

		// Claim the flag before sending so a concurrent or repeated tick cannot send twice.
		claimed, err := d.Bookings.MarkReminderSent(ctx, b.ID, offset)
		if err != nil {
			d.Logger.Error("reminders: failed to claim reminder", zap.String("bookingId", b.ID), zap.Int("offset", offset), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		d.send(ctx, &b, b.UserID, models.RoleUser, offset)
		d.send(ctx, &b, b.ProviderID, models.RoleInterviewer, offset)
		fired++
	}
	return fired
}

func (d *ReminderDispatcher) send(ctx context.Context, b *models.Booking, recipientID, target string, offset int) {
	if err := d.Notifier.SendSessionReminder(ctx, b, recipientID, target, offset); err != nil {
		d.Logger.Warn("reminders: send failed",
			zap.String("bookingId", b.ID),
			zap.String("recipientId", recipientID),
			zap.Int("offset", offset),
			zap.Error(err))
	}
}
