package models

// Notice kinds.
const (
	NoticeSessionReminder  = "session_reminder"
	NoticeBookingConfirmed = "booking_confirmed"
	NoticeBookingCancelled = "booking_cancelled"
)

// NotificationPayload is queued for asynchronous delivery to one recipient.
type NotificationPayload struct {
	Kind          string `json:"kind"`
	RecipientID   string `json:"recipientId"`
	Target        string `json:"target"` // "user" or "interviewer"
	BookingID     string `json:"bookingId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	MinutesBefore int    `json:"minutesBefore,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
