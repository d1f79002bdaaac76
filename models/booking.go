package models

import "time"

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Payment methods. Wallet settles immediately against the payer's balance,
// gateway waits for an externally signed payment confirmation.
const (
	PaymentWallet  = "wallet"
	PaymentGateway = "gateway"
)

// ActiveBookingStatuses are the statuses that hold a slot.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed, BookingCompleted}

// Booking is one interview session between a payer (UserID) and an interviewer (ProviderID).
type Booking struct {
	ID                 string    `bson:"id" json:"id"`
	UserID             string    `bson:"userId" json:"userId"`
	ProviderID         string    `bson:"providerId" json:"providerId"`
	Date               string    `bson:"date" json:"date"`           // "YYYY-MM-DD"
	StartTime          string    `bson:"startTime" json:"startTime"` // "HH:MM"
	EndTime            string    `bson:"endTime" json:"endTime"`     // "HH:MM", same day
	Amount             float64   `bson:"amount" json:"amount"`
	ProviderShare      float64   `bson:"providerShare" json:"providerShare"`
	PlatformFee        float64   `bson:"platformFee" json:"platformFee"`
	Status             string    `bson:"status" json:"status"`
	PaymentMethod      string    `bson:"paymentMethod" json:"paymentMethod"`
	PaymentOrderID     string    `bson:"paymentOrderId,omitempty" json:"paymentOrderId,omitempty"`
	PaymentID          string    `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CancellationReason string    `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	Reminder15Sent     bool      `bson:"reminder15Sent" json:"reminder15Sent"`
	Reminder5Sent      bool      `bson:"reminder5Sent" json:"reminder5Sent"`
	Settled            bool      `bson:"settled" json:"settled"` // ledger triad posted for this booking
	Active             bool      `bson:"active" json:"-"`        // holds the slot; false once cancelled
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether no further transitions are allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled
}

// PaymentProof is the signed confirmation handed back by the payment gateway.
type PaymentProof struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// CreateBookingRequest is the payload for booking a slot.
type CreateBookingRequest struct {
	ProviderID     string        `json:"providerId" binding:"required"`
	Date           string        `json:"date" binding:"required"`
	StartTime      string        `json:"startTime" binding:"required"`
	EndTime        string        `json:"endTime" binding:"required"`
	Amount         float64       `json:"amount" binding:"required"`
	PaymentMethod  string        `json:"paymentMethod" binding:"required"`
	PaymentOrderID string        `json:"paymentOrderId,omitempty"`
	Payment        *PaymentProof `json:"payment,omitempty"` // present when the gateway already verified the payment
}

// CancelBookingRequest carries the payer's cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	UserID     string
	ProviderID string
	Status     string
	Page       int
	Limit      int
}
