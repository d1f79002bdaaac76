package models

import "time"

// PaymentOrder is an order opened with the payment gateway before the payer pays.
type PaymentOrder struct {
	OrderID      string    `json:"orderId"`
	ClientSecret string    `json:"clientSecret,omitempty"`
	SubjectID    string    `json:"-"`
	Purpose      string    `json:"purpose,omitempty"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	Paid         bool      `json:"paid"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateOrderRequest asks the gateway for a new order.
type CreateOrderRequest struct {
	Amount  float64 `json:"amount" binding:"required"`
	Purpose string  `json:"purpose"` // "booking" or "top_up"
}

// PaymentClaim records which booking or top-up consumed a gateway payment.
// A payment id can be claimed once.
type PaymentClaim struct {
	PaymentID string    `bson:"paymentId" json:"paymentId"`
	OrderID   string    `bson:"orderId" json:"orderId"`
	SubjectID string    `bson:"subjectId" json:"subjectId"`
	Purpose   string    `bson:"purpose" json:"purpose"`
	BookingID string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Amount    float64   `bson:"amount" json:"amount"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

const (
	PurposeBooking = "booking"
	PurposeTopUp   = "top_up"
)
