package models

import "time"

// Wallet roles. A subject holds one wallet per role.
const (
	RoleUser        = "user"
	RoleInterviewer = "interviewer"
	RoleAdmin       = "admin"
)

// Transaction directions.
const (
	TxCredit = "credit"
	TxDebit  = "debit"
)

// Ledger events a booking can move money on.
const (
	EventBookingCreated   = "booking_created"
	EventPaymentConfirmed = "payment_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingExpired   = "booking_expired"
	EventTopUp            = "top_up"
)

// Wallet is the running balance for one (subject, role) pair.
type Wallet struct {
	ID        string    `bson:"id" json:"id"`
	SubjectID string    `bson:"subjectId" json:"subjectId"`
	Role      string    `bson:"role" json:"role"`
	Balance   float64   `bson:"balance" json:"balance"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FeeBreakdown tags booking transactions with how the amount was split.
type FeeBreakdown struct {
	ProviderFee float64 `bson:"providerFee" json:"providerFee"`
	PlatformFee float64 `bson:"platformFee" json:"platformFee"`
}

// WalletTransaction is an immutable ledger line. Amount is signed: credits positive, debits negative.
type WalletTransaction struct {
	ID          string        `bson:"id" json:"id"`
	WalletID    string        `bson:"walletId" json:"walletId"`
	SubjectID   string        `bson:"subjectId" json:"subjectId"`
	Role        string        `bson:"role" json:"role"`
	Type        string        `bson:"type" json:"type"`
	Amount      float64       `bson:"amount" json:"amount"`
	Reason      string        `bson:"reason" json:"reason"`
	BookingID   string        `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Event       string        `bson:"event,omitempty" json:"event,omitempty"`
	Reference   string        `bson:"reference,omitempty" json:"reference,omitempty"`
	Breakdown   *FeeBreakdown `bson:"breakdown,omitempty" json:"breakdown,omitempty"`
	DisplayName string        `bson:"displayName,omitempty" json:"displayName,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

// Posting is a request to append one transaction to the (SubjectID, Role) wallet.
// Amount is always positive; Type decides the sign.
type Posting struct {
	SubjectID   string
	Role        string
	Type        string
	Amount      float64
	Reason      string
	BookingID   string
	Event       string
	Reference   string
	Breakdown   *FeeBreakdown
	DisplayName string
	// RequireFunds rejects a debit that would take the balance below zero.
	RequireFunds bool
}

// SignedAmount returns the amount applied to the balance.
func (p Posting) SignedAmount() float64 {
	if p.Type == TxDebit {
		return -p.Amount
	}
	return p.Amount
}

// WalletTotals are lifetime sums aggregated from the transaction log.
type WalletTotals struct {
	Credits float64 `json:"totalCredits"`
	Debits  float64 `json:"totalDebits"`
	Count   int64   `json:"transactionCount"`
}

// WalletSummary is a wallet plus its aggregated totals.
type WalletSummary struct {
	SubjectID string       `json:"subjectId"`
	Role      string       `json:"role"`
	Balance   float64      `json:"balance"`
	Totals    WalletTotals `json:"totals"`
}

// TopUpRequest credits the caller's wallet from a verified gateway payment.
// The credited amount is the order's; Amount, when sent, must match it.
type TopUpRequest struct {
	Amount  float64      `json:"amount"`
	Payment PaymentProof `json:"payment" binding:"required"`
}
