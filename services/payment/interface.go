package payment

import (
	"context"
	"errors"

	"prepbook/models"
)

// ErrOrderNotFound is returned by OrderLookup for an order the gateway never issued.
var ErrOrderNotFound = errors.New("payment order not found")

// SignatureVerifier checks a payment confirmation handed back by the gateway.
type SignatureVerifier interface {
	Verify(proof models.PaymentProof) bool
}

// OrderLookup reads an order back from the gateway so callers can trust its amount and status
// instead of the client's.
type OrderLookup interface {
	GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
}

// OrderGateway opens payment orders with the external gateway.
type OrderGateway interface {
	OrderLookup
	CreateOrder(ctx context.Context, subjectID string, req models.CreateOrderRequest) (*models.PaymentOrder, error)
}
