package payment

import (
	"context"
	"errors"

	"prepbook/models"
	"prepbook/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderMismatch = utils.Payment("ORDER_MISMATCH", "payment does not match the gateway order")
	ErrNotCompleted  = utils.Payment("PAYMENT_NOT_COMPLETED", "the gateway has not captured this payment")
)

// PaidOrder loads orderID and checks that the gateway captured it for subjectID.
// A positive amount must equal the order's amount.
func PaidOrder(ctx context.Context, orders OrderLookup, orderID, subjectID string, amount float64) (*models.PaymentOrder, error) {
	order, err := orders.GetOrder(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderMismatch
	}
	if err != nil {
		return nil, utils.Internal("could not load payment order", err)
	}
	if order.SubjectID != "" && order.SubjectID != subjectID {
		return nil, ErrOrderMismatch
	}
	if !order.Paid {
		return nil, ErrNotCompleted
	}
	if amount > 0 && !decimal.NewFromFloat(amount).Equal(decimal.NewFromFloat(order.Amount)) {
		return nil, ErrOrderMismatch
	}
	return order, nil
}
