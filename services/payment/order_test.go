package payment

import (
	"context"
	"errors"
	"testing"

	"prepbook/models"
	"prepbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders map[string]models.PaymentOrder

func (s stubOrders) GetOrder(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	if orderID == "order_broken" {
		return nil, errors.New("gateway timeout")
	}
	o, ok := s[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func TestPaidOrder(t *testing.T) {
	orders := stubOrders{
		"order_paid":   {OrderID: "order_paid", SubjectID: "u1", Amount: 250, Paid: true},
		"order_open":   {OrderID: "order_open", SubjectID: "u1", Amount: 250},
		"order_anyone": {OrderID: "order_anyone", Amount: 99.5, Paid: true},
	}
	ctx := context.Background()

	order, err := PaidOrder(ctx, orders, "order_paid", "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 250.0, order.Amount)

	_, err = PaidOrder(ctx, orders, "order_paid", "u1", 250)
	assert.NoError(t, err)
	_, err = PaidOrder(ctx, orders, "order_anyone", "u2", 99.5)
	assert.NoError(t, err)

	cases := map[string]struct {
		orderID, subject string
		amount           float64
		code             string
	}{
		"unknown order":  {"order_missing", "u1", 0, "ORDER_MISMATCH"},
		"other payer":    {"order_paid", "u2", 0, "ORDER_MISMATCH"},
		"amount differs": {"order_paid", "u1", 1000, "ORDER_MISMATCH"},
		"not captured":   {"order_open", "u1", 250, "PAYMENT_NOT_COMPLETED"},
		"gateway down":   {"order_broken", "u1", 0, "INTERNAL"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := PaidOrder(ctx, orders, c.orderID, c.subject, c.amount)
			require.Error(t, err)
			assert.Equal(t, c.code, utils.CodeOf(err))
		})
	}
}
