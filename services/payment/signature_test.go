package payment

import (
	"context"
	"testing"

	"prepbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("s3cret")
	good := models.PaymentProof{OrderID: "order_1", PaymentID: "pay_1", Signature: v.Sign("order_1", "pay_1")}

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, v.Verify(good))
	})

	t.Run("tampered payment id", func(t *testing.T) {
		p := good
		p.PaymentID = "pay_2"
		assert.False(t, v.Verify(p))
	})

	t.Run("other secret", func(t *testing.T) {
		assert.False(t, NewHMACVerifier("other").Verify(good))
	})

	t.Run("empty secret never verifies", func(t *testing.T) {
		empty := NewHMACVerifier("")
		p := models.PaymentProof{OrderID: "o", PaymentID: "p", Signature: empty.Sign("o", "p")}
		assert.False(t, empty.Verify(p))
	})
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(149999), minorUnits(1499.99))
	assert.Equal(t, int64(50), minorUnits(0.5))
}

func TestLocalGateway(t *testing.T) {
	g := &LocalGateway{Currency: "INR"}

	order, err := g.CreateOrder(context.Background(), "u1", models.CreateOrderRequest{Amount: 500})
	require.NoError(t, err)
	assert.Contains(t, order.OrderID, "order_")
	assert.Equal(t, "inr", order.Currency)
	assert.False(t, order.Paid)

	got, err := g.GetOrder(context.Background(), order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.SubjectID)
	assert.Equal(t, 500.0, got.Amount)
	assert.True(t, got.Paid)

	_, err = g.GetOrder(context.Background(), "order_unknown")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = g.CreateOrder(context.Background(), "u1", models.CreateOrderRequest{Amount: 0})
	assert.Error(t, err)
}
