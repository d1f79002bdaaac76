package wallet

import (
	"context"
	"errors"
	"testing"

	memoryRepo "prepbook/database/repository/memory"
	"prepbook/models"
	"prepbook/services/payment"
	"prepbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*DefaultWalletService, *memoryRepo.Store) {
	t.Helper()
	store := memoryRepo.NewStore()
	return &DefaultWalletService{
		Repo:     store.Wallets(),
		Tx:       store,
		Verifier: payment.NewHMACVerifier("test-secret"),
		Logger:   zap.NewNop(),
	}, store
}

func credit(subject, role string, amount float64) models.Posting {
	return models.Posting{SubjectID: subject, Role: role, Type: models.TxCredit, Amount: amount, Reason: "seed"}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w1, err := svc.GetOrCreate(ctx, "u1", models.RoleUser)
	require.NoError(t, err)
	w2, err := svc.GetOrCreate(ctx, "u1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
	assert.Zero(t, w1.Balance)

	other, err := svc.GetOrCreate(ctx, "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.NotEqual(t, w1.ID, other.ID, "roles keep separate wallets")
}

func TestSummaryAggregatesLog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, credit("u1", models.RoleUser, 1000))
	require.NoError(t, err)
	_, err = svc.Post(ctx, models.Posting{SubjectID: "u1", Role: models.RoleUser, Type: models.TxDebit, Amount: 250.5, Reason: "spend", RequireFunds: true})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, "u1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 749.5, sum.Balance)
	assert.Equal(t, 1000.0, sum.Totals.Credits)
	assert.Equal(t, 250.5, sum.Totals.Debits)
	assert.Equal(t, int64(2), sum.Totals.Count)

	empty, err := svc.Summary(ctx, "nobody", models.RoleUser)
	require.NoError(t, err)
	assert.Zero(t, empty.Balance)
	assert.Zero(t, empty.Totals.Count)
}

func TestFundedDebitRespectsFloor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Post(ctx, credit("u1", models.RoleUser, 100))
	require.NoError(t, err)

	_, err = svc.Post(ctx, models.Posting{SubjectID: "u1", Role: models.RoleUser, Type: models.TxDebit, Amount: 100.01, Reason: "too much", RequireFunds: true})
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_BALANCE", utils.CodeOf(err))

	sum, err := svc.Summary(ctx, "u1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum.Balance)
	assert.Equal(t, int64(1), sum.Totals.Count)
}

func TestPostBatchIsAllOrNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	batch := []models.Posting{
		credit("p1", models.RoleInterviewer, 90),
		{SubjectID: "admin", Role: models.RoleAdmin, Type: models.TxDebit, Amount: 10, Reason: "overdraw", RequireFunds: true},
	}
	_, err := svc.PostBatch(ctx, batch)
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_BALANCE", utils.CodeOf(err))

	sum, err := svc.Summary(ctx, "p1", models.RoleInterviewer)
	require.NoError(t, err)
	assert.Zero(t, sum.Balance, "first posting rolled back")
	assert.Zero(t, sum.Totals.Count)
}

func TestPostBatchStorageFailure(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	store.FailNext("wallet.apply", errors.New("disk on fire"))
	_, err := svc.Post(ctx, credit("u1", models.RoleUser, 10))
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.KindInternal, appErr.Kind)
}

func TestPostRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]models.Posting{
		"zero amount":  {SubjectID: "u1", Role: models.RoleUser, Type: models.TxCredit, Amount: 0},
		"unknown role": {SubjectID: "u1", Role: "guest", Type: models.TxCredit, Amount: 5},
		"unknown type": {SubjectID: "u1", Role: models.RoleUser, Type: "transfer", Amount: 5},
		"no subject":   {Role: models.RoleUser, Type: models.TxCredit, Amount: 5},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Post(ctx, p)
			require.Error(t, err)
			assert.Equal(t, "INVALID_REQUEST", utils.CodeOf(err))
		})
	}
}

func TestTopUp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	signer := payment.NewHMACVerifier("test-secret")
	gateway := &payment.LocalGateway{Currency: "INR"}
	svc.Orders = gateway

	order, err := gateway.CreateOrder(ctx, "u1", models.CreateOrderRequest{Amount: 500, Purpose: models.PurposeTopUp})
	require.NoError(t, err)
	proof := models.PaymentProof{OrderID: order.OrderID, PaymentID: "pay_1", Signature: signer.Sign(order.OrderID, "pay_1")}

	t.Run("bad signature", func(t *testing.T) {
		bad := proof
		bad.Signature = "deadbeef"
		_, err := svc.TopUp(ctx, "u1", models.TopUpRequest{Amount: 500, Payment: bad})
		require.Error(t, err)
		assert.Equal(t, "SIGNATURE_MISMATCH", utils.CodeOf(err))
	})

	t.Run("claimed amount must match the order", func(t *testing.T) {
		_, err := svc.TopUp(ctx, "u1", models.TopUpRequest{Amount: 50000, Payment: proof})
		require.Error(t, err)
		assert.Equal(t, "ORDER_MISMATCH", utils.CodeOf(err))
	})

	t.Run("order belongs to another payer", func(t *testing.T) {
		_, err := svc.TopUp(ctx, "u2", models.TopUpRequest{Payment: proof})
		require.Error(t, err)
		assert.Equal(t, "ORDER_MISMATCH", utils.CodeOf(err))
	})

	t.Run("unknown order", func(t *testing.T) {
		stray := models.PaymentProof{OrderID: "order_stray", PaymentID: "pay_9", Signature: signer.Sign("order_stray", "pay_9")}
		_, err := svc.TopUp(ctx, "u1", models.TopUpRequest{Payment: stray})
		require.Error(t, err)
		assert.Equal(t, "ORDER_MISMATCH", utils.CodeOf(err))
	})

	t.Run("credits the order amount once", func(t *testing.T) {
		tx, err := svc.TopUp(ctx, "u1", models.TopUpRequest{Payment: proof})
		require.NoError(t, err)
		assert.Equal(t, 500.0, tx.Amount)
		assert.Equal(t, models.EventTopUp, tx.Event)
		assert.Equal(t, "pay_1", tx.Reference)

		_, err = svc.TopUp(ctx, "u1", models.TopUpRequest{Amount: 500, Payment: proof})
		require.Error(t, err)
		assert.Equal(t, "PAYMENT_ALREADY_USED", utils.CodeOf(err))

		sum, err := svc.Summary(ctx, "u1", models.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, 500.0, sum.Balance)
		assert.Equal(t, int64(1), sum.Totals.Count)
	})
}

func TestTopUpRollsBackClaimWhenCreditFails(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	signer := payment.NewHMACVerifier("test-secret")
	gateway := &payment.LocalGateway{Currency: "INR"}
	svc.Orders = gateway

	order, err := gateway.CreateOrder(ctx, "u1", models.CreateOrderRequest{Amount: 120})
	require.NoError(t, err)
	proof := models.PaymentProof{OrderID: order.OrderID, PaymentID: "pay_r", Signature: signer.Sign(order.OrderID, "pay_r")}

	store.FailNext("wallet.apply", errors.New("write conflict"))
	_, err = svc.TopUp(ctx, "u1", models.TopUpRequest{Payment: proof})
	require.Error(t, err)

	tx, err := svc.TopUp(ctx, "u1", models.TopUpRequest{Payment: proof})
	require.NoError(t, err, "the failed attempt must not keep the payment claimed")
	assert.Equal(t, 120.0, tx.Amount)
}

func TestClaimPayment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	claim := models.PaymentClaim{PaymentID: "pay_1", OrderID: "order_1", SubjectID: "u1", Purpose: models.PurposeBooking}
	require.NoError(t, svc.ClaimPayment(ctx, claim))

	err := svc.ClaimPayment(ctx, claim)
	require.Error(t, err)
	assert.Equal(t, "PAYMENT_ALREADY_USED", utils.CodeOf(err))

	err = svc.ClaimPayment(ctx, models.PaymentClaim{OrderID: "order_2"})
	assert.Equal(t, "INVALID_REQUEST", utils.CodeOf(err))
}
