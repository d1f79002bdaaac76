package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"prepbook/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway opens orders as Stripe PaymentIntents. stripe.Key must be set at startup.
type StripeGateway struct {
	Currency string
	Logger   *zap.Logger
}

func NewStripeGateway(currency string, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Currency: strings.ToLower(currency), Logger: logger}
}

// minorUnits converts a major-unit amount to the integer the gateway expects.
func minorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (g *StripeGateway) CreateOrder(ctx context.Context, subjectID string, req models.CreateOrderRequest) (*models.PaymentOrder, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(req.Amount)),
		Currency: stripe.String(g.Currency),
	}
	params.Context = ctx
	params.AddMetadata("subjectId", subjectID)
	if req.Purpose != "" {
		params.AddMetadata("purpose", req.Purpose)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		g.Logger.Error("stripe: failed to create payment intent", zap.String("subjectId", subjectID), zap.Error(err))
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	g.Logger.Info("payment order created", zap.String("orderId", pi.ID), zap.String("subjectId", subjectID))
	order := orderFromIntent(pi)
	order.ClientSecret = pi.ClientSecret
	return order, nil
}

// GetOrder reads the PaymentIntent back. Only a succeeded intent counts as paid.
func (g *StripeGateway) GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(orderID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound) {
			return nil, ErrOrderNotFound
		}
		g.Logger.Error("stripe: failed to fetch payment intent", zap.String("orderId", orderID), zap.Error(err))
		return nil, fmt.Errorf("stripe: get payment intent: %w", err)
	}
	return orderFromIntent(pi), nil
}

func orderFromIntent(pi *stripe.PaymentIntent) *models.PaymentOrder {
	amount, _ := decimal.New(pi.Amount, -2).Float64()
	return &models.PaymentOrder{
		OrderID:   pi.ID,
		SubjectID: pi.Metadata["subjectId"],
		Purpose:   pi.Metadata["purpose"],
		Amount:    amount,
		Currency:  string(pi.Currency),
		Status:    string(pi.Status),
		Paid:      pi.Status == stripe.PaymentIntentStatusSucceeded,
		CreatedAt: time.Unix(pi.Created, 0),
	}
}

// LocalGateway issues order ids without calling out. Used when no Stripe key is configured.
// It has no payment rail, so an order it issued reads back as paid and the signed proof
// from the payment relay is the only evidence of payment.
type LocalGateway struct {
	Currency string

	orders sync.Map // orderID -> models.PaymentOrder
}

func (g *LocalGateway) CreateOrder(_ context.Context, subjectID string, req models.CreateOrderRequest) (*models.PaymentOrder, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}
	order := models.PaymentOrder{
		OrderID:   "order_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		SubjectID: subjectID,
		Purpose:   req.Purpose,
		Amount:    req.Amount,
		Currency:  strings.ToLower(g.Currency),
		Status:    "created",
		CreatedAt: time.Now(),
	}
	g.orders.Store(order.OrderID, order)
	return &order, nil
}

func (g *LocalGateway) GetOrder(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	v, ok := g.orders.Load(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	order := v.(models.PaymentOrder)
	order.Paid = true
	return &order, nil
}
