package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prepbook/config"
	memoryRepo "prepbook/database/repository/memory"
	"prepbook/handlers"
	"prepbook/models"
	"prepbook/routes"
	"prepbook/services/availability"
	"prepbook/services/booking"
	"prepbook/services/payment"
	"prepbook/services/wallet"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "handlers-test"
}

type silentNotifier struct{}

func (silentNotifier) SendSessionReminder(context.Context, *models.Booking, string, string, int) error {
	return nil
}
func (silentNotifier) NotifyBookingConfirmed(context.Context, *models.Booking) {}
func (silentNotifier) NotifyBookingCancelled(context.Context, *models.Booking) {}

type testServer struct {
	router *gin.Engine
	wallet *wallet.DefaultWalletService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	// Sunday 2025-06-01 10:30 UTC.
	now := func() time.Time { return time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC) }

	store := memoryRepo.NewStore()
	store.PutUser(models.User{ID: "u1", Name: "Candidate", Role: models.RoleUser})
	store.PutUser(models.User{ID: "u2", Name: "Other", Role: models.RoleUser})
	store.PutUser(models.User{ID: "p1", Name: "Interviewer", Role: models.RoleInterviewer, Approved: true})
	store.PutUser(models.User{ID: "admin", Name: "Platform", Role: models.RoleAdmin})

	logger := zap.NewNop()
	verifier := payment.NewHMACVerifier("gateway-secret")
	gateway := &payment.LocalGateway{Currency: "INR"}
	ws := &wallet.DefaultWalletService{Repo: store.Wallets(), Tx: store, Verifier: verifier, Orders: gateway, Logger: logger}
	as := &availability.DefaultAvailabilityService{
		Rules:      store.SlotRules(),
		Bookings:   store.Bookings(),
		SlotLength: time.Hour,
		Location:   time.UTC,
		Now:        now,
		Logger:     logger,
	}
	bs := &booking.DefaultBookingService{
		Bookings:           store.Bookings(),
		Users:              store.Users(),
		Wallet:             ws,
		Tx:                 store,
		Verifier:           verifier,
		Orders:             gateway,
		Notifier:           silentNotifier{},
		FeePercent:         10,
		CancellationCutoff: 24 * time.Hour,
		Location:           time.UTC,
		Now:                now,
		Logger:             logger,
	}

	hb := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bs, logger),
		handlers.NewAvailabilityHandler(as, logger),
		handlers.NewWalletHandler(ws, logger),
		handlers.NewPaymentHandler(gateway, logger),
		handlers.NewAdminHandler(ws),
	)
	r := gin.New()
	routes.RegisterHealthRoute(r)
	routes.RegisterAvailabilityRoutes(r, hb)
	routes.RegisterBookingRoutes(r, hb)
	routes.RegisterWalletRoutes(r, hb)
	routes.RegisterAdminRoutes(r, hb)
	return &testServer{router: r, wallet: ws}
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(subject, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[utils.ErrorResponse](t, w).Code
}

type bookingEnvelope struct {
	Booking models.Booking `json:"booking"`
}

func (s *testServer) saveMondayRules(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPut, "/api/slot-rules", token(t, "p1", models.RoleInterviewer), models.SaveSlotRuleRequest{
		Days: []models.DayRule{{Day: "Monday", StartTime: "09:00", EndTime: "12:00", Enabled: true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func mondayBooking(start, end string) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ProviderID:    "p1",
		Date:          "2025-06-02",
		StartTime:     start,
		EndTime:       end,
		Amount:        500,
		PaymentMethod: models.PaymentWallet,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSlotRulesRequireInterviewer(t *testing.T) {
	s := newTestServer(t)
	body := models.SaveSlotRuleRequest{Days: []models.DayRule{{Day: "Monday", StartTime: "09:00", EndTime: "12:00", Enabled: true}}}

	w := s.do(t, http.MethodPut, "/api/slot-rules", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/slot-rules", token(t, "u1", models.RoleUser), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.saveMondayRules(t)
	w = s.do(t, http.MethodGet, "/api/slot-rules/p1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rules := decode[struct {
		Rules models.SlotRule `json:"rules"`
	}](t, w).Rules
	assert.Len(t, rules.Days, 7)
	monday, ok := rules.DayRuleFor("Monday")
	require.True(t, ok)
	assert.True(t, monday.Enabled)
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.saveMondayRules(t)

	w := s.do(t, http.MethodGet, "/api/availability/p1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/availability/p1?date=2025-05-30", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAST_DATE", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/availability/p1?date=2025-06-02", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.AvailabilityResponse](t, w)
	assert.Equal(t, "Monday", resp.Day)
	assert.Len(t, resp.Slots, 3)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.saveMondayRules(t)
	_, err := s.wallet.Post(context.Background(), models.Posting{
		SubjectID: "u1", Role: models.RoleUser, Type: models.TxCredit, Amount: 500, Reason: "seed",
	})
	require.NoError(t, err)
	payer := token(t, "u1", models.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", token(t, "p1", models.RoleInterviewer), mondayBooking("09:00", "10:00"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/bookings", payer, mondayBooking("09:00", "10:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[bookingEnvelope](t, w).Booking
	assert.Equal(t, models.BookingConfirmed, created.Status)
	assert.Equal(t, 450.0, created.ProviderShare)

	w = s.do(t, http.MethodPost, "/api/bookings", token(t, "u2", models.RoleUser), mondayBooking("09:00", "10:00"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_UNAVAILABLE", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/availability/p1?date=2025-06-02", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, slot := range decode[models.AvailabilityResponse](t, w).Slots {
		assert.NotEqual(t, "09:00", slot.Start)
	}

	w = s.do(t, http.MethodGet, "/api/bookings/"+created.ID, token(t, "u2", models.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings?as=provider", token(t, "p1", models.RoleInterviewer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Bookings []models.Booking `json:"bookings"`
		Total    int64            `json:"total"`
	}](t, w)
	assert.EqualValues(t, 1, listed.Total)

	w = s.do(t, http.MethodGet, "/api/bookings?as=someone", payer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Monday 09:00 is under 24 hours away.
	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", payer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CANCELLATION_WINDOW_CLOSED", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/wallet", payer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[struct {
		Wallet models.WalletSummary `json:"wallet"`
	}](t, w).Wallet
	assert.Equal(t, 0.0, summary.Balance)

	w = s.do(t, http.MethodGet, "/api/wallet?role=interviewer", token(t, "p1", models.RoleInterviewer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":450`)

	w = s.do(t, http.MethodGet, "/api/wallet/transactions?role=user", payer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	txs := decode[struct {
		Transactions []models.WalletTransaction `json:"transactions"`
		Total        int64                      `json:"total"`
	}](t, w)
	assert.EqualValues(t, 2, txs.Total)
}

func (s *testServer) openOrder(t *testing.T, tok string, amount float64, purpose string) models.PaymentOrder {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/payments/orders", tok, models.CreateOrderRequest{Amount: amount, Purpose: purpose})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Order models.PaymentOrder `json:"order"`
	}](t, w).Order
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	s := newTestServer(t)
	payer := token(t, "u1", models.RoleUser)
	order := s.openOrder(t, payer, 500, models.PurposeBooking)

	req := mondayBooking("10:00", "11:00")
	req.PaymentMethod = models.PaymentGateway
	w := s.do(t, http.MethodPost, "/api/bookings", payer, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w), "gateway booking without an order")

	req.PaymentOrderID = order.OrderID
	w = s.do(t, http.MethodPost, "/api/bookings", payer, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[bookingEnvelope](t, w).Booking
	assert.Equal(t, models.BookingPending, created.Status)

	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/confirm-payment", payer, map[string]string{"orderId": order.OrderID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))

	bad := models.PaymentProof{OrderID: order.OrderID, PaymentID: "pay_1", Signature: "nope"}
	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/confirm-payment", payer, bad)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "SIGNATURE_MISMATCH", errorCode(t, w))

	good := models.PaymentProof{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: payment.NewHMACVerifier("gateway-secret").Sign(order.OrderID, "pay_1"),
	}
	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/confirm-payment", payer, good)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.BookingConfirmed, decode[bookingEnvelope](t, w).Booking.Status)

	// The spent proof cannot also credit the wallet.
	w = s.do(t, http.MethodPost, "/api/wallet/top-up", payer, models.TopUpRequest{Payment: good})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PAYMENT_ALREADY_USED", errorCode(t, w))
}

func TestPaymentOrderAndTopUp(t *testing.T) {
	s := newTestServer(t)
	payer := token(t, "u1", models.RoleUser)

	order := s.openOrder(t, payer, 250, models.PurposeTopUp)
	assert.True(t, strings.HasPrefix(order.OrderID, "order_"))
	assert.Equal(t, "inr", order.Currency)

	topUp := models.TopUpRequest{
		Amount:  250,
		Payment: models.PaymentProof{OrderID: order.OrderID, PaymentID: "pay_9", Signature: "forged"},
	}
	w := s.do(t, http.MethodPost, "/api/wallet/top-up", payer, topUp)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	topUp.Payment.Signature = payment.NewHMACVerifier("gateway-secret").Sign(order.OrderID, "pay_9")
	topUp.Amount = 25000
	w = s.do(t, http.MethodPost, "/api/wallet/top-up", payer, topUp)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "ORDER_MISMATCH", errorCode(t, w), "client amount must match the order")

	topUp.Amount = 0
	w = s.do(t, http.MethodPost, "/api/wallet/top-up", payer, topUp)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/wallet/top-up", payer, topUp)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PAYMENT_ALREADY_USED", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/wallet", payer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":250`)
}

func TestMalformedRequestsUseErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	payer := token(t, "u1", models.RoleUser)
	interviewer := token(t, "p1", models.RoleInterviewer)

	cases := []struct {
		name, method, path, tok string
		body                    any
		code                    string
	}{
		{"booking body", http.MethodPost, "/api/bookings", payer, "not an object", "INVALID_REQUEST"},
		{"booking missing fields", http.MethodPost, "/api/bookings", payer, map[string]string{"providerId": "p1"}, "INVALID_REQUEST"},
		{"booking role filter", http.MethodGet, "/api/bookings?as=someone", payer, nil, "INVALID_REQUEST"},
		{"confirm body", http.MethodPost, "/api/bookings/b1/confirm-payment", payer, []int{1}, "INVALID_REQUEST"},
		{"cancel body", http.MethodPost, "/api/bookings/b1/cancel", payer, "reason", "INVALID_REQUEST"},
		{"slot rules body", http.MethodPut, "/api/slot-rules", interviewer, "monday", "INVALID_REQUEST"},
		{"availability date", http.MethodGet, "/api/availability/p1", "", nil, "INVALID_DATE"},
		{"order body", http.MethodPost, "/api/payments/orders", payer, map[string]string{"purpose": "top_up"}, "INVALID_REQUEST"},
		{"order amount", http.MethodPost, "/api/payments/orders", payer, models.CreateOrderRequest{Amount: -5}, "INVALID_REQUEST"},
		{"top-up body", http.MethodPost, "/api/wallet/top-up", payer, map[string]float64{"amount": 10}, "INVALID_REQUEST"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := s.do(t, c.method, c.path, c.tok, c.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, c.code, errorCode(t, w))
		})
	}
}

func TestAdminWallets(t *testing.T) {
	s := newTestServer(t)
	_, err := s.wallet.GetOrCreate(context.Background(), "p1", models.RoleInterviewer)
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/admin/wallets?role=interviewer", token(t, "u1", models.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/wallets?role=interviewer", token(t, "admin", models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	wallets := decode[struct {
		Wallets []models.WalletSummary `json:"wallets"`
	}](t, w).Wallets
	require.Len(t, wallets, 1)
	assert.Equal(t, "p1", wallets[0].SubjectID)

	w = s.do(t, http.MethodGet, "/api/admin/wallets?role=nobody", token(t, "admin", models.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
