package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/payment"
)

type stubGateway struct {
	gotAmount   int64
	gotCurrency string
	orderID     string
	err         error
}

func (s *stubGateway) CreateOrder(_ context.Context, amountMinor int64, currency, _ string) (string, error) {
	s.gotAmount = amountMinor
	s.gotCurrency = currency
	return s.orderID, s.err
}

const testGatewaySecret = "test-gateway-secret"

func newPaymentHandler(env *testEnv, gw payment.Gateway) *PaymentHandler {
	return &PaymentHandler{
		DB:       env.DB,
		Gateway:  gw,
		Secret:   testGatewaySecret,
		Currency: "INR",
		Producer: env.Producer,
	}
}

func TestCreatePaymentOrder(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser("buyer", models.RoleUser)
	p1 := env.createProduct(nil, "keyboard", 99.99)
	orderID := env.placeOrder(buyer.ID, []map[string]any{{"product_id": p1.ID, "quantity": 1}})

	gw := &stubGateway{orderID: "gw_order_123"}
	h := newPaymentHandler(env, gw)

	rec, c := env.doJSONRequest(http.MethodPost, "/payments/order", map[string]any{
		"order_id": orderID,
	})
	env.asPrincipal(c, buyer.ID, models.RoleUser)

	require.NoError(t, h.CreatePaymentOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// 99.99 rounds cleanly into minor units
	require.EqualValues(t, 9999, gw.gotAmount)
	require.Equal(t, "INR", gw.gotCurrency)

	body := decodeBody(t, rec)
	require.Equal(t, "gw_order_123", body["gateway_order_id"])

	var o models.Order
	require.NoError(t, env.DB.First(&o, orderID).Error)
	require.Equal(t, "gw_order_123", o.GatewayOrderID)
}

func TestCreatePaymentOrderUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	h := newPaymentHandler(env, &stubGateway{orderID: "gw_order_123"})

	_, c := env.doJSONRequest(http.MethodPost, "/payments/order", map[string]any{
		"order_id": 42,
	})
	err := h.CreatePaymentOrder(c)
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestVerifyPayment(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser("buyer", models.RoleUser)
	p1 := env.createProduct(nil, "keyboard", 100)
	orderID := env.placeOrder(buyer.ID, []map[string]any{{"product_id": p1.ID, "quantity": 1}})
	require.NoError(t, env.DB.Model(&models.Order{}).
		Where("id = ?", orderID).Update("gateway_order_id", "gw_order_123").Error)

	h := newPaymentHandler(env, &stubGateway{})

	sig := payment.Sign(testGatewaySecret, "gw_order_123", "pay_456")
	rec, c := env.doJSONRequest(http.MethodPost, "/payments/verify", map[string]any{
		"order_id":         orderID,
		"gateway_order_id": "gw_order_123",
		"payment_id":       "pay_456",
		"signature":        sig,
	})
	env.asPrincipal(c, buyer.ID, models.RoleUser)

	require.NoError(t, h.VerifyPayment(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var o models.Order
	require.NoError(t, env.DB.First(&o, orderID).Error)
	require.Equal(t, models.PaymentCompleted, o.PaymentStatus)
	require.Equal(t, models.OrderPaid, o.OrderStatus)

	require.Len(t, env.Producer.byType("payment_verified"), 1)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser("buyer", models.RoleUser)
	p1 := env.createProduct(nil, "keyboard", 100)
	orderID := env.placeOrder(buyer.ID, []map[string]any{{"product_id": p1.ID, "quantity": 1}})

	h := newPaymentHandler(env, &stubGateway{})

	_, c := env.doJSONRequest(http.MethodPost, "/payments/verify", map[string]any{
		"order_id":         orderID,
		"gateway_order_id": "gw_order_123",
		"payment_id":       "pay_456",
		"signature":        "deadbeef",
	})
	env.asPrincipal(c, buyer.ID, models.RoleUser)

	err := h.VerifyPayment(c)
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))

	var o models.Order
	require.NoError(t, env.DB.First(&o, orderID).Error)
	require.Equal(t, models.PaymentPending, o.PaymentStatus)
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := payment.Sign("secret", "order_1", "pay_1")
	require.True(t, payment.VerifySignature("secret", "order_1", "pay_1", sig))
	require.False(t, payment.VerifySignature("secret", "order_1", "pay_2", sig))
	require.False(t, payment.VerifySignature("other", "order_1", "pay_1", sig))
}
