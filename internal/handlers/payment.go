package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/mykafka"
	"github.com/shopsmart/backend/internal/order"
	"github.com/shopsmart/backend/internal/payment"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Gateway  payment.Gateway
	Secret   string
	Currency string
	Producer mykafka.Publisher
}

// CreatePaymentOrder registers the order with the payment gateway and
// stores the returned gateway order id for later verification.
func (h *PaymentHandler) CreatePaymentOrder(c echo.Context) error {
	var req struct {
		OrderID uint `json:"order_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var o models.Order
	if err := h.DB.First(&o, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	amountMinor := int64(math.Round(o.TotalPrice * 100))
	gatewayOrderID, err := h.Gateway.CreateOrder(c.Request().Context(), amountMinor, h.Currency, fmt.Sprint(o.ID))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	o.GatewayOrderID = gatewayOrderID
	if err := h.DB.Omit("Items").Save(&o).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"gateway_order_id": gatewayOrderID,
		"amount":           amountMinor,
		"currency":         h.Currency,
	})
}

// VerifyPayment checks the gateway's HMAC signature over
// "gatewayOrderID|paymentID" and on success marks the order paid.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req struct {
		OrderID        uint   `json:"order_id"`
		GatewayOrderID string `json:"gateway_order_id"`
		PaymentID      string `json:"payment_id"`
		Signature      string `json:"signature"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !payment.VerifySignature(h.Secret, req.GatewayOrderID, req.PaymentID, req.Signature) {
		return echo.NewHTTPError(http.StatusBadRequest, "payment verification failed")
	}

	var o models.Order
	if err := h.DB.First(&o, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	order.MarkPaid(&o)
	if err := h.DB.Omit("Items").Save(&o).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publishEvent(c, h.Producer, "order_events", fmt.Sprint(o.ID), map[string]any{
		"type":      "payment_verified",
		"orderID":   o.ID,
		"paymentID": req.PaymentID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "payment verified successfully"})
}
