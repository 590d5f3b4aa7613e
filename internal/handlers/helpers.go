package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopsmart/backend/internal/logging"
	"github.com/shopsmart/backend/internal/mykafka"
	"github.com/shopsmart/backend/internal/order"
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// httpError maps the order package's sentinel errors onto transport codes.
func httpError(err error) error {
	var code int
	switch {
	case errors.Is(err, order.ErrBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, order.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, order.ErrInvalidState):
		code = http.StatusConflict
	default:
		code = http.StatusInternalServerError
	}
	return echo.NewHTTPError(code, err.Error())
}

// publishEvent is fire-and-forget: delivery failures are logged and never
// fail the request.
func publishEvent(c echo.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", topic, "error", err)
	}
}
