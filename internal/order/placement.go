package order

import (
	"fmt"

	"github.com/shopsmart/backend/internal/models"
)

// Line is one requested order line before pricing.
type Line struct {
	ProductID uint
	Quantity  uint
}

// BuildOrder assembles a new order from priced lines. The prices map must
// hold the current catalog price for every referenced product; a missing
// entry means the product does not exist. Unit prices are recorded on each
// item so the total stays reproducible after catalog changes.
func BuildOrder(userID uint, lines []Line, prices map[uint]float64, addr models.ShippingAddress, method string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrBadRequest)
	}
	if addr.Address == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return nil, fmt.Errorf("%w: shipping address is incomplete", ErrBadRequest)
	}

	switch method {
	case "":
		method = models.PaymentMethodCOD
	case models.PaymentMethodCOD, models.PaymentMethodOnline:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrBadRequest, method)
	}

	var total float64
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrBadRequest)
		}
		price, ok := prices[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: one or more products are invalid", ErrBadRequest)
		}
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
		total += float64(l.Quantity) * price
	}

	return &models.Order{
		UserID:          userID,
		Items:           items,
		TotalPrice:      total,
		ShippingAddress: addr,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderProcessing,
		Dispute:         models.Dispute{Status: models.DisputeNone},
		Refund:          models.Refund{Status: models.RefundNone},
	}, nil
}
