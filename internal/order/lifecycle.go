package order

import (
	"fmt"

	"github.com/shopsmart/backend/internal/models"
)

var orderStatuses = map[string]struct{}{
	models.OrderProcessing: {},
	models.OrderPaid:       {},
	models.OrderShipped:    {},
	models.OrderDelivered:  {},
	models.OrderCancelled:  {},
}

var paymentStatuses = map[string]struct{}{
	models.PaymentPending:   {},
	models.PaymentCompleted: {},
	models.PaymentFailed:    {},
	models.PaymentRefunded:  {},
}

// shopNext is the only path a shop actor may move an order along.
// Paid orders still show as Processing to the seller's fulfillment flow,
// so the map is keyed on fulfillment states only.
var shopNext = map[string]string{
	models.OrderProcessing: models.OrderShipped,
	models.OrderShipped:    models.OrderDelivered,
}

// AdminUpdate overwrites order and/or payment status without checking
// transition legality. Admins are trusted to override any state; only the
// values themselves are validated.
func AdminUpdate(o *models.Order, status, paymentStatus string) error {
	if status != "" {
		if _, ok := orderStatuses[status]; !ok {
			return fmt.Errorf("%w: unknown order status %q", ErrBadRequest, status)
		}
		o.OrderStatus = status
	}
	if paymentStatus != "" {
		if _, ok := paymentStatuses[paymentStatus]; !ok {
			return fmt.Errorf("%w: unknown payment status %q", ErrBadRequest, paymentStatus)
		}
		o.PaymentStatus = paymentStatus
	}
	return nil
}

// Cancel aborts an order. Only the owning buyer may cancel, and only
// while the order is still Processing.
func Cancel(o *models.Order, p Principal) error {
	if o.UserID != p.ID {
		return fmt.Errorf("%w: order does not belong to this user", ErrForbidden)
	}
	if o.OrderStatus != models.OrderProcessing {
		return fmt.Errorf("%w: only Processing orders can be cancelled, current status is %s",
			ErrInvalidState, o.OrderStatus)
	}
	o.OrderStatus = models.OrderCancelled
	return nil
}

// ShopAdvance moves an order one step along the fixed fulfillment path.
// The caller resolves ownedProducts from the shop's catalog; at least one
// line item must belong to the acting shop.
func ShopAdvance(o *models.Order, ownedProducts map[uint]struct{}, requested string) error {
	owned := false
	for _, item := range o.Items {
		if _, ok := ownedProducts[item.ProductID]; ok {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("%w: no items in this order belong to your shop", ErrForbidden)
	}

	allowed, ok := shopNext[o.OrderStatus]
	if !ok {
		return fmt.Errorf("%w: order is %s, no further status changes are allowed",
			ErrInvalidState, o.OrderStatus)
	}
	if requested != allowed {
		return fmt.Errorf("%w: order is %s, requested %s; allowed transition is %s -> %s",
			ErrInvalidState, o.OrderStatus, requested, o.OrderStatus, allowed)
	}

	o.OrderStatus = requested
	return nil
}

// MarkPaid is applied after the payment gateway confirms a signature.
func MarkPaid(o *models.Order) {
	o.PaymentStatus = models.PaymentCompleted
	o.OrderStatus = models.OrderPaid
}
