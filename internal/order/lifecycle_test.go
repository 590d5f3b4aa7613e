package order

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsmart/backend/internal/models"
)

func processingOrder(userID uint) *models.Order {
	return &models.Order{
		ID:          1,
		UserID:      userID,
		OrderStatus: models.OrderProcessing,
		Items: []models.OrderItem{
			{ProductID: 10, Quantity: 2, UnitPrice: 100},
			{ProductID: 20, Quantity: 1, UnitPrice: 50},
		},
		TotalPrice: 250,
	}
}

func TestAdminUpdateOverwritesWithoutTransitionChecks(t *testing.T) {
	o := processingOrder(1)
	o.OrderStatus = models.OrderDelivered

	// Delivered back to Processing is fine for an admin
	require.NoError(t, AdminUpdate(o, models.OrderProcessing, models.PaymentFailed))
	require.Equal(t, models.OrderProcessing, o.OrderStatus)
	require.Equal(t, models.PaymentFailed, o.PaymentStatus)
}

func TestAdminUpdateLeavesOmittedFieldsAlone(t *testing.T) {
	o := processingOrder(1)
	o.PaymentStatus = models.PaymentPending

	require.NoError(t, AdminUpdate(o, models.OrderShipped, ""))
	require.Equal(t, models.OrderShipped, o.OrderStatus)
	require.Equal(t, models.PaymentPending, o.PaymentStatus)
}

func TestAdminUpdateRejectsUnknownValues(t *testing.T) {
	o := processingOrder(1)

	err := AdminUpdate(o, "Teleported", "")
	require.ErrorIs(t, err, ErrBadRequest)

	err = AdminUpdate(o, "", "Maybe")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestCancelByOwnerWhileProcessing(t *testing.T) {
	o := processingOrder(7)

	require.NoError(t, Cancel(o, Principal{ID: 7, Role: models.RoleUser}))
	require.Equal(t, models.OrderCancelled, o.OrderStatus)
}

func TestCancelByNonOwnerIsForbidden(t *testing.T) {
	o := processingOrder(7)

	err := Cancel(o, Principal{ID: 8, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, models.OrderProcessing, o.OrderStatus)
}

func TestCancelTwiceFailsSecondTime(t *testing.T) {
	o := processingOrder(7)
	p := Principal{ID: 7, Role: models.RoleUser}

	require.NoError(t, Cancel(o, p))

	err := Cancel(o, p)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), models.OrderCancelled)
}

func TestCancelAfterPaymentIsInvalid(t *testing.T) {
	o := processingOrder(7)
	o.OrderStatus = models.OrderPaid

	err := Cancel(o, Principal{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "only Processing orders can be cancelled")
}

func TestShopAdvanceAlongForwardPath(t *testing.T) {
	owned := map[uint]struct{}{10: {}}
	o := processingOrder(7)

	require.NoError(t, ShopAdvance(o, owned, models.OrderShipped))
	require.Equal(t, models.OrderShipped, o.OrderStatus)

	require.NoError(t, ShopAdvance(o, owned, models.OrderDelivered))
	require.Equal(t, models.OrderDelivered, o.OrderStatus)
}

func TestShopAdvanceRejectsWrongTarget(t *testing.T) {
	owned := map[uint]struct{}{10: {}}
	o := processingOrder(7)
	o.OrderStatus = models.OrderShipped

	err := ShopAdvance(o, owned, models.OrderProcessing)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "Shipped -> Delivered")
	require.Equal(t, models.OrderShipped, o.OrderStatus)
}

func TestShopAdvanceFromTerminalState(t *testing.T) {
	owned := map[uint]struct{}{10: {}}

	for _, status := range []string{models.OrderDelivered, models.OrderCancelled} {
		o := processingOrder(7)
		o.OrderStatus = status

		err := ShopAdvance(o, owned, models.OrderShipped)
		require.ErrorIs(t, err, ErrInvalidState)
		require.Contains(t, err.Error(), status)
	}
}

func TestShopAdvanceWithoutOwnedItems(t *testing.T) {
	owned := map[uint]struct{}{999: {}}
	o := processingOrder(7)

	err := ShopAdvance(o, owned, models.OrderShipped)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestMarkPaid(t *testing.T) {
	o := processingOrder(7)

	MarkPaid(o)
	require.Equal(t, models.OrderPaid, o.OrderStatus)
	require.Equal(t, models.PaymentCompleted, o.PaymentStatus)
}
