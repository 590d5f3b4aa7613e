package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/mykafka"
	"github.com/shopsmart/backend/internal/order"
	"github.com/shopsmart/backend/internal/service/token"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	publishEvent(c, h.Producer, "order_events", fmt.Sprint(event["orderID"]), event)
}

type placeOrderRequest struct {
	Items []struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	} `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

// PlaceOrder creates an order from an explicit item list or, when none is
// given, from the buyer's cart. The cart path clears the cart in the same
// transaction as the insert so a failure leaves both untouched.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var created *models.Order
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var lines []order.Line
		fromCart := len(req.Items) == 0

		if fromCart {
			var cartItems []models.CartItem
			if err := tx.Where("user_id = ?", p.ID).Find(&cartItems).Error; err != nil {
				return err
			}
			if len(cartItems) == 0 {
				return fmt.Errorf("%w: cart is empty", order.ErrBadRequest)
			}
			for _, it := range cartItems {
				lines = append(lines, order.Line{ProductID: it.ProductID, Quantity: it.Quantity})
			}
		} else {
			for _, it := range req.Items {
				lines = append(lines, order.Line{ProductID: it.ProductID, Quantity: it.Quantity})
			}
		}

		prices, err := currentPrices(tx, productIDs(lines))
		if err != nil {
			return err
		}

		o, err := order.BuildOrder(p.ID, lines, prices, req.ShippingAddress, req.PaymentMethod)
		if err != nil {
			return err
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}

		if fromCart {
			if err := tx.Where("user_id = ?", p.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		created = o
		return nil
	})
	if txErr != nil {
		return httpError(txErr)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"orderID": created.ID,
		"userID":  p.ID,
		"total":   created.TotalPrice,
	})

	return c.JSON(http.StatusCreated, h.orderView(created))
}

func productIDs(lines []order.Line) []uint {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

func currentPrices(db *gorm.DB, ids []uint) (map[uint]float64, error) {
	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	prices := make(map[uint]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	return prices, nil
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Where("user_id = ?", p.ID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.orderViews(orders))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	p := token.PrincipalFrom(c)

	o, err := h.loadOrder(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !p.IsAdmin() && o.UserID != p.ID {
		return httpError(fmt.Errorf("%w: order does not belong to this user", order.ErrForbidden))
	}
	return c.JSON(http.StatusOK, h.orderView(o))
}

func (h *OrderHandler) AdminListOrders(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.orderViews(orders))
}

func (h *OrderHandler) loadOrder(idParam string) (*models.Order, error) {
	id, err := strconv.Atoi(idParam)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", order.ErrBadRequest)
	}
	var o models.Order
	if err := h.DB.Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", order.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

func (h *OrderHandler) saveOrder(o *models.Order) error {
	return h.DB.Omit("Items").Save(o).Error
}

// AdminUpdateStatus overwrites order and/or payment status. Transition
// legality is deliberately not checked for admins.
func (h *OrderHandler) AdminUpdateStatus(c echo.Context) error {
	var req struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, err := h.loadOrder(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if err := order.AdminUpdate(o, req.Status, req.PaymentStatus); err != nil {
		return httpError(err)
	}
	if err := h.saveOrder(o); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":          "order_status_updated",
		"orderID":       o.ID,
		"orderStatus":   o.OrderStatus,
		"paymentStatus": o.PaymentStatus,
	})
	return c.JSON(http.StatusOK, h.orderView(o))
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	p := token.PrincipalFrom(c)

	o, err := h.loadOrder(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if err := order.Cancel(o, p); err != nil {
		return httpError(err)
	}
	if err := h.saveOrder(o); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_cancelled",
		"orderID": o.ID,
		"userID":  p.ID,
	})
	return c.JSON(http.StatusOK, h.orderView(o))
}

// ownedProductIDs resolves the set of product ids belonging to a shop.
func (h *OrderHandler) ownedProductIDs(shopID uint) (map[uint]struct{}, map[uint]float64, error) {
	var products []models.Product
	if err := h.DB.Where("shop_id = ?", shopID).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	owned := make(map[uint]struct{}, len(products))
	prices := make(map[uint]float64, len(products))
	for _, p := range products {
		owned[p.ID] = struct{}{}
		prices[p.ID] = p.Price
	}
	return owned, prices, nil
}

func (h *OrderHandler) ShopAdvanceStatus(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, err := h.loadOrder(c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	owned, _, err := h.ownedProductIDs(p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := order.ShopAdvance(o, owned, req.Status); err != nil {
		return httpError(err)
	}
	if err := h.saveOrder(o); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":        "order_status_updated",
		"orderID":     o.ID,
		"shopID":      p.ID,
		"orderStatus": o.OrderStatus,
	})
	return c.JSON(http.StatusOK, h.orderView(o))
}

// shopOrders loads every order containing at least one of the shop's
// products, newest first.
func (h *OrderHandler) shopOrders(owned map[uint]struct{}) ([]models.Order, error) {
	ids := make([]uint, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var orders []models.Order
	err := h.DB.Preload("Items").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.product_id IN ?", ids).
		Group("orders.id").
		Order("orders.created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (h *OrderHandler) ShopOrders(c echo.Context) error {
	p := token.PrincipalFrom(c)

	owned, prices, err := h.ownedProductIDs(p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	orders, err := h.shopOrders(owned)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]map[string]any, 0, len(orders))
	for i := range orders {
		scoped, ok := order.Scope(&orders[i], owned, prices)
		if !ok {
			continue
		}
		out = append(out, h.scopedOrderView(scoped))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) ShopSales(c echo.Context) error {
	p := token.PrincipalFrom(c)

	owned, prices, err := h.ownedProductIDs(p.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	orders, err := h.shopOrders(owned)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	report := order.BuildSalesReport(orders, owned, prices)
	recent := make([]map[string]any, 0, len(report.RecentOrders))
	for _, scoped := range report.RecentOrders {
		recent = append(recent, h.scopedOrderView(scoped))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_sales":      report.TotalSales,
		"total_orders":     report.TotalOrders,
		"total_items_sold": report.TotalItemsSold,
		"recent_orders":    recent,
	})
}

func (h *OrderHandler) DisputeAction(c echo.Context) error {
	var cmd order.DisputeCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, err := h.loadOrder(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if err := order.ApplyDispute(o, cmd, time.Now()); err != nil {
		return httpError(err)
	}
	if err := h.saveOrder(o); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "dispute_updated",
		"orderID": o.ID,
		"action":  cmd.Action,
		"status":  o.Dispute.Status,
	})
	return c.JSON(http.StatusOK, h.orderView(o))
}

func (h *OrderHandler) RefundAction(c echo.Context) error {
	var cmd order.RefundCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, err := h.loadOrder(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if err := order.ApplyRefund(o, cmd, time.Now()); err != nil {
		return httpError(err)
	}
	if o.Refund.Status == models.RefundProcessed {
		o.PaymentStatus = models.PaymentRefunded
	}
	if err := h.saveOrder(o); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "refund_updated",
		"orderID": o.ID,
		"action":  cmd.Action,
		"status":  o.Refund.Status,
	})
	return c.JSON(http.StatusOK, h.orderView(o))
}

type productView struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// productViews fetches the catalog rows behind a set of order items so
// responses can populate items[].product.
func (h *OrderHandler) productViews(items []models.OrderItem) map[uint]productView {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	views := make(map[uint]productView, len(ids))
	if len(ids) == 0 {
		return views
	}
	var products []models.Product
	if err := h.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return views
	}
	for _, p := range products {
		views[p.ID] = productView{ID: p.ID, Name: p.Name, Price: p.Price}
	}
	return views
}

func itemViews(items []models.OrderItem, products map[uint]productView) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		view := map[string]any{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
		}
		if p, ok := products[it.ProductID]; ok {
			view["product"] = p
		}
		out = append(out, view)
	}
	return out
}

func (h *OrderHandler) orderView(o *models.Order) map[string]any {
	return map[string]any{
		"id":               o.ID,
		"user_id":          o.UserID,
		"items":            itemViews(o.Items, h.productViews(o.Items)),
		"total_price":      o.TotalPrice,
		"shipping_address": o.ShippingAddress,
		"payment_method":   o.PaymentMethod,
		"payment_status":   o.PaymentStatus,
		"order_status":     o.OrderStatus,
		"dispute":          o.Dispute,
		"refund":           o.Refund,
		"created_at":       o.CreatedAt,
		"updated_at":       o.UpdatedAt,
	}
}

func (h *OrderHandler) orderViews(orders []models.Order) []map[string]any {
	out := make([]map[string]any, 0, len(orders))
	for i := range orders {
		out = append(out, h.orderView(&orders[i]))
	}
	return out
}

func (h *OrderHandler) scopedOrderView(scoped order.ScopedOrder) map[string]any {
	view := h.orderView(scoped.Order)
	view["items"] = itemViews(scoped.Items, h.productViews(scoped.Items))
	view["shop_total_price"] = scoped.ShopTotalPrice
	view["shop_item_count"] = scoped.ShopItemCount
	return view
}
