package order

import (
	"github.com/shopsmart/backend/internal/models"
)

const recentOrdersLimit = 10

// ScopedOrder is one seller's slice of an order: only the line items for
// products the shop owns, with totals recomputed over that slice.
//
// ShopTotalPrice deliberately uses the current catalog price, not the
// price recorded at order time; the order's own TotalPrice keeps the
// recorded prices. The two figures diverge after a price change.
type ScopedOrder struct {
	Order          *models.Order
	Items          []models.OrderItem
	ShopTotalPrice float64
	ShopItemCount  uint
}

// Scope filters an order down to one shop's items. The second return is
// false when no item matches; such orders are dropped from the shop's view
// entirely rather than returned with an empty item list.
func Scope(o *models.Order, ownedProducts map[uint]struct{}, currentPrices map[uint]float64) (ScopedOrder, bool) {
	var scoped ScopedOrder
	for _, item := range o.Items {
		if _, ok := ownedProducts[item.ProductID]; !ok {
			continue
		}
		scoped.Items = append(scoped.Items, item)
		scoped.ShopTotalPrice += float64(item.Quantity) * currentPrices[item.ProductID]
		scoped.ShopItemCount += item.Quantity
	}
	if len(scoped.Items) == 0 {
		return ScopedOrder{}, false
	}
	scoped.Order = o
	return scoped, true
}

type SalesReport struct {
	TotalSales     float64       `json:"total_sales"`
	TotalOrders    int           `json:"total_orders"`
	TotalItemsSold uint          `json:"total_items_sold"`
	RecentOrders   []ScopedOrder `json:"recent_orders"`
}

// BuildSalesReport aggregates a shop's scoped orders. The input must be
// sorted by creation time descending; the ten most recent scoped orders
// are kept as a preview.
func BuildSalesReport(orders []models.Order, ownedProducts map[uint]struct{}, currentPrices map[uint]float64) SalesReport {
	var report SalesReport
	for i := range orders {
		scoped, ok := Scope(&orders[i], ownedProducts, currentPrices)
		if !ok {
			continue
		}
		report.TotalSales += scoped.ShopTotalPrice
		report.TotalOrders++
		report.TotalItemsSold += scoped.ShopItemCount
		if len(report.RecentOrders) < recentOrdersLimit {
			report.RecentOrders = append(report.RecentOrders, scoped)
		}
	}
	return report
}
