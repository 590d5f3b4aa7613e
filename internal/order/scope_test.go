package order

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsmart/backend/internal/models"
)

func TestScopeFiltersToOwnedItems(t *testing.T) {
	o := processingOrder(1)
	owned := map[uint]struct{}{10: {}}
	current := map[uint]float64{10: 120, 20: 50} // price raised since the order

	scoped, ok := Scope(o, owned, current)
	require.True(t, ok)
	require.Len(t, scoped.Items, 1)
	require.Equal(t, uint(10), scoped.Items[0].ProductID)
	require.Equal(t, uint(2), scoped.ShopItemCount)
	// scoped total follows the current catalog price
	require.Equal(t, 240.0, scoped.ShopTotalPrice)
	// the order itself keeps the recorded total
	require.Equal(t, 250.0, scoped.Order.TotalPrice)
}

func TestScopeDropsOrdersWithNoOwnedItems(t *testing.T) {
	o := processingOrder(1)

	_, ok := Scope(o, map[uint]struct{}{99: {}}, map[uint]float64{99: 10})
	require.False(t, ok)
}

func TestBuildSalesReportAggregates(t *testing.T) {
	orders := []models.Order{*processingOrder(1), *processingOrder(2), *processingOrder(3)}
	// the third buyer only ordered someone else's product
	orders[2].Items = []models.OrderItem{{ProductID: 99, Quantity: 5, UnitPrice: 1}}

	owned := map[uint]struct{}{10: {}, 20: {}}
	current := map[uint]float64{10: 100, 20: 50}

	report := BuildSalesReport(orders, owned, current)
	require.Equal(t, 2, report.TotalOrders)
	require.Equal(t, 500.0, report.TotalSales)
	require.Equal(t, uint(6), report.TotalItemsSold)
	require.Len(t, report.RecentOrders, 2)
}

func TestBuildSalesReportCapsRecentOrders(t *testing.T) {
	orders := make([]models.Order, 15)
	for i := range orders {
		orders[i] = *processingOrder(uint(i + 1))
	}

	report := BuildSalesReport(orders, map[uint]struct{}{10: {}, 20: {}}, map[uint]float64{10: 100, 20: 50})
	require.Equal(t, 15, report.TotalOrders)
	require.Len(t, report.RecentOrders, 10)
	// totals keep counting past the preview cutoff
	require.Equal(t, 15*250.0, report.TotalSales)
}
