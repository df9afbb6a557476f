package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDashboard(t *testing.T) {
	data, err := BuildDashboard(context.Background(), insightTable(), Filter{}, 2)
	require.NoError(t, err)
	require.False(t, data.Empty)

	assert.Equal(t, 380.0, data.KPIs.TotalSales)
	assert.Equal(t, 3, data.KPIs.TotalOrders)
	assert.Equal(t, 3, data.KPIs.UniqueCustomers)
	require.NotNil(t, data.KPIs.AvgOrderValue)
	assert.InDelta(t, 95.0, *data.KPIs.AvgOrderValue, 1e-9)
	require.NotNil(t, data.KPIs.AvgShippingDays)
	assert.InDelta(t, 2.25, *data.KPIs.AvgShippingDays, 1e-9)
	assert.Equal(t, "$380.00", data.KPIs.Display.TotalSales)
	assert.Equal(t, "$95.00", data.KPIs.Display.AvgOrderValue)

	require.Len(t, data.MonthlySales, 2)
	assert.Equal(t, "2021-01", data.MonthlySales[0].Month)
	assert.Equal(t, 150.0, data.MonthlySales[0].Sales)

	assert.Len(t, data.TopProducts, 2)
	assert.Equal(t, "Phones product", data.TopProducts[0].Name)
	assert.Equal(t, "West", data.Regions[0].Name)
	assert.Equal(t, "Technology", data.Categories[0].Category)
	assert.Equal(t, "East", data.CustomerRegion[0].Name)
	assert.Equal(t, 2, data.CustomerRegion[0].Count)
	assert.Len(t, data.OrderPatterns, 3)
	assert.Len(t, data.CategoryTrends, 2)
}

func TestBuildDashboardAppliesFilter(t *testing.T) {
	data, err := BuildDashboard(context.Background(), insightTable(), Filter{Regions: []string{"West"}}, 5)
	require.NoError(t, err)

	assert.Equal(t, 200.0, data.KPIs.TotalSales)
	require.Len(t, data.Regions, 1)
	assert.Equal(t, "West", data.Regions[0].Name)
	require.Len(t, data.Customers, 1)
	assert.Equal(t, "C2", data.Customers[0].CustomerID)
}

func TestBuildDashboardEmptyView(t *testing.T) {
	data, err := BuildDashboard(context.Background(), insightTable(), Filter{Categories: []string{"Toys"}}, 5)
	require.NoError(t, err)

	assert.True(t, data.Empty)
	assert.Zero(t, data.KPIs.TotalSales)
	assert.Nil(t, data.KPIs.AvgOrderValue)
	assert.Nil(t, data.KPIs.AvgShippingDays)
	assert.Equal(t, "n/a", data.KPIs.Display.AvgOrderValue)
	assert.Equal(t, "$0.00", data.KPIs.Display.TotalSales)
	assert.Empty(t, data.MonthlySales)
	assert.Empty(t, data.TopProducts)
}

func TestBuildDashboardCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := BuildDashboard(ctx, insightTable(), Filter{}, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, data)
}

func TestCountItemsOrdering(t *testing.T) {
	got := CountItems(map[string]int{"b": 2, "a": 2, "c": 5})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Name, got[1].Name, got[2].Name})
}
