package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insightTable() *OrderTable {
	return NewOrderTable([]OrderRecord{
		rec("2021-01-04", "Furniture", "Chairs", "100", withOrder("O1"), withCustomer("C1"), withRegion("East"), shippedAfter(2)),
		rec("2021-01-04", "Furniture", "Tables", "50", withOrder("O1"), withCustomer("C1"), withRegion("East"), shippedAfter(2)),
		rec("2021-02-06", "Technology", "Phones", "200", withOrder("O2"), withCustomer("C2"), withRegion("West"), shippedAfter(5), withSegment("Corporate")),
		rec("2021-02-07", "Technology", "Phones", "30", withOrder("O3"), withCustomer("C3"), withRegion("East"), shippedAfter(0)),
	})
}

func TestSummarize(t *testing.T) {
	m := Summarize(insightTable())
	assert.Equal(t, "380", m.TotalSales.String())
	assert.Equal(t, 4, m.Records)
	assert.Equal(t, 3, m.Orders)
	assert.Equal(t, 3, m.Customers)
	assert.Equal(t, 4, m.Quantity)
}

func TestAverages(t *testing.T) {
	avg, err := AverageOrderValue(insightTable())
	require.NoError(t, err)
	assert.Equal(t, "95", avg.String())

	days, err := AverageShippingDays(insightTable())
	require.NoError(t, err)
	assert.InDelta(t, 2.25, days, 1e-9)
}

func TestAveragesOnEmptyTableSignalEmptyInput(t *testing.T) {
	empty := NewOrderTable(nil)

	_, err := AverageOrderValue(empty)
	require.ErrorIs(t, err, ErrEmptyInput)
	var aerr *AggregationError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "average order value", aerr.Op)

	_, err = AverageShippingDays(empty)
	assert.ErrorIs(t, err, ErrEmptyInput)

	m := Summarize(empty)
	assert.True(t, m.TotalSales.IsZero())
	assert.Zero(t, m.Orders)
}

func TestCustomerSummary(t *testing.T) {
	got := CustomerSummary(insightTable())
	require.Len(t, got, 3)

	assert.Equal(t, "C2", got[0].CustomerID)
	assert.Equal(t, "Corporate", got[0].Segment)
	assert.Equal(t, "C1", got[1].CustomerID)
	assert.Equal(t, "150", got[1].Sales.String())
	assert.Equal(t, 2, got[1].Records)
	assert.Equal(t, "Name C1", got[1].CustomerName)
}

func TestCustomersByRegion(t *testing.T) {
	got := CustomersByRegion(insightTable())
	assert.Equal(t, map[string]int{"East": 2, "West": 1}, got)
}

func TestOrderPatterns(t *testing.T) {
	got := OrderPatterns(insightTable())
	require.Len(t, got, 3)

	// 2021-01-04 Monday, 2021-02-06 Saturday, 2021-02-07 Sunday.
	assert.Equal(t, PatternCell{Month: time.January, Weekday: time.Monday}, PatternCell{Month: got[0].Month, Weekday: got[0].Weekday})
	assert.Equal(t, "150", got[0].Sales.String())
	assert.Equal(t, time.Saturday, got[1].Weekday)
	assert.Equal(t, time.Sunday, got[2].Weekday, "Sunday sorts last")
}

func TestCategoryTrends(t *testing.T) {
	got := CategoryTrends(insightTable())
	require.Len(t, got, 2)
	assert.Equal(t, "2021-01", got[0].Month.String())
	assert.Equal(t, "Furniture", got[0].Category)
	assert.Equal(t, "150", got[0].Sales.String())
	assert.Equal(t, "2021-02", got[1].Month.String())
	assert.Equal(t, "230", got[1].Sales.String())
}

func TestOptions(t *testing.T) {
	table := NewOrderTable(append(insightTable().Records(),
		rec("2019-05-05", "Office Supplies", "Paper", "1", withRegion("Central"), withSegment("Home Office"))))

	opts := Options(table)
	assert.Equal(t, []string{"Furniture", "Office Supplies", "Technology"}, opts.Categories)
	assert.Equal(t, []string{"Central", "East", "West"}, opts.Regions)
	assert.Equal(t, []string{"Consumer", "Corporate", "Home Office"}, opts.Segments)
	assert.Equal(t, []int{2019, 2021}, opts.Years)
}
