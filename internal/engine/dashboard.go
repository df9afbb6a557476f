package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"superstore/internal/models"
)

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// BuildDashboard filters the table once and computes every summary for the
// resulting view concurrently. An empty view is not an error: Empty is set and
// the averages are left nil.
func BuildDashboard(ctx context.Context, t *OrderTable, f Filter, topN int) (*models.DashboardData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view := t.Filter(f)
	data := &models.DashboardData{Empty: view.Len() == 0}

	var g errgroup.Group
	g.Go(func() error {
		kpis, err := KPIsFor(view)
		data.KPIs = kpis
		return err
	})
	g.Go(func() error { data.MonthlySales = MonthlyItems(MonthlySales(view)); return nil })
	g.Go(func() error { data.Categories = CategoryItems(CategoryBreakdown(view)); return nil })
	g.Go(func() error { data.Regions = TotalItems(RegionalSales(view)); return nil })
	g.Go(func() error { data.Segments = TotalItems(SegmentPerformance(view)); return nil })
	g.Go(func() error { data.TopProducts = TopItems(TopProducts(view, topN)); return nil })
	g.Go(func() error { data.Customers = CustomerItems(CustomerSummary(view)); return nil })
	g.Go(func() error { data.CustomerRegion = CountItems(CustomersByRegion(view)); return nil })
	g.Go(func() error { data.OrderPatterns = PatternItems(OrderPatterns(view)); return nil })
	g.Go(func() error { data.CategoryTrends = CategoryTrendRows(CategoryTrends(view)); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// KPIsFor computes the headline cards. Averages over an empty table are
// reported as nil with a placeholder display string.
func KPIsFor(t *OrderTable) (models.KPIs, error) {
	m := Summarize(t)
	k := models.KPIs{
		TotalSales:      money(m.TotalSales),
		TotalOrders:     m.Orders,
		UniqueCustomers: m.Customers,
	}
	k.Display = models.KPIDisplay{
		TotalSales:      models.Currency(k.TotalSales),
		TotalOrders:     models.Count(k.TotalOrders),
		AvgOrderValue:   "n/a",
		UniqueCustomers: models.Count(k.UniqueCustomers),
	}

	avg, err := AverageOrderValue(t)
	switch {
	case errors.Is(err, ErrEmptyInput):
		return k, nil
	case err != nil:
		return k, err
	}
	v := money(avg)
	k.AvgOrderValue = &v
	k.Display.AvgOrderValue = models.Currency(v)

	days, err := AverageShippingDays(t)
	if err != nil {
		return k, err
	}
	k.AvgShippingDays = &days
	return k, nil
}

// --- conversions to API models ---

func MonthlyItems(in []MonthTotal) []models.MonthlyItem {
	out := make([]models.MonthlyItem, len(in))
	for i, m := range in {
		out[i] = models.MonthlyItem{Month: m.Month.String(), Sales: money(m.Sales)}
	}
	return out
}

func CategoryItems(in []CategoryTotal) []models.CategoryItem {
	out := make([]models.CategoryItem, len(in))
	for i, c := range in {
		out[i] = models.CategoryItem{Category: c.Category, SubCategory: c.SubCategory, Sales: money(c.Sales)}
	}
	return out
}

// TotalItems lists a Totals map by descending sales.
func TotalItems(in Totals) []models.TotalItem {
	sorted := in.Sorted()
	out := make([]models.TotalItem, len(sorted))
	for i, kt := range sorted {
		out[i] = models.TotalItem{Name: kt.Key, Sales: money(kt.Sales)}
	}
	return out
}

func TopItems(in []ProductTotal) []models.TopItem {
	out := make([]models.TopItem, len(in))
	for i, p := range in {
		out[i] = models.TopItem{Name: p.Name, Sales: money(p.Sales), Quantity: p.Quantity}
	}
	return out
}

func CustomerItems(in []CustomerTotal) []models.CustomerItem {
	out := make([]models.CustomerItem, len(in))
	for i, c := range in {
		out[i] = models.CustomerItem{
			CustomerID:   c.CustomerID,
			CustomerName: c.CustomerName,
			Segment:      c.Segment,
			Sales:        money(c.Sales),
			Orders:       c.Records,
		}
	}
	return out
}

// CountItems lists counts by descending count, ties alphabetical.
func CountItems(in map[string]int) []models.CountItem {
	out := make([]models.CountItem, 0, len(in))
	for name, n := range in {
		out = append(out, models.CountItem{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func PatternItems(in []PatternCell) []models.PatternItem {
	out := make([]models.PatternItem, len(in))
	for i, c := range in {
		out[i] = models.PatternItem{Month: c.Month.String(), Weekday: c.Weekday.String(), Sales: money(c.Sales)}
	}
	return out
}

func CategoryTrendRows(in []CategoryMonthTotal) []models.CategoryTrendRow {
	out := make([]models.CategoryTrendRow, len(in))
	for i, c := range in {
		out[i] = models.CategoryTrendRow{Month: c.Month.String(), Category: c.Category, Sales: money(c.Sales)}
	}
	return out
}

func FilterOptionsModel(o FilterOptions) models.FilterOptions {
	return models.FilterOptions{
		Categories: o.Categories,
		Regions:    o.Regions,
		Segments:   o.Segments,
		Years:      o.Years,
	}
}
