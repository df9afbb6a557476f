package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
)

// Metrics are the headline figures of a table.
type Metrics struct {
	TotalSales decimal.Decimal
	Records    int
	Orders     int // distinct order IDs
	Customers  int // distinct customer IDs
	Quantity   int
}

// Summarize computes headline figures. All fields are zero for an empty table.
func Summarize(t *OrderTable) Metrics {
	orders := make(map[string]struct{})
	customers := make(map[string]struct{})
	m := Metrics{TotalSales: decimal.Zero}
	t.Each(func(r OrderRecord) {
		m.TotalSales = m.TotalSales.Add(r.Sales)
		m.Records++
		m.Quantity += r.Quantity
		orders[r.OrderID] = struct{}{}
		customers[r.CustomerID] = struct{}{}
	})
	m.Orders = len(orders)
	m.Customers = len(customers)
	return m
}

// AverageOrderValue is the mean sales amount per record.
func AverageOrderValue(t *OrderTable) (decimal.Decimal, error) {
	n := t.Len()
	if n == 0 {
		return decimal.Zero, &AggregationError{Op: "average order value", Kind: ErrEmptyInput}
	}
	return Summarize(t).TotalSales.Div(decimal.NewFromInt(int64(n))), nil
}

// AverageShippingDays is the mean delay between order and ship date.
func AverageShippingDays(t *OrderTable) (float64, error) {
	n := t.Len()
	if n == 0 {
		return 0, &AggregationError{Op: "average shipping days", Kind: ErrEmptyInput}
	}
	total := 0
	t.Each(func(r OrderRecord) { total += r.ShippingDays() })
	return float64(total) / float64(n), nil
}

type CustomerTotal struct {
	CustomerID   string
	CustomerName string
	Segment      string
	Sales        decimal.Decimal
	Records      int
}

// CustomerSummary totals sales and line items per customer, highest sales first.
// Ties are ordered by customer ID.
func CustomerSummary(t *OrderTable) []CustomerTotal {
	byID := make(map[string]*CustomerTotal)
	t.Each(func(r OrderRecord) {
		c, ok := byID[r.CustomerID]
		if !ok {
			c = &CustomerTotal{CustomerID: r.CustomerID, CustomerName: r.CustomerName, Segment: r.Segment}
			byID[r.CustomerID] = c
		}
		c.Sales = c.Sales.Add(r.Sales)
		c.Records++
	})

	out := make([]CustomerTotal, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sales.Cmp(out[j].Sales); c != 0 {
			return c > 0
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// CustomersByRegion counts distinct customers per region.
func CustomersByRegion(t *OrderTable) map[string]int {
	seen := make(map[string]map[string]struct{})
	t.Each(func(r OrderRecord) {
		set, ok := seen[r.Region]
		if !ok {
			set = make(map[string]struct{})
			seen[r.Region] = set
		}
		set[r.CustomerID] = struct{}{}
	})
	out := make(map[string]int, len(seen))
	for region, set := range seen {
		out[region] = len(set)
	}
	return out
}

// PatternCell is one cell of the weekday by month-of-year heatmap.
type PatternCell struct {
	Month   time.Month
	Weekday time.Weekday
	Sales   decimal.Decimal
}

// mondayFirst ranks weekdays Monday=0 .. Sunday=6.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// OrderPatterns sums sales by (month of year, weekday) of the order date.
// Cells are ordered by month then weekday, Monday first; empty cells are omitted.
func OrderPatterns(t *OrderTable) []PatternCell {
	type key struct {
		m time.Month
		d time.Weekday
	}
	cells := make(map[key]decimal.Decimal)
	t.Each(func(r OrderRecord) {
		k := key{r.OrderDate.Month(), r.OrderDate.Weekday()}
		cells[k] = cells[k].Add(r.Sales)
	})

	out := make([]PatternCell, 0, len(cells))
	for k, v := range cells {
		out = append(out, PatternCell{Month: k.m, Weekday: k.d, Sales: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return mondayFirst(out[i].Weekday) < mondayFirst(out[j].Weekday)
	})
	return out
}

type CategoryMonthTotal struct {
	Month    Month
	Category string
	Sales    decimal.Decimal
}

// CategoryTrends sums sales per (month, category), chronological then by category name.
func CategoryTrends(t *OrderTable) []CategoryMonthTotal {
	type key struct {
		m   Month
		cat string
	}
	byKey := make(map[key]decimal.Decimal)
	t.Each(func(r OrderRecord) {
		k := key{MonthOf(r.OrderDate), r.Category}
		byKey[k] = byKey[k].Add(r.Sales)
	})

	out := make([]CategoryMonthTotal, 0, len(byKey))
	for k, v := range byKey {
		out = append(out, CategoryMonthTotal{Month: k.m, Category: k.cat, Sales: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// FilterOptions lists the distinct values a dashboard can filter on.
type FilterOptions struct {
	Categories []string
	Regions    []string
	Segments   []string
	Years      []int
}

// Options collects the sorted distinct categories, regions, segments and order years.
func Options(t *OrderTable) FilterOptions {
	cats := make(map[string]struct{})
	regions := make(map[string]struct{})
	segments := make(map[string]struct{})
	years := make(map[int]struct{})
	t.Each(func(r OrderRecord) {
		cats[r.Category] = struct{}{}
		regions[r.Region] = struct{}{}
		segments[r.Segment] = struct{}{}
		years[r.OrderDate.Year()] = struct{}{}
	})

	opts := FilterOptions{
		Categories: sortedKeys(cats),
		Regions:    sortedKeys(regions),
		Segments:   sortedKeys(segments),
		Years:      maps.Keys(years),
	}
	sort.Ints(opts.Years)
	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := maps.Keys(set)
	sort.Strings(keys)
	return keys
}
