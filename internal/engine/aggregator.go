package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
)

// Month is a calendar month of a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats m as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

type MonthTotal struct {
	Month Month
	Sales decimal.Decimal
}

type CategoryTotal struct {
	Category    string
	SubCategory string
	Sales       decimal.Decimal
}

type ProductTotal struct {
	Name     string
	Sales    decimal.Decimal
	Quantity int
}

// KeyTotal is one entry of a Totals map.
type KeyTotal struct {
	Key   string
	Sales decimal.Decimal
}

// Totals maps a grouping key (region, segment) to summed sales.
type Totals map[string]decimal.Decimal

// Sorted lists the entries by descending sales, ties alphabetical.
func (t Totals) Sorted() []KeyTotal {
	keys := maps.Keys(t)
	out := make([]KeyTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyTotal{Key: k, Sales: t[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sales.Cmp(out[j].Sales); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Sum is the grand total across all keys.
func (t Totals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t {
		sum = sum.Add(v)
	}
	return sum
}

// sumBy groups sales by the key fn extracts from each record.
func sumBy(t *OrderTable, key func(OrderRecord) string) Totals {
	out := make(Totals)
	t.Each(func(r OrderRecord) {
		k := key(r)
		out[k] = out[k].Add(r.Sales)
	})
	return out
}

// MonthlySales sums sales per calendar month of order date, in chronological order.
func MonthlySales(t *OrderTable) []MonthTotal {
	byMonth := make(map[Month]decimal.Decimal)
	t.Each(func(r OrderRecord) {
		m := MonthOf(r.OrderDate)
		byMonth[m] = byMonth[m].Add(r.Sales)
	})

	out := make([]MonthTotal, 0, len(byMonth))
	for m, v := range byMonth {
		out = append(out, MonthTotal{Month: m, Sales: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// CategoryBreakdown sums sales per (category, sub-category). Categories come in
// descending order of their total, sub-categories descending within their
// category; equal totals fall back to name order.
func CategoryBreakdown(t *OrderTable) []CategoryTotal {
	type pair struct{ cat, sub string }
	byPair := make(map[pair]decimal.Decimal)
	byCat := make(Totals)
	t.Each(func(r OrderRecord) {
		k := pair{r.Category, r.SubCategory}
		byPair[k] = byPair[k].Add(r.Sales)
		byCat[r.Category] = byCat[r.Category].Add(r.Sales)
	})

	rank := make(map[string]int, len(byCat))
	for i, kt := range byCat.Sorted() {
		rank[kt.Key] = i
	}

	out := make([]CategoryTotal, 0, len(byPair))
	for k, v := range byPair {
		out = append(out, CategoryTotal{Category: k.cat, SubCategory: k.sub, Sales: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return rank[a.Category] < rank[b.Category]
		}
		if c := a.Sales.Cmp(b.Sales); c != 0 {
			return c > 0
		}
		return a.SubCategory < b.SubCategory
	})
	return out
}

// RegionalSales sums sales per region.
func RegionalSales(t *OrderTable) Totals {
	return sumBy(t, func(r OrderRecord) string { return r.Region })
}

// SegmentPerformance sums sales per customer segment.
func SegmentPerformance(t *OrderTable) Totals {
	return sumBy(t, func(r OrderRecord) string { return r.Segment })
}

// TopProducts returns at most n products by descending total sales.
// Products with equal totals are ordered alphabetically by name.
func TopProducts(t *OrderTable, n int) []ProductTotal {
	if n <= 0 {
		return []ProductTotal{}
	}
	byName := make(map[string]*ProductTotal)
	t.Each(func(r OrderRecord) {
		p, ok := byName[r.ProductName]
		if !ok {
			p = &ProductTotal{Name: r.ProductName}
			byName[r.ProductName] = p
		}
		p.Sales = p.Sales.Add(r.Sales)
		p.Quantity += r.Quantity
	})

	out := make([]ProductTotal, 0, len(byName))
	for _, p := range byName {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sales.Cmp(out[j].Sales); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
