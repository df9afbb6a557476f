package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one line item of the Superstore dataset, typed and validated at load time.
type OrderRecord struct {
	OrderID      string
	OrderDate    time.Time
	ShipDate     time.Time
	CustomerID   string
	CustomerName string
	Segment      string
	Region       string
	Category     string
	SubCategory  string
	ProductName  string
	Sales        decimal.Decimal
	Quantity     int

	// Descriptive columns, empty when the header does not carry them.
	RowID      string
	ShipMode   string
	Country    string
	City       string
	State      string
	PostalCode string
	ProductID  string
}

// ShippingDays is the whole number of days between order and shipment.
func (r OrderRecord) ShippingDays() int {
	return int(r.ShipDate.Sub(r.OrderDate).Hours() / 24)
}

// OrderTable is an immutable set of order records.
// It is safe for concurrent readers; nothing mutates it after construction.
type OrderTable struct {
	records []OrderRecord
}

// NewOrderTable copies records into a new table.
func NewOrderTable(records []OrderRecord) *OrderTable {
	cp := make([]OrderRecord, len(records))
	copy(cp, records)
	return &OrderTable{records: cp}
}

// Len returns the number of records. A nil table is empty.
func (t *OrderTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns record i.
func (t *OrderTable) At(i int) OrderRecord {
	return t.records[i]
}

// Each calls fn for every record in load order.
func (t *OrderTable) Each(fn func(OrderRecord)) {
	if t == nil {
		return
	}
	for i := range t.records {
		fn(t.records[i])
	}
}

// Records returns a copy of the underlying records.
func (t *OrderTable) Records() []OrderRecord {
	if t == nil {
		return nil
	}
	cp := make([]OrderRecord, len(t.records))
	copy(cp, t.records)
	return cp
}

// Filter selects rows for a dashboard view. Zero values match everything.
type Filter struct {
	Categories []string
	Regions    []string
	Segments   []string
	Year       int
	From       time.Time // inclusive, by order date
	To         time.Time // inclusive, by order date
}

// IsZero reports whether f selects every record.
func (f Filter) IsZero() bool {
	return len(f.Categories) == 0 && len(f.Regions) == 0 && len(f.Segments) == 0 &&
		f.Year == 0 && f.From.IsZero() && f.To.IsZero()
}

type filterSets struct {
	categories map[string]struct{}
	regions    map[string]struct{}
	segments   map[string]struct{}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, v string) bool {
	if set == nil {
		return true
	}
	_, ok := set[v]
	return ok
}

func (f Filter) match(s filterSets, r OrderRecord) bool {
	if !inSet(s.categories, r.Category) || !inSet(s.regions, r.Region) || !inSet(s.segments, r.Segment) {
		return false
	}
	if f.Year != 0 && r.OrderDate.Year() != f.Year {
		return false
	}
	day := truncateDay(r.OrderDate)
	if !f.From.IsZero() && day.Before(truncateDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && day.After(truncateDay(f.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Filter returns a table with the records matching f, in load order.
// A zero filter returns t itself; tables are never mutated.
func (t *OrderTable) Filter(f Filter) *OrderTable {
	if f.IsZero() {
		if t == nil {
			return &OrderTable{}
		}
		return t
	}
	sets := filterSets{
		categories: toSet(f.Categories),
		regions:    toSet(f.Regions),
		segments:   toSet(f.Segments),
	}
	out := make([]OrderRecord, 0)
	t.Each(func(r OrderRecord) {
		if f.match(sets, r) {
			out = append(out, r)
		}
	})
	return &OrderTable{records: out}
}
