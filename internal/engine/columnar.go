package engine

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// OrderSchema is the Arrow layout of an OrderTable.
var OrderSchema = arrow.NewSchema([]arrow.Field{
	{Name: "order_id", Type: arrow.BinaryTypes.String},
	{Name: "order_date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "ship_date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "customer_id", Type: arrow.BinaryTypes.String},
	{Name: "customer_name", Type: arrow.BinaryTypes.String},
	{Name: "segment", Type: arrow.BinaryTypes.String},
	{Name: "region", Type: arrow.BinaryTypes.String},
	{Name: "category", Type: arrow.BinaryTypes.String},
	{Name: "sub_category", Type: arrow.BinaryTypes.String},
	{Name: "product_name", Type: arrow.BinaryTypes.String},
	{Name: "sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "quantity", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// Columnar converts the table into a single Arrow record. Sales are
// approximated as float64. The caller must Release the record.
func Columnar(t *OrderTable, mem memory.Allocator) arrow.Record {
	b := array.NewRecordBuilder(mem, OrderSchema)
	defer b.Release()

	str := func(i int) *array.StringBuilder { return b.Field(i).(*array.StringBuilder) }
	orderDates := b.Field(1).(*array.Date32Builder)
	shipDates := b.Field(2).(*array.Date32Builder)
	sales := b.Field(10).(*array.Float64Builder)
	qty := b.Field(11).(*array.Int64Builder)

	b.Reserve(t.Len())
	t.Each(func(r OrderRecord) {
		str(0).Append(r.OrderID)
		orderDates.Append(arrow.Date32FromTime(r.OrderDate))
		shipDates.Append(arrow.Date32FromTime(r.ShipDate))
		str(3).Append(r.CustomerID)
		str(4).Append(r.CustomerName)
		str(5).Append(r.Segment)
		str(6).Append(r.Region)
		str(7).Append(r.Category)
		str(8).Append(r.SubCategory)
		str(9).Append(r.ProductName)
		sales.Append(r.Sales.InexactFloat64())
		qty.Append(int64(r.Quantity))
	})
	return b.NewRecord()
}

// SalesColumnTotal sums the sales column of a record built by Columnar.
func SalesColumnTotal(rec arrow.Record) (float64, error) {
	idx := rec.Schema().FieldIndices("sales")
	if len(idx) == 0 {
		return 0, fmt.Errorf("record has no sales column")
	}
	col, ok := rec.Column(idx[0]).(*array.Float64)
	if !ok {
		return 0, fmt.Errorf("sales column is %s, want float64", rec.Column(idx[0]).DataType())
	}
	var sum float64
	for _, v := range col.Float64Values() {
		sum += v
	}
	return sum, nil
}

// WriteJSONRows streams the table to w as one JSON object per line.
func WriteJSONRows(t *OrderTable, w io.Writer) error {
	rec := Columnar(t, memory.DefaultAllocator)
	defer rec.Release()
	if err := array.RecordToJSON(rec, w); err != nil {
		return fmt.Errorf("export orders: %w", err)
	}
	return nil
}
