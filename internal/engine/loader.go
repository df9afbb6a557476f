package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDateLayouts are tried in order when LoadOptions.DateLayouts is empty.
// The Superstore export writes DD/MM/YYYY.
var DefaultDateLayouts = []string{"02/01/2006", "2006-01-02"}

// Rows below this count are parsed on a single goroutine.
const minParallelRows = 4096

// LoadOptions tune how a dataset file is read.
type LoadOptions struct {
	DateLayouts []string
	Sheet       string // xlsx only; first sheet when empty
	Workers     int    // defaults to runtime.NumCPU()
	Logger      *slog.Logger
}

func (o LoadOptions) layouts() []string {
	if len(o.DateLayouts) == 0 {
		return DefaultDateLayouts
	}
	return o.DateLayouts
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// --- 1. HEADER MAPPING ---

type column int

const (
	colOrderID column = iota
	colOrderDate
	colShipDate
	colCustomerID
	colCustomerName
	colSegment
	colRegion
	colCategory
	colSubCategory
	colProductName
	colSales
	colQuantity
	colRowID
	colShipMode
	colCountry
	colCity
	colState
	colPostalCode
	colProductID
	numColumns
)

type columnSpec struct {
	name     string
	required bool
}

var columnSpecs = [numColumns]columnSpec{
	colOrderID:      {"Order ID", true},
	colOrderDate:    {"Order Date", true},
	colShipDate:     {"Ship Date", true},
	colCustomerID:   {"Customer ID", true},
	colCustomerName: {"Customer Name", true},
	colSegment:      {"Segment", true},
	colRegion:       {"Region", true},
	colCategory:     {"Category", true},
	colSubCategory:  {"Sub-Category", true},
	colProductName:  {"Product Name", true},
	colSales:        {"Sales", true},
	colQuantity:     {"Quantity", false},
	colRowID:        {"Row ID", false},
	colShipMode:     {"Ship Mode", false},
	colCountry:      {"Country", false},
	colCity:         {"City", false},
	colState:        {"State", false},
	colPostalCode:   {"Postal Code", false},
	colProductID:    {"Product ID", false},
}

// normalizeHeader folds "Sub-Category", "sub_category" and " SubCategory " to one key.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch r {
		case ' ', '-', '_', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// headerIndex maps each known column to its position in the file, -1 when absent.
type headerIndex [numColumns]int

func mapHeader(header []string) (headerIndex, error) {
	seen := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := seen[key]; !dup {
			seen[key] = i
		}
	}
	var idx headerIndex
	for c, spec := range columnSpecs {
		pos, ok := seen[normalizeHeader(spec.name)]
		if !ok {
			if spec.required {
				return idx, &DataError{Kind: ErrMissingColumn, Column: spec.name}
			}
			pos = -1
		}
		idx[c] = pos
	}
	return idx, nil
}

// --- 2. FIELD PARSERS ---

type rowParser struct {
	idx     headerIndex
	layouts []string
	// dateFallback handles cell encodings the layouts cannot, e.g. spreadsheet serials.
	dateFallback func(string) (time.Time, bool)
}

func (p *rowParser) field(row []string, c column) string {
	pos := p.idx[c]
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func (p *rowParser) parseDate(s string) (time.Time, error) {
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if p.dateFallback != nil {
		if t, ok := p.dateFallback(s); ok {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q (layouts %v)", s, p.layouts)
}

func parseSales(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot parse sales %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative sales %s", s)
	}
	return d, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cannot parse quantity %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %d", n)
	}
	return n, nil
}

// parse converts one data row; rowNum is 1-based and only used for errors.
func (p *rowParser) parse(row []string, rowNum int) (OrderRecord, error) {
	malformed := func(c column, err error) error {
		return &DataError{Kind: ErrMalformedRow, Row: rowNum, Column: columnSpecs[c].name, Err: err}
	}

	for c := column(0); c < numColumns; c++ {
		if columnSpecs[c].required && p.field(row, c) == "" {
			return OrderRecord{}, malformed(c, errors.New("empty value"))
		}
	}

	rec := OrderRecord{
		OrderID:      p.field(row, colOrderID),
		CustomerID:   p.field(row, colCustomerID),
		CustomerName: p.field(row, colCustomerName),
		Segment:      p.field(row, colSegment),
		Region:       p.field(row, colRegion),
		Category:     p.field(row, colCategory),
		SubCategory:  p.field(row, colSubCategory),
		ProductName:  p.field(row, colProductName),
		RowID:        p.field(row, colRowID),
		ShipMode:     p.field(row, colShipMode),
		Country:      p.field(row, colCountry),
		City:         p.field(row, colCity),
		State:        p.field(row, colState),
		PostalCode:   p.field(row, colPostalCode),
		ProductID:    p.field(row, colProductID),
		Quantity:     1,
	}

	var err error
	if rec.OrderDate, err = p.parseDate(p.field(row, colOrderDate)); err != nil {
		return OrderRecord{}, malformed(colOrderDate, err)
	}
	if rec.ShipDate, err = p.parseDate(p.field(row, colShipDate)); err != nil {
		return OrderRecord{}, malformed(colShipDate, err)
	}
	if rec.ShipDate.Before(rec.OrderDate) {
		return OrderRecord{}, malformed(colShipDate, fmt.Errorf("ship date %s before order date %s",
			rec.ShipDate.Format(time.DateOnly), rec.OrderDate.Format(time.DateOnly)))
	}
	if rec.Sales, err = parseSales(p.field(row, colSales)); err != nil {
		return OrderRecord{}, malformed(colSales, err)
	}
	if p.idx[colQuantity] >= 0 {
		if rec.Quantity, err = parseQuantity(p.field(row, colQuantity)); err != nil {
			return OrderRecord{}, malformed(colQuantity, err)
		}
	}
	return rec, nil
}

// --- 3. PARALLEL ROW PARSING ---

// parseRows converts all data rows, splitting the work into one chunk per worker.
// rowNums[i] is the data row number reported for rows[i] and must be increasing.
// When several rows are malformed the error for the lowest row wins.
func parseRows(p *rowParser, rows [][]string, rowNums []int, workers int) ([]OrderRecord, error) {
	out := make([]OrderRecord, len(rows))
	switch {
	case workers > 0:
	case len(rows) < minParallelRows:
		workers = 1
	default:
		workers = runtime.NumCPU()
	}
	chunkSize := (len(rows) + workers - 1) / workers
	if chunkSize == 0 {
		return out, nil
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= len(rows) {
			break
		}
		end := min(start+chunkSize, len(rows))

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				rec, err := p.parse(rows[i], rowNums[i])
				if err != nil {
					errs[w] = err
					return
				}
				out[i] = rec
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// buildTable maps the header, parses every row and wraps the result.
func buildTable(header []string, rows [][]string, rowNums []int, opts LoadOptions, fallback func(string) (time.Time, bool)) (*OrderTable, error) {
	idx, err := mapHeader(header)
	if err != nil {
		return nil, err
	}
	p := &rowParser{idx: idx, layouts: opts.layouts(), dateFallback: fallback}
	records, err := parseRows(p, rows, rowNums, opts.Workers)
	if err != nil {
		return nil, err
	}
	return &OrderTable{records: records}, nil
}

// --- 4. ENTRY POINTS ---

// errNoHeader is returned for input without even a header line.
var errNoHeader = errors.New("no header row")

// LoadCSV reads a comma-separated dataset with a header row.
// Either every row loads or an error is returned with a nil table.
// Row numbers in errors count lines after the header, blank lines included.
func LoadCSV(r io.Reader, opts LoadOptions) (*OrderTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataError{Kind: ErrMissingColumn, Err: errNoHeader}
	}
	if err != nil {
		return nil, &DataError{Kind: ErrUnreadable, Err: err}
	}
	headerLine, _ := cr.FieldPos(0)

	var (
		rows    [][]string
		rowNums []int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &DataError{Kind: ErrMalformedRow, Row: perr.StartLine - headerLine, Err: perr.Err}
			}
			return nil, &DataError{Kind: ErrUnreadable, Err: err}
		}
		if isBlank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		rowNums = append(rowNums, line-headerLine)
	}
	return buildTable(header, rows, rowNums, opts, nil)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Load reads the dataset at path. Files ending in .xlsx are read as workbooks,
// everything else as CSV.
func Load(path string, opts LoadOptions) (*OrderTable, error) {
	start := time.Now()
	log := opts.logger()
	log.Info("loading dataset", slog.String("path", path))

	var (
		table *OrderTable
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = LoadXLSX(path, opts)
	default:
		table, err = loadCSVFile(path, opts)
	}
	if err != nil {
		var derr *DataError
		if errors.As(err, &derr) && derr.Path == "" {
			derr.Path = path
		}
		return nil, err
	}

	log.Info("dataset loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return table, nil
}

func loadCSVFile(path string, opts LoadOptions) (*OrderTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataError{Kind: ErrUnreadable, Path: path, Err: err}
	}
	defer f.Close()
	return LoadCSV(f, opts)
}
