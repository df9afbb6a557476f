package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads a workbook export of the dataset. The first sheet is used
// unless opts.Sheet names another; row 1 must be the header.
func LoadXLSX(path string, opts LoadOptions) (*OrderTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataError{Kind: ErrUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &DataError{Kind: ErrUnreadable, Path: path, Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as day serials instead of their display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DataError{Kind: ErrUnreadable, Path: path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, &DataError{Kind: ErrMissingColumn, Path: path, Err: errNoHeader}
	}

	// GetRows keeps gaps as empty rows, so position maps to the sheet row.
	data := make([][]string, 0, len(rows)-1)
	rowNums := make([]int, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
		rowNums = append(rowNums, i+1)
	}
	return buildTable(rows[0], data, rowNums, opts, serialDate)
}

// serialDate accepts dates stored as spreadsheet day serials, e.g. "42681".
func serialDate(s string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return truncateDay(t), true
}
