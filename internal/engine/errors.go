package engine

import (
	"errors"
	"fmt"
)

// Load failure kinds. Match with errors.Is against a *DataError.
var (
	ErrUnreadable    = errors.New("input file unreadable")
	ErrMissingColumn = errors.New("required column missing")
	ErrMalformedRow  = errors.New("malformed row")
)

// ErrEmptyInput is the AggregationError kind for averages over zero records.
var ErrEmptyInput = errors.New("empty input")

// DataError reports why a dataset could not be loaded. Row is the 1-based
// data row counted from the line after the header, blank rows included; zero
// when the failure is not tied to a row.
type DataError struct {
	Kind   error
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *DataError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Is(target error) bool {
	return target == e.Kind
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// AggregationError reports a query that has no defined answer for its input.
type AggregationError struct {
	Op   string
	Kind error
}

func (e *AggregationError) Error() string {
	return e.Op + ": " + e.Kind.Error()
}

func (e *AggregationError) Is(target error) bool {
	return target == e.Kind
}
