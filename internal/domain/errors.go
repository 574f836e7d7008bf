package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("parse error")

	// ErrMissingColumn matches every *MissingColumnError.
	ErrMissingColumn = errors.New("missing column")
)

// ParseError reports an unparsable date or number.
// Row is the zero-based row index, or -1 when the value came from a
// call parameter rather than the dataset.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("cannot parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row+1, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParse) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// MissingColumnError reports that a non-empty dataset lacks a column an
// operation needs.
type MissingColumnError struct {
	Column Column
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("dataset has no %s column", e.Column)
}

// Is makes errors.Is(err, ErrMissingColumn) hold for any MissingColumnError.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
