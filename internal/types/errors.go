package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Input-acquisition errors (ErrFileNotFound, ErrLoad) are recovered by the
// interactive loop. Transformation errors (ErrMissingColumn,
// ErrMalformedTimestamp, ErrMalformedNumber) abort the current mode.

var (
	// ErrFileNotFound means the requested input path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrLoad covers every other failure while reading the input.
	ErrLoad = errors.New("load error")

	// ErrMissingColumn means a column required by the mode is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrMalformedTimestamp means a date value did not match the export layout.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMalformedNumber means a quantity value is not numeric.
	ErrMalformedNumber = errors.New("malformed number")
)

// ColumnError reports a required column that is not in the table.
type ColumnError struct {
	Mode   Mode
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s report requires column %q", e.Mode, e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// FieldError reports a value that could not be converted.
type FieldError struct {
	// Row is the 1-based line number in the source file.
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v (value: %q)", e.Row, e.Column, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }
