package tabular

import (
	"errors"
	"fmt"
)

// ErrNoRows is wrapped by FormatError when the input has no header row.
var ErrNoRows = errors.New("empty file")

// UnsupportedFormatError reports a source or target format other than CSV or XLSX.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Format)
}

// FormatError reports malformed input: no header row, duplicate or empty
// header names, ragged rows, or a structure the reader cannot parse.
type FormatError struct {
	Format Format
	Line   int // 1-based line (CSV) or row (XLSX); 0 when not tied to a row
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	name := string(e.Format)
	if name == "" {
		name = "table"
	}
	msg := "invalid " + name
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UnknownColumnError reports a projection that names a column the table lacks.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column not found: %q", e.Column)
}

// DuplicateColumnError reports a projection that names the same column twice.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column: %q", e.Column)
}
