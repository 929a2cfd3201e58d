package table

import (
	"fmt"
	"io/fs"
)

// NotFoundError indicates the input file does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

// EmptyInputError indicates the input has no header or no data rows.
type EmptyInputError struct{ Path string }

func (e *EmptyInputError) Error() string {
	if e.Path == "" {
		return "empty input: no rows"
	}
	return fmt.Sprintf("empty input: %s has no rows", e.Path)
}

// ParseError reports a malformed delimited file. Line is 1-based and
// includes the header; it is 0 when the problem is not tied to a line.
type ParseError struct {
	Line   int
	Column string
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("parse error at line %d, column %q: %s", e.Line, e.Column, msg)
	case e.Line > 0:
		return fmt.Sprintf("parse error at line %d: %s", e.Line, msg)
	case e.Column != "":
		return fmt.Sprintf("parse error in column %q: %s", e.Column, msg)
	}
	return "parse error: " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidStrategyError indicates an unknown missing-value strategy or a fill
// request without a usable fill value.
type InvalidStrategyError struct {
	Strategy string
	Reason   string
}

func (e *InvalidStrategyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid strategy %q: %s", e.Strategy, e.Reason)
	}
	return fmt.Sprintf("invalid strategy %q: use %q or %q with a fill value", e.Strategy, StrategyDrop, StrategyFill)
}

// ColumnNotFoundError indicates a named column is absent.
type ColumnNotFoundError struct{ Column string }

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %q", e.Column)
}

// NonNumericColumnError indicates a numeric operation on a categorical column.
type NonNumericColumnError struct {
	Column string
	Kind   Kind
}

func (e *NonNumericColumnError) Error() string {
	return fmt.Sprintf("column %q is %s, not numeric", e.Column, e.Kind)
}

// ShapeError reports a table that would violate its structural invariants:
// ragged columns or duplicate names.
type ShapeError struct{ Msg string }

func (e *ShapeError) Error() string { return "invalid table: " + e.Msg }
