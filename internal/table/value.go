package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the semantic type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this kind can be read as float64.
// Booleans read as 0/1.
func (k Kind) Numeric() bool { return k == Numeric || k == Boolean }

// Value is a single cell: a number, a category string, a boolean, or missing.
// The zero Value is missing.
type Value struct {
	kind  Kind
	num   float64
	str   string
	valid bool
}

// Num returns a numeric value. NaN is treated as missing.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{kind: Numeric}
	}
	return Value{kind: Numeric, num: f, valid: true}
}

// Str returns a categorical value.
func Str(s string) Value { return Value{kind: Categorical, str: s, valid: true} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: Boolean, valid: true}
	if b {
		v.num = 1
	}
	return v
}

// Missing returns the missing marker.
func Missing() Value { return Value{} }

func (v Value) IsMissing() bool { return !v.valid }

// Kind reports the value's kind; meaningless for missing values.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric reading of the value. ok is false for missing
// and categorical values.
func (v Value) Float() (f float64, ok bool) {
	if !v.valid || !v.kind.Numeric() {
		return math.NaN(), false
	}
	return v.num, true
}

// Text returns the category string; empty for other kinds.
func (v Value) Text() string { return v.str }

// Truth returns the boolean reading; false for other kinds.
func (v Value) Truth() bool { return v.valid && v.kind == Boolean && v.num == 1 }

// String renders the value the way it would appear in a CSV cell.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case Numeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Boolean:
		if v.num == 1 {
			return "true"
		}
		return "false"
	default:
		return v.str
	}
}

// Equal reports whether two values are identical, treating two missing
// values as equal.
func (v Value) Equal(o Value) bool {
	if !v.valid || !o.valid {
		return v.valid == o.valid
	}
	if v.kind != o.kind {
		return false
	}
	if v.kind == Categorical {
		return v.str == o.str
	}
	return v.num == o.num
}

// ParseValue reads command-line text as a Value: a number if it parses as
// one, a boolean for true/false, otherwise a categorical string.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return Str(s)
}
