package table

import (
	"math"
	"sort"
)

// Strategy selects how HandleMissing treats missing cells.
type Strategy string

const (
	StrategyDrop Strategy = "drop"
	StrategyFill Strategy = "fill"
)

// IQRFactor scales the interquartile range when deriving outlier bounds.
const IQRFactor = 1.5

// HandleMissing removes (drop) or replaces (fill) missing cells.
//
// With StrategyDrop every row holding at least one missing cell is removed.
// With StrategyFill every missing cell becomes fill; a column whose kind
// differs from fill's kind is converted to categorical so that it stays
// single-typed. fill is ignored for drop and required for fill.
func HandleMissing(t *Table, strategy Strategy, fill *Value) (*Table, error) {
	switch strategy {
	case StrategyDrop:
		return t.Filter(func(r int) bool {
			for _, c := range t.cols {
				if c.vals[r].IsMissing() {
					return false
				}
			}
			return true
		}), nil
	case StrategyFill:
		if fill == nil || fill.IsMissing() {
			return nil, &InvalidStrategyError{Strategy: string(strategy), Reason: "fill requires a non-missing fill value"}
		}
		cols := make([]*Column, len(t.cols))
		for i, c := range t.cols {
			cols[i] = fillColumn(c, *fill)
		}
		if len(cols) == 0 {
			return empty(t.rows), nil
		}
		return New(cols...)
	default:
		return nil, &InvalidStrategyError{Strategy: string(strategy)}
	}
}

func fillColumn(c *Column, fill Value) *Column {
	if c.MissingCount() == 0 {
		return c
	}
	vals := make([]Value, len(c.vals))
	if fill.Kind() == c.kind {
		for i, v := range c.vals {
			if v.IsMissing() {
				v = fill
			}
			vals[i] = v
		}
		return &Column{name: c.name, kind: c.kind, vals: vals}
	}
	for i, v := range c.vals {
		if v.IsMissing() {
			v = fill
		}
		vals[i] = Str(v.String())
	}
	return &Column{name: c.name, kind: Categorical, vals: vals}
}

// RemoveOutliers drops rows whose value in any of the listed columns lies
// outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR]. Columns are processed in order and
// each pass sees the rows kept by the previous passes. Rows with a missing
// value in a listed column are dropped.
func RemoveOutliers(t *Table, columns []string) (*Table, error) {
	for _, name := range columns {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if !c.kind.Numeric() {
			return nil, &NonNumericColumnError{Column: name, Kind: c.kind}
		}
	}
	out := t
	for _, name := range columns {
		c, _ := out.Column(name)
		lo, hi := IQRBounds(c.Present())
		out = out.Filter(func(r int) bool {
			f, ok := c.vals[r].Float()
			return ok && f >= lo && f <= hi
		})
	}
	return out, nil
}

// IQRBounds returns the admissible range [Q1 - 1.5*IQR, Q3 + 1.5*IQR] of
// xs. Both bounds are NaN when xs is empty.
func IQRBounds(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - IQRFactor*iqr, q3 + IQRFactor*iqr
}

// Quantile returns the q-quantile of an ascending slice, interpolating
// linearly between the closest ranks at position q*(n-1).
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
