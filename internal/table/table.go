// Package table provides an immutable, typed, columnar in-memory table and
// the cleaning and encoding transforms that operate on it.
//
// Every transform returns a new *Table; inputs are never modified. Columns
// may be shared between tables because nothing mutates them after
// construction.
package table

import (
	"fmt"
	"strings"
)

// Column is a named, typed sequence of values.
type Column struct {
	name string
	kind Kind
	vals []Value
}

// NewColumn validates that every non-missing value has the given kind and
// returns a column holding a copy of vals.
func NewColumn(name string, kind Kind, vals []Value) (*Column, error) {
	for i, v := range vals {
		if v.IsMissing() {
			continue
		}
		if v.Kind() != kind {
			return nil, &ShapeError{Msg: fmt.Sprintf("column %q row %d: %s value in %s column", name, i, v.Kind(), kind)}
		}
	}
	cp := make([]Value, len(vals))
	copy(cp, vals)
	return &Column{name: name, kind: kind, vals: cp}, nil
}

// Numbers builds a numeric column. NaN entries are missing.
func Numbers(name string, xs ...float64) *Column {
	vals := make([]Value, len(xs))
	for i, x := range xs {
		vals[i] = Num(x)
	}
	return &Column{name: name, kind: Numeric, vals: vals}
}

// Strings builds a categorical column. Every entry is a present value, the
// empty string included.
func Strings(name string, ss ...string) *Column {
	vals := make([]Value, len(ss))
	for i, s := range ss {
		vals[i] = Str(s)
	}
	return &Column{name: name, kind: Categorical, vals: vals}
}

// Bools builds a boolean column.
func Bools(name string, bs ...bool) *Column {
	vals := make([]Value, len(bs))
	for i, b := range bs {
		vals[i] = Bool(b)
	}
	return &Column{name: name, kind: Boolean, vals: vals}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.vals) }

// At returns the value at row i.
func (c *Column) At(i int) Value { return c.vals[i] }

// Floats returns the numeric reading of each row; missing cells are NaN.
// ok is false for categorical columns.
func (c *Column) Floats() (xs []float64, ok bool) {
	if !c.kind.Numeric() {
		return nil, false
	}
	xs = make([]float64, len(c.vals))
	for i, v := range c.vals {
		xs[i], _ = v.Float()
	}
	return xs, true
}

// Present returns the numeric readings of the non-missing cells only.
func (c *Column) Present() []float64 {
	out := make([]float64, 0, len(c.vals))
	for _, v := range c.vals {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.vals {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

func (c *Column) pick(rows []int) *Column {
	vals := make([]Value, len(rows))
	for i, r := range rows {
		vals[i] = c.vals[r]
	}
	return &Column{name: c.name, kind: c.kind, vals: vals}
}

// Table is an ordered set of equal-length, uniquely named columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from columns, rejecting duplicate names and columns of
// differing lengths.
func New(cols ...*Column) (*Table, error) {
	t := &Table{cols: make([]*Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, &ShapeError{Msg: fmt.Sprintf("column %d is nil", i)}
		}
		if _, dup := t.index[c.name]; dup {
			return nil, &ShapeError{Msg: fmt.Sprintf("duplicate column name %q", c.name)}
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, &ShapeError{Msg: fmt.Sprintf("column %q has %d rows, want %d", c.name, c.Len(), t.rows)}
		}
		t.index[c.name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// empty returns a table with no columns that still reports rows rows.
func empty(rows int) *Table {
	return &Table{index: map[string]int{}, rows: rows}
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Col returns the i-th column.
func (t *Table) Col(i int) *Column { return t.cols[i] }

// Column returns the named column or a *ColumnNotFoundError.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Column: name}
	}
	return t.cols[i], nil
}

// Select returns a table with only the named columns, in the order given.
// Selecting no names yields a column-less table with the same row count.
func (t *Table) Select(names ...string) (*Table, error) {
	if len(names) == 0 {
		return empty(t.rows), nil
	}
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Drop returns a table without the named column.
func (t *Table) Drop(name string) (*Table, error) {
	if !t.Has(name) {
		return nil, &ColumnNotFoundError{Column: name}
	}
	cols := make([]*Column, 0, len(t.cols)-1)
	for _, c := range t.cols {
		if c.name != name {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return empty(t.rows), nil
	}
	return New(cols...)
}

// Filter returns a table holding the rows for which keep returns true,
// in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.pick(rows)
}

func (t *Table) pick(rows []int) *Table {
	out := &Table{cols: make([]*Column, len(t.cols)), index: make(map[string]int, len(t.cols)), rows: len(rows)}
	for i, c := range t.cols {
		out.cols[i] = c.pick(rows)
		out.index[c.name] = i
	}
	return out
}

// Row returns row r rendered as strings, in column order.
func (t *Table) Row(r int) []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.vals[r].String()
	}
	return out
}

// Head returns up to n leading rows rendered as strings. A negative n
// yields no rows.
func (t *Table) Head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	out := make([][]string, 0, n)
	for r := 0; r < n; r++ {
		out = append(out, t.Row(r))
	}
	return out
}

// MissingCount returns the number of missing cells across all columns.
func (t *Table) MissingCount() int {
	n := 0
	for _, c := range t.cols {
		n += c.MissingCount()
	}
	return n
}

// NumericNames returns, in table order, the names of columns whose values
// can be read as numbers.
func (t *Table) NumericNames() []string {
	var out []string
	for _, c := range t.cols {
		if c.kind.Numeric() {
			out = append(out, c.name)
		}
	}
	return out
}

func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Names(), "\t"))
	b.WriteString("\n")
	for r := 0; r < t.rows; r++ {
		b.WriteString(strings.Join(t.Row(r), "\t"))
		b.WriteString("\n")
	}
	return b.String()
}
