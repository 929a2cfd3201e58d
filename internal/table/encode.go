package table

import (
	"fmt"
	"sort"
)

// OneHot replaces column with one boolean indicator column per distinct
// observed value, named "<column>_<value>" and appended after the remaining
// columns in lexicographic order of the value. A row whose source value is
// missing is false in every indicator.
func OneHot(t *Table, column string) (*Table, error) {
	src, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	cats := Categories(src)
	cols := make([]*Column, 0, len(t.cols)-1+len(cats))
	for _, c := range t.cols {
		if c.name != column {
			cols = append(cols, c)
		}
	}
	for _, cat := range cats {
		name := fmt.Sprintf("%s_%s", column, cat)
		if t.Has(name) {
			return nil, &ShapeError{Msg: fmt.Sprintf("indicator column %q already exists", name)}
		}
		vals := make([]Value, len(src.vals))
		for i, v := range src.vals {
			vals[i] = Bool(!v.IsMissing() && v.String() == cat)
		}
		cols = append(cols, &Column{name: name, kind: Boolean, vals: vals})
	}
	if len(cols) == 0 {
		return empty(t.rows), nil
	}
	return New(cols...)
}

// Categories returns the distinct non-missing values of a column rendered as
// text, in lexicographic order.
func Categories(c *Column) []string {
	seen := map[string]struct{}{}
	for _, v := range c.vals {
		if !v.IsMissing() {
			seen[v.String()] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
