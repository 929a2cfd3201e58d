package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/edaloom/internal/table"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across the
// numeric columns of a table. A column with zero variance correlates as NaN
// with every column, itself included.
type CorrMatrix struct {
	Columns []string
	index   map[string]int
	sym     *mat.SymDense // nil when there are no columns
}

// Correlation computes sample Pearson correlations between every pair of
// numeric (and boolean) columns, using the rows where both cells are present.
// Categorical columns are skipped. Labels keep the table's column order.
func Correlation(t *table.Table) *CorrMatrix {
	names := t.NumericNames()
	cols := make([][]float64, len(names))
	for i, n := range names {
		c, _ := t.Column(n)
		cols[i], _ = c.Floats()
	}
	m := &CorrMatrix{Columns: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		m.index[n] = i
	}
	if len(names) == 0 {
		return m
	}
	m.sym = mat.NewSymDense(len(names), nil)
	for a := range names {
		for b := a; b < len(names); b++ {
			m.sym.SetSym(a, b, pearson(cols[a], cols[b], a == b))
		}
	}
	return m
}

// pearson correlates x and y over their pairwise-complete rows.
func pearson(x, y []float64, self bool) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if constant(xs) || constant(ys) {
		return math.NaN()
	}
	if self {
		return 1
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// Dim returns the number of labelled columns.
func (m *CorrMatrix) Dim() int { return len(m.Columns) }

// At returns the coefficient at (i, j).
func (m *CorrMatrix) At(i, j int) float64 { return m.sym.At(i, j) }

// Index returns the position of a label, or -1.
func (m *CorrMatrix) Index(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

// Get returns the coefficient between two labelled columns.
func (m *CorrMatrix) Get(a, b string) (float64, error) {
	i, j := m.Index(a), m.Index(b)
	if i < 0 {
		return math.NaN(), &table.ColumnNotFoundError{Column: a}
	}
	if j < 0 {
		return math.NaN(), &table.ColumnNotFoundError{Column: b}
	}
	return m.At(i, j), nil
}

// Vector returns the coefficients of the named column against every column,
// in label order.
func (m *CorrMatrix) Vector(name string) ([]float64, error) {
	i := m.Index(name)
	if i < 0 {
		return nil, &table.ColumnNotFoundError{Column: name}
	}
	out := make([]float64, m.Dim())
	for j := range out {
		out[j] = m.At(i, j)
	}
	return out, nil
}

// Restrict returns the square sub-matrix over the given labels, in the
// order given.
func (m *CorrMatrix) Restrict(names []string) (*CorrMatrix, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		idx[k] = m.Index(n)
		if idx[k] < 0 {
			return nil, &table.ColumnNotFoundError{Column: n}
		}
	}
	out := &CorrMatrix{Columns: append([]string(nil), names...), index: make(map[string]int, len(names))}
	for k, n := range names {
		out.index[n] = k
	}
	if len(names) == 0 {
		return out, nil
	}
	out.sym = mat.NewSymDense(len(names), nil)
	for a := range idx {
		for b := a; b < len(idx); b++ {
			out.sym.SetSym(a, b, m.At(idx[a], idx[b]))
		}
	}
	return out, nil
}

// Rows returns the matrix as nested slices, row-major.
func (m *CorrMatrix) Rows() [][]float64 {
	out := make([][]float64, m.Dim())
	for i := range out {
		out[i] = make([]float64, m.Dim())
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// TopPairs returns up to n off-diagonal pairs ordered by |r| descending.
// NaN coefficients are skipped.
func (m *CorrMatrix) TopPairs(n int) []PairCorr {
	var pairs []PairCorr
	for i := 0; i < m.Dim(); i++ {
		for j := i + 1; j < m.Dim(); j++ {
			r := m.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sortPairs(pairs)
	if n >= 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
