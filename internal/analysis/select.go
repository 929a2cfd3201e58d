package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/edaloom/internal/table"
)

// DefaultThreshold is the absolute correlation a feature must exceed.
const DefaultThreshold = 0.5

// Selected returns, in label order, the columns whose absolute correlation
// with target is strictly greater than threshold. NaN coefficients never
// qualify. The target itself qualifies whenever it is not constant and the
// threshold is below 1. An empty result is not an error.
func (m *CorrMatrix) Selected(target string, threshold float64) ([]string, error) {
	vec, err := m.Vector(target)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for j, r := range vec {
		if math.Abs(r) > threshold {
			out = append(out, m.Columns[j])
		}
	}
	return out, nil
}

// SelectFeatures correlates the numeric columns of t and returns t restricted
// to the columns selected against target, in their original order. The
// result has the same rows as t and may have no columns.
func SelectFeatures(t *table.Table, target string, threshold float64) (*table.Table, error) {
	if !t.Has(target) {
		return nil, &table.ColumnNotFoundError{Column: target}
	}
	m := Correlation(t)
	names, err := m.Selected(target, threshold)
	if err != nil {
		return nil, fmt.Errorf("select features: target %q has no correlation vector: %w", target, err)
	}
	return t.Select(names...)
}

func sortPairs(pairs []PairCorr) {
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
}
