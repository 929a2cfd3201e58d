package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edaloom/internal/analysis"
	"github.com/KaramelBytes/edaloom/internal/table"
)

func features(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		table.Numbers("Feature1", 1, 2, 3, 4, 5),
		table.Numbers("Feature2", 1, 2, 3, 4, 5),
		table.Numbers("Feature3", 5, 4, 3, 2, 1),
		table.Numbers("Feature4", 2, 3, 2, 3, 2),
		table.Numbers("Target", 0, 1, 0, 1, 0),
	)
	require.NoError(t, err)
	return tb
}

func TestSelectFeaturesStrictThreshold(t *testing.T) {
	out, err := analysis.SelectFeatures(features(t), "Target", 0.9)
	require.NoError(t, err)
	// Feature1..3 are uncorrelated with Target; Feature4 tracks it exactly.
	assert.Equal(t, []string{"Feature4", "Target"}, out.Names())
	assert.Equal(t, 5, out.NumRows())
}

func TestSelectFeaturesKeepsTableOrder(t *testing.T) {
	tb, err := table.New(
		table.Numbers("Target", 1, 2, 3, 4),
		table.Strings("label", "a", "b", "c", "d"),
		table.Numbers("neg", 8, 6, 4, 2),
		table.Numbers("noise", 1, 3, 3, 1),
	)
	require.NoError(t, err)
	out, err := analysis.SelectFeatures(tb, "Target", analysis.DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []string{"Target", "neg"}, out.Names())
}

func TestSelectedIncludesTargetAndIsMonotone(t *testing.T) {
	m := analysis.Correlation(customers(t))
	target := "Spending Score (1-100)"
	prev := m.Dim() + 1
	for _, thr := range []float64{-1, 0, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99} {
		sel, err := m.Selected(target, thr)
		require.NoError(t, err)
		assert.Contains(t, sel, target, "threshold %v", thr)
		assert.LessOrEqual(t, len(sel), prev, "threshold %v", thr)
		prev = len(sel)
	}
}

func TestSelectFeaturesEmptySelection(t *testing.T) {
	tb, err := table.New(
		table.Numbers("Target", 3, 3, 3),
		table.Numbers("x", 1, 2, 3),
	)
	require.NoError(t, err)
	out, err := analysis.SelectFeatures(tb, "Target", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumCols())
	assert.Equal(t, 3, out.NumRows())
}

func TestSelectFeaturesUnknownTarget(t *testing.T) {
	_, err := analysis.SelectFeatures(features(t), "Spend", 0.5)
	var nf *table.ColumnNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Spend", nf.Column)

	tb, err := table.New(table.Strings("Target", "a", "b"), table.Numbers("x", 1, 2))
	require.NoError(t, err)
	_, err = analysis.SelectFeatures(tb, "Target", 0.5)
	require.ErrorAs(t, err, &nf)
}
