package table_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edaloom/internal/table"
)

func customersWithGaps(t *testing.T) *table.Table {
	t.Helper()
	genre, err := table.NewColumn("Genre", table.Categorical, []table.Value{
		table.Str("Male"), table.Str("Female"), table.Str("Female"), table.Missing(),
	})
	require.NoError(t, err)
	tb, err := table.New(
		table.Numbers("CustomerID", 1, 2, math.NaN(), 4),
		genre,
		table.Numbers("Age", 23, 35, 45, 29),
		table.Numbers("Annual Income (k$)", 50, math.NaN(), 85, 40),
		table.Numbers("Spending Score (1-100)", 39, 81, math.NaN(), 77),
	)
	require.NoError(t, err)
	return tb
}

func TestHandleMissingDrop(t *testing.T) {
	tb := customersWithGaps(t)
	out, err := table.HandleMissing(tb, table.StrategyDrop, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, out.MissingCount())
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, []string{"1", "Male", "23", "50", "39"}, out.Row(0))
	assert.Equal(t, 4, tb.NumRows(), "input must be unchanged")
}

func TestHandleMissingDropPreservesOrder(t *testing.T) {
	tb, err := table.New(table.Numbers("a", 1, math.NaN(), 3, 4, math.NaN(), 6))
	require.NoError(t, err)
	out, err := table.HandleMissing(tb, table.StrategyDrop, nil)
	require.NoError(t, err)
	c, _ := out.Column("a")
	assert.Equal(t, []float64{1, 3, 4, 6}, c.Present())
}

func TestHandleMissingFill(t *testing.T) {
	tb := customersWithGaps(t)
	fill := table.Num(25)
	out, err := table.HandleMissing(tb, table.StrategyFill, &fill)
	require.NoError(t, err)

	assert.Equal(t, tb.NumRows(), out.NumRows())
	assert.Equal(t, 0, out.MissingCount())

	income, _ := out.Column("Annual Income (k$)")
	assert.Equal(t, table.Numeric, income.Kind())
	f, ok := income.At(1).Float()
	require.True(t, ok)
	assert.Equal(t, 25.0, f)

	// A numeric fill in a categorical column keeps the column single-typed.
	genre, _ := out.Column("Genre")
	assert.Equal(t, table.Categorical, genre.Kind())
	assert.Equal(t, "25", genre.At(3).Text())
	assert.Equal(t, "Male", genre.At(0).Text())
}

func TestHandleMissingFillConvertsMismatchedKinds(t *testing.T) {
	tb, err := table.New(table.Numbers("x", 1, math.NaN()))
	require.NoError(t, err)
	fill := table.Str("unknown")
	out, err := table.HandleMissing(tb, table.StrategyFill, &fill)
	require.NoError(t, err)
	c, _ := out.Column("x")
	assert.Equal(t, table.Categorical, c.Kind())
	assert.Equal(t, []string{"1"}, out.Row(0))
	assert.Equal(t, []string{"unknown"}, out.Row(1))
}

func TestHandleMissingInvalidStrategy(t *testing.T) {
	tb := customersWithGaps(t)
	missing := table.Missing()
	cases := map[string]struct {
		strategy table.Strategy
		fill     *table.Value
	}{
		"unknown strategy":   {strategy: "mean"},
		"fill without value": {strategy: table.StrategyFill},
		"fill with missing":  {strategy: table.StrategyFill, fill: &missing},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := table.HandleMissing(tb, tc.strategy, tc.fill)
			var inv *table.InvalidStrategyError
			require.ErrorAs(t, err, &inv)
			assert.Nil(t, out)
		})
	}
}

func TestRemoveOutliersCumulative(t *testing.T) {
	tb, err := table.New(
		table.Numbers("Age", 22, 25, 26, 30, 29, 120),
		table.Numbers("Income", 15, 16, 18, 20, 17, 200),
	)
	require.NoError(t, err)

	out, err := table.RemoveOutliers(tb, []string{"Age", "Income"})
	require.NoError(t, err)
	assert.Equal(t, 5, out.NumRows())
	age, _ := out.Column("Age")
	assert.Equal(t, []float64{22, 25, 26, 30, 29}, age.Present())
	assert.Equal(t, 6, tb.NumRows(), "input must be unchanged")
}

func TestRemoveOutliersSingleColumn(t *testing.T) {
	tb, err := table.New(
		table.Numbers("CustomerID", 1, 2, 3, 4, 5),
		table.Numbers("Annual Income (k$)", 100, 16, 17, 18, 19),
	)
	require.NoError(t, err)
	out, err := table.RemoveOutliers(tb, []string{"Annual Income (k$)"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumRows())
}

func TestRemoveOutliersDropsMissing(t *testing.T) {
	tb, err := table.New(table.Numbers("x", 1, 2, math.NaN(), 3))
	require.NoError(t, err)
	out, err := table.RemoveOutliers(tb, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())
}

func TestRemoveOutliersErrors(t *testing.T) {
	tb, err := table.New(table.Numbers("x", 1, 2), table.Strings("g", "a", "b"))
	require.NoError(t, err)

	_, err = table.RemoveOutliers(tb, []string{"g"})
	var nn *table.NonNumericColumnError
	require.ErrorAs(t, err, &nn)
	assert.Equal(t, "g", nn.Column)

	_, err = table.RemoveOutliers(tb, []string{"x", "missing"})
	var nf *table.ColumnNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestQuantileLinear(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, table.Quantile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 2.5, table.Quantile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 3.25, table.Quantile(sorted, 0.75), 1e-12)
	assert.Equal(t, 1.0, table.Quantile(sorted, 0))
	assert.Equal(t, 4.0, table.Quantile(sorted, 1))
	assert.True(t, math.IsNaN(table.Quantile(nil, 0.5)))

	lo, hi := table.IQRBounds([]float64{22, 25, 26, 30, 29, 120})
	assert.InDelta(t, 18.5, lo, 1e-12)
	assert.InDelta(t, 36.5, hi, 1e-12)
}
