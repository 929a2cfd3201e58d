package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edaloom/internal/table"
)

func TestOneHotReplacesColumn(t *testing.T) {
	tb, err := table.New(
		table.Numbers("CustomerID", 1, 2, 3),
		table.Strings("Genre", "Male", "Female", "Male"),
		table.Numbers("Age", 25, 32, 47),
	)
	require.NoError(t, err)

	out, err := table.OneHot(tb, "Genre")
	require.NoError(t, err)

	assert.False(t, out.Has("Genre"))
	assert.Equal(t, []string{"CustomerID", "Age", "Genre_Female", "Genre_Male"}, out.Names())
	assert.Equal(t, tb.NumCols()-1+2, out.NumCols())
	assert.Equal(t, tb.NumRows(), out.NumRows())

	male, _ := out.Column("Genre_Male")
	assert.Equal(t, table.Boolean, male.Kind())
	assert.Equal(t, []float64{1, 0, 1}, male.Present())
	assert.True(t, tb.Has("Genre"), "input must be unchanged")
}

func TestOneHotExactlyOneIndicatorPerRow(t *testing.T) {
	src := table.Strings("c", "x", "y", "z", "y", "x", "x")
	tb, err := table.New(src)
	require.NoError(t, err)

	out, err := table.OneHot(tb, "c")
	require.NoError(t, err)
	require.Equal(t, len(table.Categories(src)), out.NumCols())

	for r := 0; r < out.NumRows(); r++ {
		sum := 0
		for j := 0; j < out.NumCols(); j++ {
			if out.Col(j).At(r).Truth() {
				sum++
			}
		}
		assert.Equal(t, 1, sum, "row %d", r)
	}
}

func TestOneHotMissingAndNumericSources(t *testing.T) {
	g, err := table.NewColumn("g", table.Categorical, []table.Value{table.Str("a"), table.Missing()})
	require.NoError(t, err)
	tb, err := table.New(g, table.Numbers("n", 1, 2))
	require.NoError(t, err)

	out, err := table.OneHot(tb, "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "g_a"}, out.Names())
	assert.Equal(t, []string{"2", "false"}, out.Row(1))

	byNum, err := table.OneHot(tb, "n")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "n_1", "n_2"}, byNum.Names())
}

func TestOneHotErrors(t *testing.T) {
	tb, err := table.New(table.Strings("g", "a"), table.Numbers("g_a", 1))
	require.NoError(t, err)

	_, err = table.OneHot(tb, "missing")
	var nf *table.ColumnNotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = table.OneHot(tb, "g")
	var shape *table.ShapeError
	require.ErrorAs(t, err, &shape)
}
