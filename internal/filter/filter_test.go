package filter_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edaloom/internal/filter"
	"github.com/KaramelBytes/edaloom/internal/table"
)

func customers(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		table.Numbers("CustomerID", 1, 2, 3, 4, 5),
		table.Strings("Genre", "Male", "Female", "Female", "Male", "Female"),
		table.Numbers("Age", 19, 35, 20, 64, 31),
		table.Bools("Member", true, false, true, true, false),
	)
	require.NoError(t, err)
	return tb
}

func TestApplyKeepsMatchingRowsInOrder(t *testing.T) {
	f, err := filter.Compile(`Age >= 30 && Genre == "Female"`)
	require.NoError(t, err)
	assert.Equal(t, `Age >= 30 && Genre == "Female"`, f.String())

	out, err := f.Apply(customers(t))
	require.NoError(t, err)
	ids, ok := out.Col(0).Floats()
	require.True(t, ok)
	assert.Equal(t, []float64{2, 5}, ids)
	assert.Equal(t, []string{"CustomerID", "Genre", "Age", "Member"}, out.Names())
}

func TestApplyBooleanColumnAndNoMatch(t *testing.T) {
	f, err := filter.Compile("Member")
	require.NoError(t, err)
	out, err := f.Apply(customers(t))
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())

	f, err = filter.Compile("Age > 100")
	require.NoError(t, err)
	out, err = f.Apply(customers(t))
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, 4, out.NumCols())
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	_, err := filter.Compile("Age >=")
	assert.True(t, errors.Is(err, filter.ErrInvalidExpression))

	_, err = filter.Compile(`"not a bool"`)
	assert.True(t, errors.Is(err, filter.ErrInvalidExpression))
}

func TestApplyReportsFailingRow(t *testing.T) {
	tb, err := table.New(table.Numbers("Age", 19, math.NaN(), 40))
	require.NoError(t, err)
	f, err := filter.Compile("Age > 18")
	require.NoError(t, err)

	_, err = f.Apply(tb)
	var ev *filter.EvalError
	require.ErrorAs(t, err, &ev)
	assert.Equal(t, 1, ev.Row)
}
