package analysis_test

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/edaloom/internal/analysis"
	"github.com/KaramelBytes/edaloom/internal/table"
)

func TestDescribeNumericAndCategorical(t *testing.T) {
	rep := analysis.Describe("Mall_Customers.csv", customers(t), analysis.DefaultOptions())

	assert.Equal(t, 6, rep.Rows)
	require.Len(t, rep.Cols, 5)

	age, ok := rep.Column("Age")
	require.True(t, ok)
	assert.Equal(t, table.Numeric, age.Kind)
	assert.Equal(t, 6, age.NonNull)
	assert.Equal(t, 19.0, age.Min)
	assert.Equal(t, 31.0, age.Max)
	assert.InDelta(t, 22.666666, age.Mean, 1e-5)
	assert.InDelta(t, 21.5, age.Median, 1e-12)
	assert.Equal(t, 1, age.Outliers) // 31 is above q3 + 1.5·IQR

	genre, ok := rep.Column("Genre")
	require.True(t, ok)
	assert.Equal(t, table.Categorical, genre.Kind)
	assert.Equal(t, 2, genre.Unique)
	assert.Equal(t, []analysis.CategoryCount{{Value: "Female", Count: 3}, {Value: "Male", Count: 3}}, genre.TopValues)

	require.NotNil(t, rep.Corr)
	assert.Equal(t, 4, rep.Corr.Dim())
}

func TestDescribeWarnings(t *testing.T) {
	tb, err := table.New(
		table.Numbers("flat", 1, 1, 1),
		table.Numbers("gone", math.NaN(), math.NaN(), math.NaN()),
	)
	require.NoError(t, err)
	rep := analysis.Describe("", tb, analysis.Options{})
	assert.Nil(t, rep.Corr)
	assert.Empty(t, rep.Samples)
	assert.Len(t, rep.Warnings, 2)
}

func TestReportMarkdown(t *testing.T) {
	rep := analysis.Describe("Mall_Customers.csv", customers(t), analysis.DefaultOptions())
	md := rep.Markdown()

	for _, section := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[CORRELATIONS]", "[HEAD AND SAMPLE ROWS]"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "File: Mall_Customers.csv")
	assert.Contains(t, md, "- Genre: categorical")
	assert.Contains(t, md, "| 1 | Male | 19 | 15 | 39 |")
	assert.NotContains(t, md, "[NOTES]")
}

func TestCorrelationTable(t *testing.T) {
	tb, err := table.New(table.Numbers("x", 1, 2, 3), table.Numbers("k", 4, 4, 4))
	require.NoError(t, err)
	out := analysis.CorrelationTable(analysis.Correlation(tb))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| | x | k |", lines[0])
	assert.Equal(t, "| x | 1.00 | NaN |", lines[2])
	assert.Equal(t, "| k | NaN | NaN |", lines[3])
	assert.Empty(t, analysis.CorrelationTable(nil))
}

func TestReportMarkdownMatrixAndLongCells(t *testing.T) {
	long := strings.Repeat("é", 90)
	tb, err := table.New(
		table.Strings("note", long, "short"),
		table.Numbers("x", 1, 2),
		table.Numbers("y", 2, 4),
	)
	require.NoError(t, err)

	opt := analysis.DefaultOptions()
	md := analysis.Describe("notes.csv", tb, opt).Markdown()
	assert.NotContains(t, md, "[CORRELATION MATRIX]")
	assert.Contains(t, md, "| "+strings.Repeat("é", 77)+"... | 1 | 2 |")
	assert.True(t, utf8.ValidString(md))

	opt.Matrix = true
	md = analysis.Describe("notes.csv", tb, opt).Markdown()
	assert.Contains(t, md, "[CORRELATION MATRIX]\n| | x | y |")
	assert.Contains(t, md, "| x | 1.00 | 1.00 |")
}
