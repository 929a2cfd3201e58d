package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/edaloom/internal/table"
)

// Options controls what Describe includes in a Report.
type Options struct {
	// SampleRows is the number of leading rows copied into the report.
	SampleRows int
	// TopValues caps the category frequencies listed per categorical column.
	TopValues int
	// Correlations computes the Pearson matrix over numeric columns.
	Correlations bool
	// TopPairs caps the correlation pairs rendered in Markdown.
	TopPairs int
	// Matrix adds the full correlation grid to the Markdown.
	Matrix bool
}

// DefaultOptions returns reasonable defaults for dataset description.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8, Correlations: true, TopPairs: 10}
}

// Report is a markdown-friendly description of a table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Corr     *CorrMatrix
	topPairs int
	matrix   bool
}

// ColumnSummary captures kind and statistics per column. Numeric fields are
// zero for categorical columns.
type ColumnSummary struct {
	Name    string
	Kind    table.Kind
	NonNull int
	Missing int
	Unique  int

	// Numeric stats over present values
	Mean, Std              float64
	Min, Q1, Median, Q3    float64
	Max                    float64
	Outliers               int // outside the 1.5·IQR fences
	LowerFence, UpperFence float64

	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Describe summarizes every column of t.
func Describe(name string, t *table.Table, opt Options) *Report {
	rep := &Report{Name: name, Rows: t.NumRows(), topPairs: opt.TopPairs, matrix: opt.Matrix}
	rep.Samples = t.Head(opt.SampleRows)
	for i := 0; i < t.NumCols(); i++ {
		rep.Cols = append(rep.Cols, summarize(t.Col(i), opt))
	}
	for _, c := range rep.Cols {
		if c.NonNull == 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %q has no values", c.Name))
		} else if c.Kind.Numeric() && c.Std == 0 && c.NonNull > 1 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %q is constant; its correlations are undefined", c.Name))
		}
	}
	if opt.Correlations {
		rep.Corr = Correlation(t)
	}
	return rep
}

func summarize(c *table.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name(), Kind: c.Kind(), Missing: c.MissingCount()}
	s.NonNull = c.Len() - s.Missing

	counts := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if v := c.At(i); !v.IsMissing() {
			counts[v.String()]++
		}
	}
	s.Unique = len(counts)

	if c.Kind().Numeric() {
		xs := c.Present()
		if len(xs) == 0 {
			return s
		}
		sort.Float64s(xs)
		s.Min, s.Max = floats.Min(xs), floats.Max(xs)
		if len(xs) > 1 {
			s.Mean, s.Std = stat.MeanStdDev(xs, nil)
		} else {
			s.Mean = xs[0]
		}
		s.Q1 = table.Quantile(xs, 0.25)
		s.Median = table.Quantile(xs, 0.5)
		s.Q3 = table.Quantile(xs, 0.75)
		s.LowerFence, s.UpperFence = table.IQRBounds(xs)
		for _, x := range xs {
			if x < s.LowerFence || x > s.UpperFence {
				s.Outliers++
			}
		}
		if c.Kind() == table.Numeric {
			return s
		}
	}

	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if opt.TopValues > 0 && len(tops) > opt.TopValues {
		tops = tops[:opt.TopValues]
	}
	s.TopValues = tops
	return s
}

// Column returns the summary for name, or false.
func (r *Report) Column(name string) (ColumnSummary, bool) {
	for _, c := range r.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		if c.Kind == table.Numeric && c.NonNull > 0 {
			b.WriteString(fmt.Sprintf(": min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g, mean %.4g, std %.4g",
				c.Min, c.Q1, c.Median, c.Q3, c.Max, c.Mean, c.Std))
			b.WriteString(fmt.Sprintf("; outliers: %d outside [%.4g, %.4g]", c.Outliers, c.LowerFence, c.UpperFence))
		}
		if len(c.TopValues) > 0 {
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}

	if r.Corr != nil && r.Corr.Dim() >= 2 {
		pairs := r.Corr.TopPairs(r.topPairs)
		if len(pairs) > 0 {
			b.WriteString("\n[CORRELATIONS]\n")
			for _, p := range pairs {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
			}
		}
	}
	if r.matrix && r.Corr != nil && r.Corr.Dim() > 0 {
		b.WriteString("\n[CORRELATION MATRIX]\n")
		b.WriteString(CorrelationTable(r.Corr))
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				val = truncate(val, 80)
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// CorrelationTable renders m as a Markdown grid with two decimals; undefined
// coefficients print as NaN.
func CorrelationTable(m *CorrMatrix) string {
	if m == nil || m.Dim() == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| |")
	for _, c := range m.Columns {
		b.WriteString(" " + safeVal(c) + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", m.Dim()))
	b.WriteString("\n")
	for i, row := range m.Rows() {
		b.WriteString("| " + safeVal(m.Columns[i]) + " |")
		for _, v := range row {
			if math.IsNaN(v) {
				b.WriteString(" NaN |")
				continue
			}
			b.WriteString(fmt.Sprintf(" %.2f |", v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
