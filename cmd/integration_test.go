package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const mallCSV = `CustomerID,Genre,Age,Annual Income (k$),Spending Score (1-100)
1,Male,19,15,39
2,Male,21,15,81
3,Female,20,16,6
4,Female,23,16,77
5,Female,31,17,40
6,Female,22,,76
7,Female,35,18,6
8,Female,23,18,94
9,Male,64,19,3
10,Female,30,19,72
11,Male,67,19,14
12,,35,19,99
`

// resetFlags restores every flag to its default so Changed state does not
// leak between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its stdout.
func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCLI is a helper to execute the root command with args.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setupHome isolates config under a temp HOME and writes the sample dataset.
func setupHome(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "Mall_Customers.csv")
	if err := os.WriteFile(data, []byte(mallCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return home, data
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestCLI_RunWritesFigures(t *testing.T) {
	home, data := setupHome(t)
	figs := filepath.Join(home, "figures")

	out := runCLI(t, "run", data, "--output-dir", figs, "--dpi", "10", "--format", "png", "--log-format", "json")

	want := []string{
		"age_distribution.png",
		"annual_income_distribution.png",
		"annual_income_vs_spending_score.png",
		"correlation_heatmap.png",
		"selected_correlation_heatmap.png",
	}
	if got := listDir(t, figs); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("figures = %v, want %v", got, want)
	}
	if !strings.Contains(out, "✓ Cleaned table has 10 rows, 6 columns") {
		t.Fatalf("missing clean summary in output:\n%s", out)
	}
	if !strings.Contains(out, `for "Spending Score (1-100)"`) {
		t.Fatalf("missing selection line in output:\n%s", out)
	}
}

func TestCLI_RunFailsWithoutPartialOutput(t *testing.T) {
	home, data := setupHome(t)
	figs := filepath.Join(home, "figures")

	_, err := execute("run", data, "--output-dir", figs, "--dpi", "10", "--scatter-y", "Nope")
	if err == nil {
		t.Fatalf("expected error for unknown scatter column")
	}
	if !strings.Contains(err.Error(), `"Nope"`) {
		t.Fatalf("error should name the column: %v", err)
	}
	if got := listDir(t, figs); len(got) != 0 {
		t.Fatalf("failed run left files behind: %v", got)
	}

	if _, err := execute("run", data, "--no-plots", "--strategy", "median"); err == nil {
		t.Fatalf("expected error for invalid strategy")
	}
}

func TestCLI_RunNoPlotsWithFill(t *testing.T) {
	home, data := setupHome(t)
	figs := filepath.Join(home, "figures")
	out := runCLI(t, "run", data, "--output-dir", figs, "--no-plots", "--fill", "0", "--outliers", "Age")
	if !strings.Contains(out, "✓ Cleaned table has 10 rows") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if got := listDir(t, figs); len(got) != 0 {
		t.Fatalf("--no-plots wrote files: %v", got)
	}
}

func TestCLI_DescribeWritesSummary(t *testing.T) {
	home, data := setupHome(t)
	dest := filepath.Join(home, "summary.md")

	runCLI(t, "describe", data, "--output", dest)
	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	md := string(body)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 12", "- Genre: categorical", "[HEAD AND SAMPLE ROWS]"} {
		if !strings.Contains(md, want) {
			t.Fatalf("summary missing %q:\n%s", want, md)
		}
	}

	out := runCLI(t, "describe", data, "--sample-rows", "0", "--correlations=false")
	if strings.Contains(out, "[HEAD AND SAMPLE ROWS]") || strings.Contains(out, "[CORRELATIONS]") {
		t.Fatalf("samples and correlations should be suppressed:\n%s", out)
	}

	out = runCLI(t, "describe", data, "--matrix")
	if !strings.Contains(out, "[CORRELATION MATRIX]") || !strings.Contains(out, "| Age | ") {
		t.Fatalf("expected the correlation matrix:\n%s", out)
	}
}

func TestCLI_DescribeRejectsNegativeSampleRows(t *testing.T) {
	_, data := setupHome(t)
	_, err := execute("describe", data, "--sample-rows=-1")
	if err == nil || !strings.Contains(err.Error(), "--sample-rows") {
		t.Fatalf("expected a --sample-rows error, got %v", err)
	}
}

func TestCLI_DescribeBatchAvoidsOverwrite(t *testing.T) {
	home, _ := setupHome(t)
	for _, d := range []string{"d1", "d2"} {
		dir := filepath.Join(home, d)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "metrics.csv"), []byte("col1,col2\nA,1\nB,2\nC,3\n"), 0o644); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}
	sums := filepath.Join(home, "summaries")
	out := runCLI(t, "describe", filepath.Join(home, "d*", "metrics.csv"), "--output-dir", sums)

	if !strings.Contains(out, "[2/2] Processing metrics.csv...") {
		t.Fatalf("missing progress output:\n%s", out)
	}
	got := listDir(t, sums)
	want := []string{"metrics.summary.md", "metrics__2.summary.md"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("summaries = %v, want %v", got, want)
	}
}

func TestCLI_SelectPrintsCoefficients(t *testing.T) {
	_, data := setupHome(t)

	out := runCLI(t, "select", data, "--target", "Spending Score (1-100)", "--threshold", "0")
	if !strings.Contains(out, "r=+1.000") {
		t.Fatalf("target should correlate with itself:\n%s", out)
	}

	out = runCLI(t, "select", data, "--target", "Spending Score (1-100)", "--threshold", "1")
	if !strings.Contains(out, "⚠ No column") {
		t.Fatalf("expected empty selection notice:\n%s", out)
	}

	if _, err := execute("select", data, "--target", "Genre"); err == nil {
		t.Fatalf("expected error for a categorical target after encoding")
	}
}

func TestCLI_PlotHistogram(t *testing.T) {
	home, data := setupHome(t)
	figs := filepath.Join(home, "plots")

	runCLI(t, "plot", "hist", data, "--column", "Age", "-o", figs, "--dpi", "10")
	runCLI(t, "plot", "scatter", data, "-o", figs, "--dpi", "10", "--format", "png")
	want := []string{"age_distribution.jpeg", "annual_income_vs_spending_score.png"}
	if got := listDir(t, figs); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("plots = %v, want %v", got, want)
	}

	if _, err := execute("plot", "hist", data, "--column", "Genre", "-o", figs); err == nil {
		t.Fatalf("expected error for a categorical histogram")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home, _ := setupHome(t)

	runCLI(t, "config", "set", "dpi", "72")
	runCLI(t, "config", "set", "outlier_columns", "Age, Annual Income (k$)")
	if _, err := os.Stat(filepath.Join(home, ".edaloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}

	out := runCLI(t, "config", "show")
	for _, want := range []string{"dpi: 72", "outlier_columns: Age,Annual Income (k$)", "target_column: Spending Score (1-100)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := execute("config", "set", "dpi", "abc"); err == nil {
		t.Fatalf("expected error for invalid dpi")
	}
	if _, err := execute("config", "set", "api_key", "x"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
