package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edaloom/internal/analysis"
	"github.com/KaramelBytes/edaloom/internal/logger"
	"github.com/KaramelBytes/edaloom/internal/utils"
)

var (
	descOutputPath string
	descOutputDir  string
	descSheet      string
	descSampleRows int
	descTopPairs   int
	descCorr       bool
	descMatrix     bool
	descQuiet      bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Summarize CSV/TSV/XLSX datasets as Markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if descOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input; use --output-dir for %d files", len(files))
		}
		c := effectiveConfig()
		if descSheet != "" {
			c.Sheet = descSheet
		}
		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			if descSampleRows < 0 {
				return fmt.Errorf("invalid --sample-rows: %d (must be >= 0)", descSampleRows)
			}
			opt.SampleRows = descSampleRows
		}
		if descTopPairs > 0 {
			opt.TopPairs = descTopPairs
		}
		opt.Correlations = descCorr
		opt.Matrix = descMatrix

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if total > 1 && !descQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := readTable(c, path)
			if err != nil {
				return err
			}
			rep := analysis.Describe(filepath.Base(path), t, opt)
			for _, w := range rep.Warnings {
				logger.Warn("dataset warning", "file", path, "warning", w)
			}
			md := rep.Markdown()

			switch {
			case descOutputPath != "":
				if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", descOutputPath)
			case descOutputDir != "":
				dest, err := summaryPath(descOutputDir, path)
				if err != nil {
					return err
				}
				if err := utils.SafeWriteFile(dest, []byte(md)); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !descQuiet {
					fmt.Fprintf(out, "✓ Wrote summary to %s\n", dest)
				}
			default:
				fmt.Fprintln(out, md)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// duplicates. The result is sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// literal path; missing files are reported by the loader
			matches = []string{arg}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// summaryPath picks dir/<base>.summary.md, adding __2, __3... when a
// summary of a same-named file was already written.
func summaryPath(dir, input string) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dest := filepath.Join(dir, stem+".summary.md")
	for idx := 2; ; idx++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest, nil
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", stem, idx))
	}
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "path to write the summary (single input)")
	describeCmd.Flags().StringVar(&descOutputDir, "output-dir", "", "directory for <name>.summary.md files")
	describeCmd.Flags().StringVar(&descSheet, "sheet", "", "XLSX: sheet name to describe")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables)")
	describeCmd.Flags().IntVar(&descTopPairs, "top-pairs", 10, "number of correlation pairs to list")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", true, "include the strongest Pearson correlations")
	describeCmd.Flags().BoolVar(&descMatrix, "matrix", false, "include the full correlation matrix")
	describeCmd.Flags().BoolVar(&descQuiet, "quiet", false, "suppress progress output")
}
