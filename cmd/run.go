package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edaloom/internal/pipeline"
)

var runNoPlots bool

// runFlags maps run flags to the config keys they override.
var runFlags = map[string]string{
	"output-dir": "output_dir",
	"sheet":      "sheet",
	"strategy":   "missing_strategy",
	"fill":       "fill_value",
	"where":      "row_filter",
	"outliers":   "outlier_columns",
	"encode":     "encode_column",
	"target":     "target_column",
	"threshold":  "threshold",
	"format":     "image_format",
	"dpi":        "dpi",
	"bins":       "histogram_bins",
	"histograms": "histogram_columns",
	"scatter-x":  "scatter_x",
	"scatter-y":  "scatter_y",
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run the full pipeline: load, clean, encode, correlate, select and plot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		if len(args) == 1 {
			c.DataPath = args[0]
		}
		if err := applyOverrides(cmd.Flags(), c, runFlags); err != nil {
			return err
		}
		// a fill value without an explicit strategy means fill
		if cmd.Flags().Changed("fill") && !cmd.Flags().Changed("strategy") {
			c.MissingStrategy = "fill"
		}
		opt, err := pipeline.FromConfig(c)
		if err != nil {
			return err
		}
		opt.NoPlots = runNoPlots

		res, err := pipeline.Run(opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Loaded %s (%d rows, %d columns)\n", filepath.Base(opt.DataPath), res.Input.NumRows(), res.Input.NumCols())
		fmt.Fprintf(out, "✓ Cleaned table has %d rows, %d columns\n", res.Table.NumRows(), res.Table.NumCols())
		if res.Selected != nil {
			fmt.Fprintf(out, "✓ Selected %d features for %q (|r| > %.2f): %s\n",
				res.Selected.NumCols(), opt.TargetColumn, opt.Threshold, strings.Join(res.Selected.Names(), ", "))
		}
		for _, img := range res.Images {
			fmt.Fprintf(out, "✓ Wrote %s\n", img)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringP("output-dir", "o", "", "directory for rendered images")
	f.String("sheet", "", "XLSX: sheet name to load (default first sheet)")
	f.String("strategy", "", "missing value strategy: drop | fill")
	f.String("fill", "", "fill value for --strategy fill (implies fill)")
	f.String("where", "", `row filter expression, e.g. 'Age >= 30 && Genre == "Female"'`)
	f.String("outliers", "", "comma-separated numeric columns to filter with the 1.5·IQR rule")
	f.String("encode", "", "categorical column to one-hot encode")
	f.String("target", "", "target column for feature selection")
	f.Float64("threshold", 0.5, "absolute correlation a feature must exceed")
	f.String("format", "", "image format: jpeg | png")
	f.Int("dpi", 0, "image resolution in dots per inch")
	f.Int("bins", 0, "histogram bin count")
	f.String("histograms", "", "comma-separated columns to plot as histograms")
	f.String("scatter-x", "", "scatter plot x column")
	f.String("scatter-y", "", "scatter plot y column")
	f.BoolVar(&runNoPlots, "no-plots", false, "skip rendering")
}
