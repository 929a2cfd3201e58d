package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edaloom/internal/pipeline"
)

var selectFlags = map[string]string{
	"target":    "target_column",
	"threshold": "threshold",
	"sheet":     "sheet",
	"strategy":  "missing_strategy",
	"fill":      "fill_value",
	"where":     "row_filter",
	"encode":    "encode_column",
}

var selectCmd = &cobra.Command{
	Use:   "select <file>",
	Short: "List the columns correlated with a target beyond a threshold",
	Long: `select cleans and encodes the dataset like run does, then prints every
column whose absolute Pearson correlation with the target is strictly greater
than the threshold, in table order, with its coefficient.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		c.DataPath = args[0]
		if err := applyOverrides(cmd.Flags(), c, selectFlags); err != nil {
			return err
		}
		if c.TargetColumn == "" {
			return fmt.Errorf("no target column: pass --target or set target_column")
		}
		opt, err := pipeline.FromConfig(c)
		if err != nil {
			return err
		}
		opt.NoPlots = true

		res, err := pipeline.Run(opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		names := res.Selected.Names()
		if len(names) == 0 {
			fmt.Fprintf(out, "⚠ No column has |r| > %.2f with %q\n", opt.Threshold, opt.TargetColumn)
			return nil
		}
		fmt.Fprintf(out, "Selected %d columns for %q (|r| > %.2f):\n", len(names), opt.TargetColumn, opt.Threshold)
		for _, name := range names {
			r, err := res.Corr.Get(name, opt.TargetColumn)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %-32s r=%+.3f\n", name, r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	f := selectCmd.Flags()
	f.StringP("target", "t", "", "target column (default from config)")
	f.Float64("threshold", 0.5, "absolute correlation a feature must exceed")
	f.String("sheet", "", "XLSX: sheet name to load")
	f.String("strategy", "", "missing value strategy: drop | fill")
	f.String("fill", "", "fill value for --strategy fill")
	f.String("where", "", "row filter expression applied before correlating")
	f.String("encode", "", "categorical column to one-hot encode before correlating")
}
