package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edaloom/internal/analysis"
	"github.com/KaramelBytes/edaloom/internal/logger"
	"github.com/KaramelBytes/edaloom/internal/render"
	"github.com/KaramelBytes/edaloom/internal/table"
)

var (
	plotColumn string
	plotX      string
	plotY      string
)

var plotFlags = map[string]string{
	"output-dir": "output_dir",
	"format":     "image_format",
	"dpi":        "dpi",
	"sheet":      "sheet",
	"bins":       "histogram_bins",
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render a single figure from a dataset",
}

var plotHeatmapCmd = &cobra.Command{
	Use:   "heatmap <file>",
	Short: "Correlation heatmap of the numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotWith(cmd, args[0], func(r *render.Renderer, t *table.Table) (string, error) {
			return r.Heatmap(analysis.Correlation(t))
		})
	},
}

var plotHistCmd = &cobra.Command{
	Use:   "hist <file>",
	Short: "Histogram with a density curve for one numeric column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if plotColumn == "" {
			return fmt.Errorf("--column is required")
		}
		return plotWith(cmd, args[0], func(r *render.Renderer, t *table.Table) (string, error) {
			return r.Histogram(t, plotColumn)
		})
	},
}

var plotScatterCmd = &cobra.Command{
	Use:   "scatter <file>",
	Short: "Scatter plot of two numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotWith(cmd, args[0], func(r *render.Renderer, t *table.Table) (string, error) {
			x, y := plotX, plotY
			if c := effectiveConfig(); x == "" || y == "" {
				if x == "" {
					x = c.ScatterX
				}
				if y == "" {
					y = c.ScatterY
				}
			}
			return r.Scatter(t, x, y)
		})
	},
}

// plotWith loads path, builds a Renderer from config and flags and draws one
// figure with fn.
func plotWith(cmd *cobra.Command, path string, fn func(*render.Renderer, *table.Table) (string, error)) error {
	c := effectiveConfig()
	if err := applyOverrides(cmd.Flags(), c, plotFlags); err != nil {
		return err
	}
	format, err := render.ParseFormat(c.ImageFormat)
	if err != nil {
		return err
	}
	t, err := readTable(c, path)
	if err != nil {
		return err
	}
	out, err := fn(render.New(c.OutputDir, format, c.DPI, c.HistogramBins), t)
	if err != nil {
		return err
	}
	logger.Info("figure rendered", "input", path, "file", out)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", out)
	return nil
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.AddCommand(plotHeatmapCmd, plotHistCmd, plotScatterCmd)

	pf := plotCmd.PersistentFlags()
	pf.StringP("output-dir", "o", "", "directory for the image")
	pf.String("format", "", "image format: jpeg | png")
	pf.Int("dpi", 0, "image resolution in dots per inch")
	pf.String("sheet", "", "XLSX: sheet name to load")

	plotHistCmd.Flags().StringVarP(&plotColumn, "column", "c", "", "numeric column to plot")
	plotHistCmd.Flags().Int("bins", 0, "histogram bin count")
	plotScatterCmd.Flags().StringVar(&plotX, "x", "", "x column (default scatter_x)")
	plotScatterCmd.Flags().StringVar(&plotY, "y", "", "y column (default scatter_y)")
}
