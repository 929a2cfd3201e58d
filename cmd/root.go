package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/edaloom/internal/config"
	"github.com/KaramelBytes/edaloom/internal/logger"
	"github.com/KaramelBytes/edaloom/internal/table"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "edaloom",
	Short: "edaloom: exploratory data analysis for tabular customer data",
	Long: `edaloom loads a CSV or XLSX dataset, cleans missing values and outliers,
one-hot encodes a categorical column, correlates the numeric columns, selects
the features most correlated with a target and renders the figures.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.edaloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json | human (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}
	name := cfg.LogFormat
	if logFormat != "" {
		name = logFormat
	}
	format, err := logger.ParseFormat(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		format = logger.FormatHuman
	}
	logger.Setup(os.Stderr, level, format)
	logger.Debug("config loaded", "file", cfgFile, "level", level.String(), "data_path", cfg.DataPath)
}

// applyOverrides copies every changed flag named in keys onto c through
// Global.Set, so flags get the same validation as `config set`.
func applyOverrides(fs *pflag.FlagSet, c *cfgpkg.Global, keys map[string]string) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok || err != nil {
			return
		}
		err = c.Set(key, f.Value.String())
	})
	return err
}

// effectiveConfig returns a copy of the loaded config so commands can
// override fields without touching what `config show` reports.
func effectiveConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	c := *cfg
	return &c
}

// readTable loads path as CSV or, for .xlsx, the named worksheet.
func readTable(c *cfgpkg.Global, path string) (*table.Table, error) {
	opt := table.DefaultLoadOptions()
	if len(c.MissingMarkers) > 0 {
		opt.MissingMarkers = c.MissingMarkers
	}
	return table.Open(path, c.Sheet, opt)
}
