package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Cleaning and encoding
	MissingStrategy string   `mapstructure:"missing_strategy" yaml:"missing_strategy"`
	FillValue       string   `mapstructure:"fill_value" yaml:"fill_value"`
	OutlierColumns  []string `mapstructure:"outlier_columns" yaml:"outlier_columns"`
	EncodeColumn    string   `mapstructure:"encode_column" yaml:"encode_column"`
	MissingMarkers  []string `mapstructure:"missing_markers" yaml:"missing_markers"`
	RowFilter       string   `mapstructure:"row_filter" yaml:"row_filter"`

	// Feature selection
	TargetColumn string  `mapstructure:"target_column" yaml:"target_column"`
	Threshold    float64 `mapstructure:"threshold" yaml:"threshold"`

	// Rendering
	ImageFormat      string   `mapstructure:"image_format" yaml:"image_format"`
	DPI              int      `mapstructure:"dpi" yaml:"dpi"`
	HistogramColumns []string `mapstructure:"histogram_columns" yaml:"histogram_columns"`
	HistogramBins    int      `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	ScatterX         string   `mapstructure:"scatter_x" yaml:"scatter_x"`
	ScatterY         string   `mapstructure:"scatter_y" yaml:"scatter_y"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.edaloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".edaloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edaloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by callers) > env > config file > defaults.
// A missing config file is not an error; a malformed one is.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDALOOM")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case cfgFile != "" && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Defaults mirror the reference Mall Customers run.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", "Mall_Customers.csv")
	v.SetDefault("sheet", "")
	v.SetDefault("output_dir", ".")
	v.SetDefault("missing_strategy", "drop")
	v.SetDefault("fill_value", "")
	v.SetDefault("outlier_columns", []string{})
	v.SetDefault("encode_column", "Genre")
	v.SetDefault("missing_markers", []string{})
	v.SetDefault("row_filter", "")
	v.SetDefault("target_column", "Spending Score (1-100)")
	v.SetDefault("threshold", 0.5)
	v.SetDefault("image_format", "jpeg")
	v.SetDefault("dpi", 300)
	v.SetDefault("histogram_columns", []string{"Age", "Annual Income (k$)"})
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("scatter_x", "Annual Income (k$)")
	v.SetDefault("scatter_y", "Spending Score (1-100)")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "human")
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"data_path", "sheet", "output_dir",
	"missing_strategy", "fill_value", "outlier_columns", "encode_column", "missing_markers", "row_filter",
	"target_column", "threshold",
	"image_format", "dpi", "histogram_columns", "histogram_bins", "scatter_x", "scatter_y",
	"log_level", "log_format",
}

// Get renders the value of key as it would be typed on the command line.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_path":
		return c.DataPath, nil
	case "sheet":
		return c.Sheet, nil
	case "output_dir":
		return c.OutputDir, nil
	case "missing_strategy":
		return c.MissingStrategy, nil
	case "fill_value":
		return c.FillValue, nil
	case "outlier_columns":
		return strings.Join(c.OutlierColumns, ","), nil
	case "encode_column":
		return c.EncodeColumn, nil
	case "missing_markers":
		return strings.Join(c.MissingMarkers, ","), nil
	case "row_filter":
		return c.RowFilter, nil
	case "target_column":
		return c.TargetColumn, nil
	case "threshold":
		return strconv.FormatFloat(c.Threshold, 'g', -1, 64), nil
	case "image_format":
		return c.ImageFormat, nil
	case "dpi":
		return strconv.Itoa(c.DPI), nil
	case "histogram_columns":
		return strings.Join(c.HistogramColumns, ","), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "scatter_x":
		return c.ScatterX, nil
	case "scatter_y":
		return c.ScatterY, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key. List values are comma separated.
func (c *Global) Set(key, val string) error {
	switch key {
	case "data_path":
		c.DataPath = val
	case "sheet":
		c.Sheet = val
	case "output_dir":
		c.OutputDir = val
	case "missing_strategy":
		switch strings.ToLower(val) {
		case "drop", "fill":
			c.MissingStrategy = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid missing_strategy: %s (use drop or fill)", val)
		}
	case "fill_value":
		c.FillValue = val
	case "outlier_columns":
		c.OutlierColumns = splitList(val)
	case "encode_column":
		c.EncodeColumn = val
	case "missing_markers":
		c.MissingMarkers = splitList(val)
	case "row_filter":
		c.RowFilter = val
	case "target_column":
		c.TargetColumn = val
	case "threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid float for threshold: %v (want 0..1)", val)
		}
		c.Threshold = f
	case "image_format":
		switch strings.ToLower(val) {
		case "jpeg", "jpg":
			c.ImageFormat = "jpeg"
		case "png":
			c.ImageFormat = "png"
		default:
			return fmt.Errorf("invalid image_format: %s (use jpeg or png)", val)
		}
	case "dpi":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for dpi: %v", val)
		}
		c.DPI = i
	case "histogram_columns":
		c.HistogramColumns = splitList(val)
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "scatter_x":
		c.ScatterX = val
	case "scatter_y":
		c.ScatterY = val
	case "log_level":
		c.LogLevel = val
	case "log_format":
		switch strings.ToLower(val) {
		case "json", "human":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use json or human)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
