// Package pipeline runs the full exploratory pass over one dataset:
// load, clean, filter, encode, correlate, select and render, strictly in
// that order. The first failing stage aborts the run and no images are left
// behind.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/edaloom/internal/analysis"
	"github.com/KaramelBytes/edaloom/internal/config"
	"github.com/KaramelBytes/edaloom/internal/filter"
	"github.com/KaramelBytes/edaloom/internal/logger"
	"github.com/KaramelBytes/edaloom/internal/render"
	"github.com/KaramelBytes/edaloom/internal/table"
	"github.com/KaramelBytes/edaloom/internal/utils"
)

// SelectedHeatmapFile is the stem of the heatmap restricted to the
// selected features.
const SelectedHeatmapFile = "selected_correlation_heatmap"

// Options configures a run. Empty optional fields skip their stage.
type Options struct {
	DataPath string
	Sheet    string // worksheet for .xlsx input
	Load     table.LoadOptions

	Strategy       table.Strategy
	Fill           *table.Value
	Where          string // row filter expression, applied after missing values
	OutlierColumns []string
	EncodeColumn   string

	TargetColumn string
	Threshold    float64

	OutputDir  string
	Format     render.Format
	DPI        int
	Bins       int
	Histograms []string
	ScatterX   string
	ScatterY   string
	NoPlots    bool
}

// FromConfig builds Options from the global configuration.
func FromConfig(c *config.Global) (Options, error) {
	format, err := render.ParseFormat(c.ImageFormat)
	if err != nil {
		return Options{}, err
	}
	opt := Options{
		DataPath:       c.DataPath,
		Sheet:          c.Sheet,
		Load:           table.DefaultLoadOptions(),
		Strategy:       table.Strategy(c.MissingStrategy),
		OutlierColumns: c.OutlierColumns,
		Where:          c.RowFilter,
		EncodeColumn:   c.EncodeColumn,
		TargetColumn:   c.TargetColumn,
		Threshold:      c.Threshold,
		OutputDir:      c.OutputDir,
		Format:         format,
		DPI:            c.DPI,
		Bins:           c.HistogramBins,
		Histograms:     c.HistogramColumns,
		ScatterX:       c.ScatterX,
		ScatterY:       c.ScatterY,
	}
	if len(c.MissingMarkers) > 0 {
		opt.Load.MissingMarkers = c.MissingMarkers
	}
	if opt.Strategy == table.StrategyFill && c.FillValue != "" {
		v := table.ParseValue(c.FillValue)
		opt.Fill = &v
	}
	return opt, nil
}

// Result is what a successful run produced.
type Result struct {
	RunID    string
	Input    *table.Table // as loaded
	Table    *table.Table // cleaned and encoded
	Corr     *analysis.CorrMatrix
	Selected *table.Table // nil when no target was given
	Images   []string
	Duration time.Duration
}

type runner struct {
	opt   Options
	runID string
	log   *slog.Logger
	cur   *table.Table
}

// Run executes the pipeline described by opt.
func Run(opt Options) (*Result, error) {
	r := &runner{opt: opt, runID: uuid.NewString()}
	r.log = logger.WithRun(r.runID)
	start := time.Now()
	r.log.Info("run started", "input", opt.DataPath)

	res, err := r.run()
	if err != nil {
		r.log.Error("run failed", "error", err.Error(), "duration", time.Since(start))
		return nil, err
	}
	res.Duration = time.Since(start)
	r.log.Info("run completed", "rows", res.Table.NumRows(), "cols", res.Table.NumCols(), "images", len(res.Images), "duration", res.Duration)
	return res, nil
}

func (r *runner) run() (*Result, error) {
	res := &Result{RunID: r.runID}
	opt := r.opt

	if err := r.stage("load", func() error {
		t, err := table.Open(opt.DataPath, opt.Sheet, opt.Load)
		if err != nil {
			return err
		}
		res.Input, r.cur = t, t
		return nil
	}); err != nil {
		return nil, err
	}

	if err := r.stage("missing", func() error {
		t, err := table.HandleMissing(r.cur, opt.Strategy, opt.Fill)
		if err != nil {
			return err
		}
		r.cur = t
		return nil
	}); err != nil {
		return nil, err
	}

	if opt.Where != "" {
		if err := r.stage("filter", func() error {
			f, err := filter.Compile(opt.Where)
			if err != nil {
				return err
			}
			t, err := f.Apply(r.cur)
			if err != nil {
				return err
			}
			r.cur = t
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if len(opt.OutlierColumns) > 0 {
		if err := r.stage("outliers", func() error {
			t, err := table.RemoveOutliers(r.cur, opt.OutlierColumns)
			if err != nil {
				return err
			}
			r.cur = t
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if opt.EncodeColumn != "" {
		if err := r.stage("encode", func() error {
			t, err := table.OneHot(r.cur, opt.EncodeColumn)
			if err != nil {
				return err
			}
			r.cur = t
			return nil
		}); err != nil {
			return nil, err
		}
	}
	res.Table = r.cur

	if err := r.stage("correlate", func() error {
		res.Corr = analysis.Correlation(r.cur)
		return nil
	}); err != nil {
		return nil, err
	}

	if opt.TargetColumn != "" {
		if err := r.stage("select", func() error {
			t, err := analysis.SelectFeatures(r.cur, opt.TargetColumn, opt.Threshold)
			if err != nil {
				return err
			}
			res.Selected = t
			r.log.Info("features selected", "target", opt.TargetColumn, "threshold", opt.Threshold, "columns", t.Names())
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if opt.NoPlots {
		return res, nil
	}
	if err := r.stage("render", func() error {
		imgs, err := r.render(res)
		if err != nil {
			return err
		}
		res.Images = imgs
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// stage runs fn with start/end logging. The logged shape is that of the
// current table after fn returns.
func (r *runner) stage(name string, fn func() error) error {
	ctx := logger.StageContext{RunID: r.runID, Stage: name}
	if name == "load" {
		ctx.Input = r.opt.DataPath
	}
	logger.LogStageStart(ctx)
	start := time.Now()
	err := fn()
	rows, cols := 0, 0
	if r.cur != nil {
		rows, cols = r.cur.NumRows(), r.cur.NumCols()
	}
	logger.LogStageEnd(ctx, rows, cols, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// render draws every plot into a staging directory and moves the images
// into OutputDir only once all of them have been written.
func (r *runner) render(res *Result) ([]string, error) {
	opt := r.opt
	hists, err := r.planFigures(res)
	if err != nil {
		return nil, err
	}
	outDir := opt.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	staging, err := os.MkdirTemp(outDir, ".edaloom-"+r.runID+"-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	rd := render.New(staging, opt.Format, opt.DPI, opt.Bins)
	var staged []string
	add := func(p string, err error) error {
		if err != nil {
			return err
		}
		staged = append(staged, p)
		r.log.Debug("image staged", "file", filepath.Base(p))
		return nil
	}

	if res.Corr.Dim() > 0 {
		if err := add(rd.Heatmap(res.Corr)); err != nil {
			return nil, err
		}
	}
	if res.Selected != nil && res.Selected.NumCols() > 0 {
		sub, err := res.Corr.Restrict(res.Selected.Names())
		if err != nil {
			return nil, err
		}
		if err := add(rd.HeatmapAs(sub, SelectedHeatmapFile)); err != nil {
			return nil, err
		}
	}
	for _, col := range hists {
		if err := add(rd.Histogram(res.Table, col)); err != nil {
			return nil, err
		}
	}
	if opt.ScatterX != "" && opt.ScatterY != "" {
		if err := add(rd.Scatter(res.Table, opt.ScatterX, opt.ScatterY)); err != nil {
			return nil, err
		}
	}
	return utils.MoveFiles(staged, outDir)
}

// planFigures checks that no two figures share a file name and returns the
// histogram columns with repeats removed.
func (r *runner) planFigures(res *Result) ([]string, error) {
	opt := r.opt
	owner := map[string]string{}
	claim := func(stem, what string) error {
		if prev, ok := owner[stem]; ok {
			return fmt.Errorf("%s and %s would both be written to %s%s", prev, what, stem, opt.Format.Ext())
		}
		owner[stem] = what
		return nil
	}

	if res.Corr.Dim() > 0 {
		if err := claim(render.HeatmapFile, "the correlation heatmap"); err != nil {
			return nil, err
		}
	}
	if res.Selected != nil && res.Selected.NumCols() > 0 {
		if err := claim(SelectedHeatmapFile, "the selected-features heatmap"); err != nil {
			return nil, err
		}
	}
	var hists []string
	seen := map[string]bool{}
	for _, col := range opt.Histograms {
		if seen[col] {
			continue
		}
		seen[col] = true
		if err := claim(render.HistogramFile(col), fmt.Sprintf("the histogram of %q", col)); err != nil {
			return nil, err
		}
		hists = append(hists, col)
	}
	if opt.ScatterX != "" && opt.ScatterY != "" {
		if err := claim(render.ScatterFile(opt.ScatterX, opt.ScatterY), fmt.Sprintf("the scatter of %q vs %q", opt.ScatterX, opt.ScatterY)); err != nil {
			return nil, err
		}
	}
	return hists, nil
}
