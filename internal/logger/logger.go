// Package logger provides structured logging for edaloom.
// It wraps log/slog and adds run and stage helpers so every pipeline log
// line carries the same snake_case fields.
//
// Two output formats are supported:
//   - Human (default for the CLI): one line per record with a level glyph
//   - JSON: machine-readable records
//
// Logs go to stderr so that command output on stdout stays clean.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Format selects the log output format.
type Format int

const (
	FormatJSON Format = iota
	FormatHuman
)

// ParseFormat maps "json" or "human" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "human", "text":
		return FormatHuman, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatHuman, fmt.Errorf("unknown log format %q (want json or human)", s)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Setup replaces Logger with one writing to w.
func Setup(w io.Writer, level slog.Level, format Format) {
	if w == nil {
		w = os.Stderr
	}
	switch format {
	case FormatHuman:
		Logger = slog.New(NewHumanHandler(w, &HumanHandlerOptions{Level: level, UseColors: isTerminal(w)}))
	default:
		Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

func Info(msg string, args ...any)  { Logger.Info(msg, args...) }
func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }
func Warn(msg string, args ...any)  { Logger.Warn(msg, args...) }

// WithRun returns a logger tagged with a pipeline run ID.
func WithRun(runID string) *slog.Logger {
	return Logger.With("run_id", runID)
}

// StageContext identifies one pipeline stage of one run.
type StageContext struct {
	RunID string
	Stage string // load, missing, outliers, encode, correlate, select, render
	Input string
}

func (c StageContext) attrs() []any {
	attrs := []any{slog.String("run_id", c.RunID)}
	if c.Stage != "" {
		attrs = append(attrs, slog.String("stage", c.Stage))
	}
	if c.Input != "" {
		attrs = append(attrs, slog.String("input", c.Input))
	}
	return attrs
}

// LogStageStart logs the start of a stage at debug level.
func LogStageStart(ctx StageContext) {
	Logger.Debug("stage started", ctx.attrs()...)
}

// LogStageEnd logs a finished stage with the table shape it produced.
// A non-nil err is logged at error level together with its chain.
func LogStageEnd(ctx StageContext, rows, cols int, d time.Duration, err error) {
	attrs := append(ctx.attrs(),
		slog.Int("rows", rows),
		slog.Int("cols", cols),
		slog.Duration("duration", d),
	)
	if err != nil {
		attrs = append(attrs, errorAttrs(err)...)
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Info("stage completed", attrs...)
}

// errorAttrs describes err, its concrete type and, when wrapped, its chain.
func errorAttrs(err error) []any {
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("error_type", fmt.Sprintf("%T", err)),
	}
	chain := []string{err.Error()}
	for cur := errors.Unwrap(err); cur != nil; cur = errors.Unwrap(cur) {
		chain = append(chain, cur.Error())
	}
	if len(chain) > 1 {
		attrs = append(attrs, slog.String("error_chain", strings.Join(chain, " -> ")))
	}
	return attrs
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	Level     slog.Level
	UseColors bool
}

// HumanHandler is a slog handler that writes one readable line per record.
type HumanHandler struct {
	opts   HumanHandlerOptions
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{opts: *opts, writer: w}
}

func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(h.prefix(r.Level, r.Message))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	var kv []string
	for _, a := range h.attrs {
		kv = append(kv, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		kv = append(kv, formatAttr(a))
		return true
	})
	if len(kv) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(kv, " "))
	}
	sb.WriteString("\n")
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := &HumanHandler{opts: h.opts, writer: h.writer, attrs: make([]slog.Attr, 0, len(h.attrs)+len(attrs))}
	nh.attrs = append(nh.attrs, h.attrs...)
	nh.attrs = append(nh.attrs, attrs...)
	return nh
}

// WithGroup is a no-op; groups are flattened in human output.
func (h *HumanHandler) WithGroup(string) slog.Handler { return h }

func (h *HumanHandler) prefix(level slog.Level, msg string) string {
	const (
		reset  = "\033[0m"
		red    = "\033[31m"
		yellow = "\033[33m"
		green  = "\033[32m"
		cyan   = "\033[36m"
	)
	var p, color string
	switch {
	case level >= slog.LevelError:
		p, color = "✗", red
	case level >= slog.LevelWarn:
		p, color = "⚠", yellow
	case level >= slog.LevelInfo:
		if strings.Contains(strings.ToLower(msg), "completed") {
			p, color = "✓", green
		} else {
			p, color = "ℹ", cyan
		}
	default:
		p, color = "·", reset
	}
	if h.opts.UseColors {
		return color + p + reset
	}
	return p
}

func formatAttr(a slog.Attr) string {
	switch v := a.Value.Any().(type) {
	case time.Duration:
		return fmt.Sprintf("%s=%s", a.Key, formatDuration(v))
	case float64:
		return fmt.Sprintf("%s=%.2f", a.Key, v)
	case string:
		if strings.ContainsAny(v, " =") {
			return fmt.Sprintf("%s=%q", a.Key, v)
		}
	}
	return fmt.Sprintf("%s=%v", a.Key, a.Value.Any())
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
