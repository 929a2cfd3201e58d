// Package render draws correlation heatmaps, histograms and scatter plots
// with gonum/plot and writes them as raster images.
package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/edaloom/internal/utils"
)

// Format is an output image encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// ParseFormat accepts jpeg, jpg or png in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (use jpeg or png)", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".jpeg"
}

// Renderer writes plots into OutDir. The zero value is not usable; build
// one with New.
type Renderer struct {
	OutDir string
	Format Format
	DPI    int
	Bins   int
}

// DefaultDPI keeps a 10x8 inch heatmap at a few tens of megabytes of
// raster memory.
const DefaultDPI = 300

// DefaultBins is the histogram bin count.
const DefaultBins = 20

// New returns a Renderer with defaults filled in for zero fields.
func New(outDir string, format Format, dpi, bins int) *Renderer {
	if format == "" {
		format = JPEG
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Renderer{OutDir: outDir, Format: format, DPI: dpi, Bins: bins}
}

// Encode draws p on a w x h canvas and returns the encoded image.
func (r *Renderer) Encode(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.DPI))
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	var err error
	switch r.Format {
	case PNG:
		_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(&buf)
	default:
		_, err = vgimg.JpegCanvas{Canvas: c}.WriteTo(&buf)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.Format, err)
	}
	return buf.Bytes(), nil
}

// save encodes p and writes it atomically to OutDir/name+ext.
func (r *Renderer) save(p *plot.Plot, w, h vg.Length, name string) (string, error) {
	b, err := r.Encode(p, w, h)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(r.OutDir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.OutDir, name+r.Format.Ext())
	if err := utils.SafeWriteFile(path, b); err != nil {
		return "", err
	}
	return path, nil
}

var (
	parenthetical = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)
	nonWord       = regexp.MustCompile(`[^a-z0-9]+`)
)

// Title strips unit suffixes such as "(k$)" from a column name.
func Title(column string) string {
	t := strings.TrimSpace(parenthetical.ReplaceAllString(column, ""))
	if t == "" {
		return strings.TrimSpace(column)
	}
	return t
}

// Slug turns a column name into a file-name stem: "Annual Income (k$)"
// becomes "annual_income".
func Slug(column string) string {
	s := nonWord.ReplaceAllString(strings.ToLower(Title(column)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "column"
	}
	return s
}
