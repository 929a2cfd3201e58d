package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/edaloom/internal/table"
)

// kdePoints is the resolution of the density overlay.
const kdePoints = 200

// HistogramPlot builds a histogram of the named numeric column with a
// Gaussian kernel density overlay scaled to bin counts. Missing cells are
// ignored.
func HistogramPlot(t *table.Table, column string, bins int) (*plot.Plot, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if !c.Kind().Numeric() {
		return nil, &table.NonNumericColumnError{Column: column, Kind: c.Kind()}
	}
	xs := c.Present()
	if len(xs) == 0 {
		return nil, fmt.Errorf("histogram %q: column has no values", column)
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	h, err := plotter.NewHist(plotter.Values(xs), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", column, err)
	}
	h.FillColor = color.RGBA{R: 76, G: 114, B: 176, A: 160}

	p := plot.New()
	p.Title.Text = Title(column) + " Distribution"
	p.X.Label.Text = column
	p.Y.Label.Text = "Frequency"
	p.Add(h)

	if kde := densityLine(xs, h.Width); kde != nil {
		p.Add(kde)
	}
	return p, nil
}

// densityLine returns the kernel density estimate of xs multiplied by
// len(xs)*binWidth so it overlays a count histogram, or nil when the sample
// has no spread. Bandwidth follows Scott's rule.
func densityLine(xs []float64, binWidth float64) *plotter.Line {
	if len(xs) < 2 {
		return nil
	}
	sd := stat.StdDev(xs, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := 1.06 * sd * math.Pow(float64(len(xs)), -0.2)
	lo, hi := floats.Min(xs)-3*bw, floats.Max(xs)+3*bw

	kernels := make([]distuv.Normal, len(xs))
	for i, x := range xs {
		kernels[i] = distuv.Normal{Mu: x, Sigma: bw}
	}
	pts := make(plotter.XYs, kdePoints)
	step := (hi - lo) / float64(kdePoints-1)
	for i := range pts {
		x := lo + float64(i)*step
		var d float64
		for _, k := range kernels {
			d += k.Prob(x)
		}
		pts[i] = plotter.XY{X: x, Y: d * binWidth}
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil
	}
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Color = color.RGBA{R: 31, G: 60, B: 120, A: 255}
	return l
}

// Histogram renders the named column to OutDir/<slug>_distribution.
func (r *Renderer) Histogram(t *table.Table, column string) (string, error) {
	p, err := HistogramPlot(t, column, r.Bins)
	if err != nil {
		return "", err
	}
	return r.save(p, 8*vg.Inch, 6*vg.Inch, HistogramFile(column))
}

// HistogramFile is the file stem Histogram writes for column.
func HistogramFile(column string) string { return Slug(column) + "_distribution" }
