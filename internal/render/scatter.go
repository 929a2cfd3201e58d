package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/edaloom/internal/table"
)

// ScatterPlot builds a scatter plot of y against x over the rows where both
// cells are present.
func ScatterPlot(t *table.Table, x, y string) (*plot.Plot, error) {
	xs, err := numeric(t, x)
	if err != nil {
		return nil, err
	}
	ys, err := numeric(t, y)
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("scatter %q vs %q: no rows with both values", x, y)
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter %q vs %q: %w", x, y, err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Color = color.RGBA{R: 76, G: 114, B: 176, A: 255}

	p := plot.New()
	p.Title.Text = Title(x) + " vs " + Title(y)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(s)
	return p, nil
}

func numeric(t *table.Table, name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	xs, ok := c.Floats()
	if !ok {
		return nil, &table.NonNumericColumnError{Column: name, Kind: c.Kind()}
	}
	return xs, nil
}

// Scatter renders y against x to OutDir/<x>_vs_<y>.
func (r *Renderer) Scatter(t *table.Table, x, y string) (string, error) {
	p, err := ScatterPlot(t, x, y)
	if err != nil {
		return "", err
	}
	return r.save(p, 8*vg.Inch, 6*vg.Inch, ScatterFile(x, y))
}

// ScatterFile is the file stem Scatter writes for y against x.
func ScatterFile(x, y string) string { return Slug(x) + "_vs_" + Slug(y) }
