package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/edaloom/internal/analysis"
)

// HeatmapFile is the stem of the correlation heatmap image.
const HeatmapFile = "correlation_heatmap"

// corrGrid adapts a CorrMatrix to plotter.GridXYZ. Row 0 of the matrix is
// drawn at the top.
type corrGrid struct{ m *analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int)   { return g.m.Dim(), g.m.Dim() }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(g.m.Dim()-1-r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// HeatmapPlot builds an annotated heatmap of m on a blue-red scale fixed to
// [-1, 1]. Undefined coefficients are grey and labelled NaN.
func HeatmapPlot(m *analysis.CorrMatrix) (*plot.Plot, error) {
	if m == nil || m.Dim() == 0 {
		return nil, fmt.Errorf("heatmap: correlation matrix has no numeric columns")
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	hm := plotter.NewHeatMap(corrGrid{m}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	n := m.Dim()
	pts := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pts = append(pts, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			if v := m.At(i, j); math.IsNaN(v) {
				labels = append(labels, "NaN")
			} else {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			}
		}
	}
	ann, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range ann.TextStyle {
		ann.TextStyle[i].XAlign = text.XCenter
		ann.TextStyle[i].YAlign = text.YCenter
	}

	xt := make([]plot.Tick, n)
	yt := make([]plot.Tick, n)
	for i, name := range m.Columns {
		xt[i] = plot.Tick{Value: float64(i), Label: name}
		yt[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}

	p := plot.New()
	p.Title.Text = "Correlation Heatmap"
	p.Add(hm, ann)
	p.X.Tick.Marker = plot.ConstantTicks(xt)
	p.Y.Tick.Marker = plot.ConstantTicks(yt)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
	return p, nil
}

// Heatmap renders m to OutDir/correlation_heatmap and returns the path.
func (r *Renderer) Heatmap(m *analysis.CorrMatrix) (string, error) {
	return r.HeatmapAs(m, HeatmapFile)
}

// HeatmapAs renders m to OutDir/name.
func (r *Renderer) HeatmapAs(m *analysis.CorrMatrix, name string) (string, error) {
	p, err := HeatmapPlot(m)
	if err != nil {
		return "", err
	}
	return r.save(p, 10*vg.Inch, 8*vg.Inch, name)
}
