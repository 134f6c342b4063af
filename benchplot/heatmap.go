package benchplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// matrixGrid lays a correlation matrix out as a GridXYZ. Grid row 0 is the
// bottom of the plot, so matrix rows are flipped to keep the first column at
// the top.
type matrixGrid struct {
	m summary.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g matrixGrid) Z(c, r int) float64 {
	return g.m.Values[len(g.m.Columns)-1-r][c]
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

// CorrelationChart draws m as an annotated heatmap on a blue-white-red scale
// over [-1, 1]. NaN cells are grey and left blank.
func CorrelationChart(m summary.Matrix, name string) (*Chart, error) {
	n := len(m.Columns)
	if n == 0 {
		return nil, ErrNoRows
	}
	grid := matrixGrid{m: m}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = summary.CorrelationTitle
	p.Add(hm)

	var (
		xys    plotter.XYs
		labels []string
	)
	for r := range n {
		for c := range n {
			v := grid.Z(c, r)
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels = append(labels, fmt.Sprintf("%.2f", v))
		}
	}
	if len(xys) > 0 {
		annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("failed to annotate heatmap: %w", err)
		}
		for i := range annotations.TextStyle {
			annotations.TextStyle[i].XAlign = text.XCenter
			annotations.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(annotations)
	}

	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i, col := range m.Columns {
		xTicks[i] = plot.Tick{Value: float64(i), Label: col}
		yTicks[i] = plot.Tick{Value: float64(n - 1 - i), Label: col}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5

	return &Chart{
		Name:   name,
		Plots:  []*plot.Plot{p},
		Width:  10 * vg.Inch,
		Height: 8 * vg.Inch,
	}, nil
}
