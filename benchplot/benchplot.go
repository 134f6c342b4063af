// Package benchplot draws the static charts of a summary with gonum/plot.
package benchplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArchitYad/Non-block-io-vs-block-io/dstat"
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/ArchitYad/Non-block-io-vs-block-io/wrk"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	requestsColor = color.RGBA{R: 0, G: 128, B: 255, A: 153}
	latencyColor  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Chart is one output file: plots stacked top to bottom on a shared canvas,
// their axes aligned.
type Chart struct {
	Name   string
	Plots  []*plot.Plot
	Width  vg.Length
	Height vg.Length
}

// WriteTo draws the chart in format (png, svg, pdf, ...) to w.
func (c *Chart) WriteTo(w io.Writer, format string) error {
	canvas, err := draw.NewFormattedCanvas(c.Width, c.Height, strings.ToLower(format))
	if err != nil {
		return err
	}

	grid := make([][]*plot.Plot, len(c.Plots))
	for i, p := range c.Plots {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(c.Plots),
		Cols:      1,
		PadY:      vg.Points(12),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(12),
	}
	canvases := plot.Align(grid, tiles, draw.New(canvas))
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	_, err = canvas.WriteTo(w)
	return err
}

// Save writes the chart to dir/<name>.<format> and returns the path.
func (c *Chart) Save(dir, format string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, c.Name+"."+strings.ToLower(format))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := c.WriteTo(f, format); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, f.Close()
}

// zeroNaN replaces missing cells, gonum/plot refuses NaN values.
func zeroNaN(vs []float64) plotter.Values {
	out := make(plotter.Values, len(vs))
	for i, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

// ErrNoRows is returned when asked to chart an empty table.
var ErrNoRows = errors.New("benchplot: no rows to plot")

// nominalX labels the cases along x, leaving half a slot on either side.
func nominalX(p *plot.Plot, labels []string) {
	p.NominalX(labels...)
	p.X.Min = -0.5
	p.X.Max = float64(len(labels)) - 0.5
}

// WrkChart shows requests/sec bars over an average latency line, one
// position per case.
func WrkChart(t *summary.Table, name, title string) (*Chart, error) {
	if t.Len() == 0 {
		return nil, ErrNoRows
	}
	labels := t.Labels()

	top := plot.New()
	top.Title.Text = title
	top.Y.Label.Text = "Requests/sec"
	top.Y.Label.TextStyle.Color = color.RGBA{B: 255, A: 255}
	top.Y.Min = 0

	bar, err := plotter.NewBarChart(zeroNaN(t.Column(wrk.ColRequestsPerSec)), vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart: %w", err)
	}
	bar.LineStyle.Width = vg.Length(0)
	bar.Color = requestsColor
	top.Add(bar)
	top.Legend.Add("Requests/sec", bar)
	top.Legend.Top = true
	nominalX(top, labels)

	bottom := plot.New()
	bottom.Y.Label.Text = "Latency (ms)"
	bottom.Y.Label.TextStyle.Color = latencyColor

	var pts plotter.XYs
	for i, v := range t.Column(wrk.ColAvgLatency) {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: v})
	}
	if len(pts) > 0 {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create latency line: %w", err)
		}
		line.Color = latencyColor
		points.Color = latencyColor
		points.Shape = draw.CircleGlyph{}
		bottom.Add(line, points)
		bottom.Legend.Add("Latency (ms)", line, points)
		bottom.Legend.Top = true
	}
	nominalX(bottom, labels)

	return &Chart{
		Name:   name,
		Plots:  []*plot.Plot{top, bottom},
		Width:  10 * vg.Inch,
		Height: 7 * vg.Inch,
	}, nil
}

// DstatChart groups one bar per dstat metric under every case.
func DstatChart(t *summary.Table, name, title string) (*Chart, error) {
	if t.Len() == 0 {
		return nil, ErrNoRows
	}
	metrics := dstat.DefaultColumns

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Average Value"
	p.Add(plotter.NewGrid())

	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Set2", len(metrics))
	if err != nil {
		return nil, err
	}
	colors := palette.Colors()

	barWidth := vg.Points(14)
	groupWidth := barWidth * vg.Length(len(metrics)-1)

	for i, metric := range metrics {
		bar, err := plotter.NewBarChart(zeroNaN(t.Column(metric)), barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s bars: %w", metric, err)
		}
		bar.LineStyle.Width = vg.Length(0)
		bar.Color = colors[i]
		bar.Offset = barWidth*vg.Length(i) - groupWidth/2

		p.Add(bar)
		p.Legend.Add(metric, bar)
	}
	p.Legend.Top = true
	nominalX(p, t.Labels())

	return &Chart{
		Name:   name,
		Plots:  []*plot.Plot{p},
		Width:  12 * vg.Inch,
		Height: 6 * vg.Inch,
	}, nil
}
