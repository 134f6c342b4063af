// Package dashboard serves the benchmark summary as interactive echarts
// pages.
package dashboard

import (
	"bytes"
	"html/template"
	"io"
	"math"
	"slices"

	"github.com/ArchitYad/Non-block-io-vs-block-io/dstat"
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/ArchitYad/Non-block-io-vs-block-io/wrk"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const Title = "wrk & dstat Performance Dashboard"

// coolwarm end points and midpoint.
var heatColors = []string{"#3b4cc0", "#dddddd", "#b40426"}

// echarts draws "-" as a gap; encoding/json cannot encode NaN.
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "1000px",
		Height:    "480px",
		Theme:     types.ThemeRoma,
	})
}

// wrkChart overlays the requests/sec bars with the latency line, drawn on a
// second y axis.
func wrkChart(s summary.Section) *charts.Bar {
	labels := s.Table.Labels()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(s.WrkTitle()),
		charts.WithTitleOpts(opts.Title{Title: s.WrkTitle(), Subtitle: s.Heading}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Requests/sec"}),
	)
	bar.ExtendYAxis(opts.YAxis{Name: "Latency (ms)", Position: "right"})

	reqs := make([]opts.BarData, 0, len(labels))
	for _, v := range s.Table.Column(wrk.ColRequestsPerSec) {
		reqs = append(reqs, opts.BarData{Value: cell(v)})
	}
	bar.SetXAxis(labels).AddSeries("Requests/sec", reqs,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "rgba(0,128,255,0.6)"}))

	lat := make([]opts.LineData, 0, len(labels))
	for _, v := range s.Table.Column(wrk.ColAvgLatency) {
		lat = append(lat, opts.LineData{Value: cell(v)})
	}
	line := charts.NewLine()
	line.SetXAxis(labels).AddSeries("Latency (ms)", lat,
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}))

	bar.Overlap(line)
	return bar
}

// dstatChart puts one bar series per dstat metric.
func dstatChart(s summary.Section) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(s.DstatTitle()),
		charts.WithTitleOpts(opts.Title{Title: s.DstatTitle(), Subtitle: s.Heading}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average Value"}),
	)
	bar.SetXAxis(s.Table.Labels())
	for _, metric := range dstat.DefaultColumns {
		data := make([]opts.BarData, 0, s.Table.Len())
		for _, v := range s.Table.Column(metric) {
			data = append(data, opts.BarData{Value: cell(v)})
		}
		bar.AddSeries(metric, data)
	}
	return bar
}

func correlationChart(m summary.Matrix) *charts.HeatMap {
	n := len(m.Columns)
	data := make([]opts.HeatMapData, 0, n*n)
	for i := range n {
		for j := range n {
			v := m.Values[i][j]
			if !math.IsNaN(v) {
				v = math.Round(v*100) / 100
			}
			// x is the column, y counts up from the bottom
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, n - 1 - i, cell(v)}})
		}
	}
	yLabels := make([]string, n)
	for i, c := range m.Columns {
		yLabels[n-1-i] = c
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: summary.CorrelationTitle,
			Width:     "1000px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{Title: summary.CorrelationTitle, Subtitle: summary.CorrelationHeading}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Columns}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.SetXAxis(m.Columns).AddSeries("correlation", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm
}

// NewPage lays out the charts of a view. full is the whole table, the
// correlation matrix is always computed over every case.
func NewPage(full *summary.Table, layout summary.Layout) *components.Page {
	page := components.NewPage()
	page.PageTitle = Title
	page.SetLayout(components.PageFlexLayout)

	for _, s := range layout.Sections {
		if s.Table.Len() == 0 {
			continue
		}
		page.AddCharts(wrkChart(s), dstatChart(s))
	}
	if layout.ShowsCorrelation(full) {
		page.AddCharts(correlationChart(full.Correlation()))
	}
	return page
}

type viewOption struct {
	Slug     string
	Name     string
	Selected bool
}

var headerTmpl = template.Must(template.New("header").Parse(`
<div style="font-family: sans-serif; margin: 16px auto; max-width: 1000px;">
  <h1>{{.Title}}</h1>
  <form method="get" action="/">
    <label for="view">Select Test Type</label>
    <select id="view" name="view" onchange="this.form.submit()">
      {{- range .Options}}
      <option value="{{.Slug}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>
      {{- end}}
    </select>
    <noscript><button type="submit">Show</button></noscript>
  </form>
  {{- if .Empty}}
  <p>No benchmark artifacts found in <code>{{.Dir}}</code>.</p>
  {{- end}}
  {{- if .Missing}}
  <p>Missing cases: {{range $i, $m := .Missing}}{{if $i}}, {{end}}{{$m}}{{end}}</p>
  {{- end}}
</div>
`))

type header struct {
	Title   string
	Dir     string
	Options []viewOption
	Empty   bool
	Missing []string
}

// renderPage writes the page with the view selector on top.
func renderPage(w io.Writer, page *components.Page, h header) error {
	var chartsHTML bytes.Buffer
	if err := page.Render(&chartsHTML); err != nil {
		return err
	}
	var headerHTML bytes.Buffer
	if err := headerTmpl.Execute(&headerHTML, h); err != nil {
		return err
	}

	out := chartsHTML.Bytes()
	if i := bytes.Index(out, []byte("<body>")); i >= 0 {
		i += len("<body>")
		out = slices.Insert(out, i, headerHTML.Bytes()...)
	} else {
		out = append(headerHTML.Bytes(), out...)
	}
	_, err := w.Write(out)
	return err
}

func viewOptions(selected summary.View) []viewOption {
	out := make([]viewOption, 0, len(summary.Views))
	for _, v := range summary.Views {
		out = append(out, viewOption{Slug: v.Slug(), Name: v.String(), Selected: v == selected})
	}
	return out
}
