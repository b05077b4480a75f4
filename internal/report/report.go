// Package report renders a region's dashboard payload as a standalone
// HTML page (ECharts), for sharing a snapshot without the live server.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"territorio/internal/models"
	"territorio/internal/plot"
)

const chartWidth = "900px"

// Render writes the three charts of p to w.
func Render(w io.Writer, region string, p *models.Payload) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("report %q: %w", region, err)
	}

	page := components.NewPage()
	page.PageTitle = "Dashboard de Análisis Territorial - " + region
	page.AddCharts(
		activitiesChart(region, p.ActividadesEconomicas),
		educationChart(p.PerfilEducativo),
		pyramidChart(p.PiramidePoblacional),
	)
	return page.Render(w)
}

func activitiesChart(region string, s models.Series) *charts.Bar {
	n := len(s.Labels)
	labels := make([]string, n)
	data := make([]opts.BarData, n)
	for i := 0; i < n; i++ {
		labels[n-1-i] = s.Labels[i]
		data[n-1-i] = opts.BarData{Value: s.Values[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth}),
		charts.WithTitleOpts(opts.Title{Title: "Actividades económicas dominantes", Subtitle: region}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithGridOpts(opts.Grid{Left: "35%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category"}),
	)
	bar.SetXAxis(labels).
		AddSeries("Negocios", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#28a745"})).
		XYReversal()
	return bar
}

func educationChart(s models.Series) *charts.Pie {
	data := make([]opts.PieData, len(s.Labels))
	for i, label := range s.Labels {
		data[i] = opts.PieData{Name: label, Value: s.Values[i]}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth}),
		charts.WithTitleOpts(opts.Title{Title: "Perfil educativo"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Formatter: "{b}: {c} ({d}%)"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Bottom: "0"}),
	)
	pie.AddSeries("Población", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "75%"}}),
		charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{d}%"}),
	)
	return pie
}

// pyramidTooltip and pyramidAxisLabel hide the sign used to draw the male
// side to the left.
var (
	pyramidTooltip   = opts.FuncOpts(`function (v) { return Math.abs(v).toLocaleString(); }`)
	pyramidAxisLabel = opts.FuncOpts(`function (v) { return Math.round(Math.abs(v) / 1000) + 'k'; }`)
)

func pyramidChart(p models.Pyramid) *charts.Bar {
	male := make([]opts.BarData, len(p.Labels))
	female := make([]opts.BarData, len(p.Labels))
	var maxVal float64
	for i := range p.Labels {
		abs := math.Abs(p.Hombres[i])
		male[i] = opts.BarData{Value: -abs}
		female[i] = opts.BarData{Value: p.Mujeres[i]}
		maxVal = math.Max(maxVal, math.Max(abs, p.Mujeres[i]))
	}
	axisRange := plot.AxisRange(maxVal)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth}),
		charts.WithTitleOpts(opts.Title{Title: "Pirámide poblacional"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis", ValueFormatter: pyramidTooltip}),
		charts.WithLegendOpts(opts.Legend{Show: true, Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:        "value",
			Name:        "Población",
			Min:         axisRange[0],
			Max:         axisRange[1],
			SplitNumber: 6,
			AxisLabel:   &opts.AxisLabel{Show: true, Formatter: pyramidAxisLabel},
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category"}),
	)
	bar.SetXAxis(p.Labels).
		AddSeries("Hombres", male, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#36a2eb"})).
		AddSeries("Mujeres", female, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff6384"})).
		SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	bar.XYReversal()
	return bar
}
