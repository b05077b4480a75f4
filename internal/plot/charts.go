package plot

import (
	"fmt"
	"math"

	"territorio/internal/models"
)

var donutColors = []string{"#ff6384", "#36a2eb", "#ffce56", "#4bc0c0", "#9966ff"}

// Bar renders the economic activity chart. The input order is reversed so
// the first category ends up on top of the horizontal bars.
func Bar(s models.Series) *Figure {
	n := len(s.Labels)
	labels := make([]string, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		labels[n-1-i] = s.Labels[i]
		values[n-1-i] = s.Values[i]
	}

	layout := BaseLayout()
	layout.Margin = Margin{L: 250, R: 20, B: 40, T: 40}
	layout.YAxis = &Axis{AutoMargin: ptr(false)}

	return &Figure{
		Data: []Trace{{
			Type:          "bar",
			Orientation:   "h",
			X:             values,
			Y:             labels,
			Marker:        Marker{Color: "#28a745"},
			HoverTemplate: "<b>%{y}</b><br>Negocios: %{x:,.0f}<extra></extra>",
		}},
		Layout: layout,
		Config: DefaultConfig(),
	}
}

// Donut renders the educational profile. Segment order is the input order;
// Plotly's value sorting is switched off explicitly.
func Donut(s models.Series) *Figure {
	layout := BaseLayout()
	layout.Margin = Margin{L: 40, R: 40, B: 40, T: 40}
	layout.Legend = &Legend{Orientation: "h", Y: ptr(-0.2), YAnchor: "top"}

	return &Figure{
		Data: []Trace{{
			Type:           "pie",
			Labels:         append([]string(nil), s.Labels...),
			Values:         append([]float64(nil), s.Values...),
			Hole:           0.6,
			Marker:         Marker{Colors: donutColors},
			TextInfo:       "percent",
			TextPosition:   "inside",
			InsideTextFont: &Font{Color: "#fff", Size: 14},
			HoverTemplate:  "<b>%{label}</b><br>Población: %{value:,.0f}<br>%{percent}<extra></extra>",
			Sort:           ptr(false),
		}},
		Layout: layout,
		Config: DefaultConfig(),
	}
}

// Pyramid renders the age/sex pyramid on a symmetric axis. Male bars extend
// left while their hover text keeps the absolute count.
func Pyramid(p models.Pyramid) *Figure {
	n := len(p.Labels)
	male := make([]float64, n)
	maleText := make([]float64, n)
	female := make([]float64, n)

	var maxVal float64
	for i := 0; i < n; i++ {
		abs := math.Abs(p.Hombres[i])
		male[i] = -abs
		maleText[i] = abs
		female[i] = p.Mujeres[i]
		maxVal = math.Max(maxVal, abs)
		maxVal = math.Max(maxVal, p.Mujeres[i])
	}

	vals, text := Ticks(maxVal)
	axisRange := AxisRange(maxVal)

	layout := BaseLayout()
	layout.BarMode = "relative"
	layout.XAxis = &Axis{
		Range:    axisRange,
		TickVals: vals,
		TickText: text,
		Title:    "Población",
	}
	layout.YAxis = &Axis{AutoMargin: ptr(true)}
	layout.Legend = &Legend{Orientation: "h", X: ptr(0.5), XAnchor: "center", Y: ptr(-0.2)}

	labels := append([]string(nil), p.Labels...)
	return &Figure{
		Data: []Trace{
			{
				Type:          "bar",
				Name:          "Hombres",
				Orientation:   "h",
				X:             male,
				Y:             labels,
				Text:          maleText,
				Marker:        Marker{Color: "#36a2eb"},
				HoverTemplate: "Población: %{text:,.0f}<extra></extra>",
			},
			{
				Type:          "bar",
				Name:          "Mujeres",
				Orientation:   "h",
				X:             female,
				Y:             labels,
				Marker:        Marker{Color: "#ff6384"},
				HoverTemplate: "Población: %{x:,.0f}<extra></extra>",
			},
		},
		Layout: layout,
		Config: DefaultConfig(),
	}
}

// AxisRange is the symmetric pyramid axis [-maxVal, maxVal], widened to
// [-1, 1] when there is nothing to plot.
func AxisRange(maxVal float64) []float64 {
	if !(maxVal > 0) || math.IsInf(maxVal, 0) {
		return []float64{-1, 1}
	}
	return []float64{-maxVal, maxVal}
}

// Ticks returns tick positions from -maxVal to +maxVal in thirds of maxVal,
// always ending exactly on +maxVal, with labels in rounded thousands.
// A zero (or negative) bound yields the single tick 0.
func Ticks(maxVal float64) ([]float64, []string) {
	if !(maxVal > 0) || math.IsInf(maxVal, 0) {
		return []float64{0}, []string{TickLabel(0)}
	}
	step := maxVal / 3
	vals := make([]float64, 0, 7)
	for i := 0; i < 6; i++ {
		vals = append(vals, -maxVal+float64(i)*step)
	}
	vals = append(vals, maxVal)

	text := make([]string, len(vals))
	for i, v := range vals {
		text[i] = TickLabel(v)
	}
	return vals, text
}

// TickLabel formats |v| in thousands, rounding half away from zero.
func TickLabel(v float64) string {
	return fmt.Sprintf("%.0fk", math.Round(math.Abs(v)/1000))
}
