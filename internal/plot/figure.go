// Package plot builds Plotly figure descriptions for the dashboard charts.
// Builders are pure: they never mutate their input and the result can be
// handed to Plotly.newPlot as is.
package plot

// Figure is the (data, layout, config) triple passed to Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Config Config  `json:"config"`
}

type Trace struct {
	Type        string    `json:"type"`
	Name        string    `json:"name,omitempty"`
	Orientation string    `json:"orientation,omitempty"`
	X           []float64 `json:"x,omitempty"`
	Y           []string  `json:"y,omitempty"`
	Text        []float64 `json:"text,omitempty"`

	// pie only
	Labels         []string  `json:"labels,omitempty"`
	Values         []float64 `json:"values,omitempty"`
	Hole           float64   `json:"hole,omitempty"`
	TextInfo       string    `json:"textinfo,omitempty"`
	TextPosition   string    `json:"textposition,omitempty"`
	InsideTextFont *Font     `json:"insidetextfont,omitempty"`
	Sort           *bool     `json:"sort,omitempty"`

	Marker        Marker `json:"marker"`
	HoverTemplate string `json:"hovertemplate,omitempty"`
}

type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	Color  string `json:"color,omitempty"`
	Size   int    `json:"size,omitempty"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

type Axis struct {
	Range      []float64 `json:"range,omitempty"`
	TickVals   []float64 `json:"tickvals,omitempty"`
	TickText   []string  `json:"ticktext,omitempty"`
	Title      string    `json:"title,omitempty"`
	AutoMargin *bool     `json:"automargin,omitempty"`
}

type Legend struct {
	Orientation string   `json:"orientation,omitempty"`
	X           *float64 `json:"x,omitempty"`
	XAnchor     string   `json:"xanchor,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	YAnchor     string   `json:"yanchor,omitempty"`
}

type Layout struct {
	Margin       Margin  `json:"margin"`
	PaperBGColor string  `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string  `json:"plot_bgcolor,omitempty"`
	Font         Font    `json:"font"`
	BarMode      string  `json:"barmode,omitempty"`
	XAxis        *Axis   `json:"xaxis,omitempty"`
	YAxis        *Axis   `json:"yaxis,omitempty"`
	Legend       *Legend `json:"legend,omitempty"`
}

type Config struct {
	DisplayModeBar bool `json:"displayModeBar"`
	Responsive     bool `json:"responsive"`
}

// DefaultConfig hides the mode bar and lets the chart follow its container.
func DefaultConfig() Config {
	return Config{DisplayModeBar: false, Responsive: true}
}

// BaseLayout is shared by every chart; builders override the margin and
// add axes or legends.
func BaseLayout() Layout {
	return Layout{
		Margin:       Margin{L: 120, R: 40, B: 40, T: 40},
		PaperBGColor: "rgba(0,0,0,0)",
		PlotBGColor:  "rgba(0,0,0,0)",
		Font: Font{
			Family: "Roboto, sans-serif",
			Color:  "#333",
		},
	}
}

func ptr[T any](v T) *T { return &v }
