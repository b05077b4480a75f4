package plot

import (
	"encoding/json"
	"strings"
	"testing"

	"territorio/internal/models"
)

func TestBarReversesCategories(t *testing.T) {
	in := models.Series{Labels: []string{"A", "B"}, Values: []float64{1, 2}}
	fig := Bar(in)

	if len(fig.Data) != 1 {
		t.Fatalf("Expected 1 trace, got %d", len(fig.Data))
	}
	tr := fig.Data[0]
	if tr.Y[0] != "B" || tr.Y[1] != "A" {
		t.Errorf("y: got %v, want [B A]", tr.Y)
	}
	if tr.X[0] != 2 || tr.X[1] != 1 {
		t.Errorf("x: got %v, want [2 1]", tr.X)
	}
	if tr.Orientation != "h" {
		t.Errorf("orientation: got %q, want h", tr.Orientation)
	}
	if !strings.Contains(tr.HoverTemplate, "%{x:,.0f}") {
		t.Errorf("hovertemplate lacks grouped count: %q", tr.HoverTemplate)
	}
	if fig.Layout.Margin.L != 250 {
		t.Errorf("left margin: got %d, want 250", fig.Layout.Margin.L)
	}

	// input untouched
	if in.Labels[0] != "A" || in.Values[0] != 1 {
		t.Errorf("input mutated: %+v", in)
	}
}

func TestDonutKeepsOrder(t *testing.T) {
	fig := Donut(models.Series{Labels: []string{"X", "Y"}, Values: []float64{90, 10}})
	tr := fig.Data[0]

	if tr.Labels[0] != "X" || tr.Values[0] != 90 {
		t.Errorf("first segment: got %s=%v, want X=90", tr.Labels[0], tr.Values[0])
	}
	if tr.Sort == nil || *tr.Sort {
		t.Error("sort must be explicitly false")
	}
	if tr.Hole != 0.6 {
		t.Errorf("hole: got %v, want 0.6", tr.Hole)
	}
	if tr.TextInfo != "percent" || tr.TextPosition != "inside" {
		t.Errorf("text: got %q/%q", tr.TextInfo, tr.TextPosition)
	}
	if fig.Layout.Legend == nil || fig.Layout.Legend.Orientation != "h" {
		t.Error("legend must be horizontal")
	}

	raw, err := json.Marshal(fig)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"sort":false`) {
		t.Errorf("sort:false missing from %s", raw)
	}
}

func TestPyramidSymmetricAxis(t *testing.T) {
	fig := Pyramid(models.Pyramid{
		Labels:  []string{"0-2", "3-5"},
		Hombres: []float64{-5000, -3000},
		Mujeres: []float64{4000, 2000},
	})

	x := fig.Layout.XAxis
	if x.Range[0] != -5000 || x.Range[1] != 5000 {
		t.Errorf("range: got %v, want [-5000 5000]", x.Range)
	}

	male := fig.Data[0]
	if male.X[0] != -5000 || male.X[1] != -3000 {
		t.Errorf("male plotted: got %v", male.X)
	}
	if male.Text[0] != 5000 || male.Text[1] != 3000 {
		t.Errorf("male hover: got %v, want [5000 3000]", male.Text)
	}

	female := fig.Data[1]
	if female.X[0] != 4000 || female.X[1] != 2000 {
		t.Errorf("female plotted: got %v", female.X)
	}
	if fig.Layout.BarMode != "relative" {
		t.Errorf("barmode: got %q", fig.Layout.BarMode)
	}
}

func TestPyramidPositiveMaleInput(t *testing.T) {
	fig := Pyramid(models.Pyramid{
		Labels:  []string{"60+"},
		Hombres: []float64{1200},
		Mujeres: []float64{900},
	})
	if fig.Data[0].X[0] != -1200 {
		t.Errorf("male plotted: got %v, want -1200", fig.Data[0].X[0])
	}
	if fig.Data[0].Text[0] != 1200 {
		t.Errorf("male hover: got %v, want 1200", fig.Data[0].Text[0])
	}
	if fig.Layout.XAxis.Range[1] != 1200 {
		t.Errorf("range: got %v", fig.Layout.XAxis.Range)
	}
}

func TestPyramidAllZero(t *testing.T) {
	fig := Pyramid(models.Pyramid{
		Labels:  []string{"0-2", "3-5"},
		Hombres: []float64{0, 0},
		Mujeres: []float64{0, 0},
	})
	x := fig.Layout.XAxis
	if len(x.TickVals) != 1 || x.TickVals[0] != 0 || x.TickText[0] != "0k" {
		t.Errorf("ticks: got %v %v, want [0] [0k]", x.TickVals, x.TickText)
	}
	if x.Range[0] != -1 || x.Range[1] != 1 {
		t.Errorf("range: got %v, want [-1 1]", x.Range)
	}
}

func TestTicks(t *testing.T) {
	vals, text := Ticks(5000)
	if len(vals) != 7 {
		t.Fatalf("Expected 7 ticks, got %d: %v", len(vals), vals)
	}
	if vals[0] != -5000 || vals[6] != 5000 {
		t.Errorf("ends: got %v .. %v", vals[0], vals[6])
	}
	want := []string{"5k", "3k", "2k", "0k", "2k", "3k", "5k"}
	for i := range want {
		if text[i] != want[i] {
			t.Errorf("tick %d: got %q, want %q", i, text[i], want[i])
		}
	}

	// the last tick is exact even when the stepped sequence drifts
	vals, _ = Ticks(0.7)
	if vals[len(vals)-1] != 0.7 {
		t.Errorf("last tick: got %v, want 0.7", vals[len(vals)-1])
	}
}

func TestTickLabelRounding(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{-12000, "12k"},
		{-2500, "3k"},
		{2500, "3k"},
		{1500, "2k"},
		{499, "0k"},
		{-499.9, "0k"},
		{0, "0k"},
	}
	for _, c := range cases {
		if got := TickLabel(c.in); got != c.want {
			t.Errorf("TickLabel(%v): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAxisRange(t *testing.T) {
	cases := []struct {
		max  float64
		want []float64
	}{
		{5000, []float64{-5000, 5000}},
		{0, []float64{-1, 1}},
		{-3, []float64{-1, 1}},
	}
	for _, c := range cases {
		got := AxisRange(c.max)
		if len(got) != 2 || got[0] != c.want[0] || got[1] != c.want[1] {
			t.Errorf("AxisRange(%v): got %v, want %v", c.max, got, c.want)
		}
	}
}
