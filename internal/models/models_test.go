package models

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestKPIValueTruthiness(t *testing.T) {
	cases := []struct {
		raw    string
		text   string
		truthy bool
	}{
		{`"1,234"`, "1,234", true},
		{`""`, "", false},
		{`0`, "0", false},
		{`0.0`, "0", false},
		{`1500`, "1500", true},
		{`2.5`, "2.5", true},
		{`null`, "", false},
		{`false`, "false", false},
		{`true`, "true", true},
		{`"0"`, "0", true},
	}
	for _, c := range cases {
		var v KPIValue
		if err := json.Unmarshal([]byte(c.raw), &v); err != nil {
			t.Errorf("%s: %v", c.raw, err)
			continue
		}
		if v.String() != c.text || v.Truthy() != c.truthy {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", c.raw, v.String(), v.Truthy(), c.text, c.truthy)
		}
	}
}

func TestKPIValueMissingField(t *testing.T) {
	var k KPIs
	if err := json.Unmarshal([]byte(`{"poblacion_total": "10"}`), &k); err != nil {
		t.Fatal(err)
	}
	if k.ViviendasTotales.Truthy() || k.NumeroNegocios.Truthy() {
		t.Error("missing fields must be falsy")
	}
	if !k.PoblacionTotal.Truthy() {
		t.Error("poblacion_total must be truthy")
	}
}

func TestKPIValueRejectsObjects(t *testing.T) {
	var v KPIValue
	if err := json.Unmarshal([]byte(`{"a":1}`), &v); err == nil {
		t.Error("Expected error for object KPI")
	}
}

func TestValidate(t *testing.T) {
	ok := Payload{
		ActividadesEconomicas: Series{Labels: []string{"a"}, Values: []float64{1}},
		PiramidePoblacional:   Pyramid{Labels: []string{"0-2"}, Hombres: []float64{-1}, Mujeres: []float64{1}},
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := ok
	bad.PiramidePoblacional.Mujeres = nil
	if err := bad.Validate(); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Validate: got %v, want ErrLengthMismatch", err)
	}

	bad = ok
	bad.PerfilEducativo = Series{Labels: []string{"x", "y"}, Values: []float64{1}}
	if err := bad.Validate(); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Validate: got %v, want ErrLengthMismatch", err)
	}
}

func TestKPIValueMarshal(t *testing.T) {
	k := KPIs{PoblacionTotal: Text("1,000"), ViviendasTotales: Number(5)}
	raw, err := json.Marshal(k)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"poblacion_total":"1,000","viviendas_totales":5,"numero_negocios":null}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}
}
