package models

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

var ErrLengthMismatch = errors.New("dataset length mismatch")

// Payload is the body of GET /api/data/{region}.
type Payload struct {
	KPIs                  KPIs    `json:"kpis"`
	ActividadesEconomicas Series  `json:"actividades_economicas"`
	PerfilEducativo       Series  `json:"perfil_educativo"`
	PiramidePoblacional   Pyramid `json:"piramide_poblacional"`
}

type KPIs struct {
	PoblacionTotal   KPIValue `json:"poblacion_total"`
	ViviendasTotales KPIValue `json:"viviendas_totales"`
	NumeroNegocios   KPIValue `json:"numero_negocios"`
}

// Series pairs labels and values by index.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Pyramid holds age bands with male and female counts. Male counts may
// arrive already negated.
type Pyramid struct {
	Labels  []string  `json:"labels"`
	Hombres []float64 `json:"hombres"`
	Mujeres []float64 `json:"mujeres"`
}

// Validate checks that every dataset is index aligned.
func (p *Payload) Validate() error {
	if len(p.ActividadesEconomicas.Labels) != len(p.ActividadesEconomicas.Values) {
		return fmt.Errorf("actividades_economicas: %d labels, %d values: %w",
			len(p.ActividadesEconomicas.Labels), len(p.ActividadesEconomicas.Values), ErrLengthMismatch)
	}
	if len(p.PerfilEducativo.Labels) != len(p.PerfilEducativo.Values) {
		return fmt.Errorf("perfil_educativo: %d labels, %d values: %w",
			len(p.PerfilEducativo.Labels), len(p.PerfilEducativo.Values), ErrLengthMismatch)
	}
	py := p.PiramidePoblacional
	if len(py.Labels) != len(py.Hombres) || len(py.Labels) != len(py.Mujeres) {
		return fmt.Errorf("piramide_poblacional: %d labels, %d hombres, %d mujeres: %w",
			len(py.Labels), len(py.Hombres), len(py.Mujeres), ErrLengthMismatch)
	}
	return nil
}

// KPIValue is a loosely typed scalar. The backend sends preformatted
// strings but numbers, booleans and null are accepted too.
type KPIValue struct {
	raw    json.RawMessage
	text   string
	truthy bool
}

// Text builds a string KPI.
func Text(s string) KPIValue {
	raw, _ := json.Marshal(s)
	return KPIValue{raw: raw, text: s, truthy: s != ""}
}

// Number builds a numeric KPI.
func Number(f float64) KPIValue {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return KPIValue{raw: json.RawMessage(s), text: s, truthy: f != 0}
}

// String returns the verbatim display text.
func (v KPIValue) String() string { return v.text }

// Truthy reports whether the value counts as present: zero, the empty
// string, false, null and a missing field do not.
func (v KPIValue) Truthy() bool { return v.truthy }

func (v KPIValue) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *KPIValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*v = KPIValue{raw: append(json.RawMessage(nil), b...)}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 'n':
		return nil
	case 't', 'f':
		var x bool
		if err := json.Unmarshal(b, &x); err != nil {
			return err
		}
		v.text, v.truthy = strconv.FormatBool(x), x
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v.text, v.truthy = s, s != ""
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("kpi value %s: %w", b, err)
		}
		v.text, v.truthy = strconv.FormatFloat(f, 'f', -1, 64), f != 0
	}
	return nil
}
