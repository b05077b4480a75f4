package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAggregate(t *testing.T) {
	// 1. Setup Mock Data
	// Census: two Colima blocks, one Sonora block.
	// Businesses: Colima has 3 kinds of activity, Sonora none,
	// Tlaxcala has businesses but no census rows.
	counts := make([][]int64, len(censusColumns))
	for i := range counts {
		counts[i] = []int64{1, 1, 1}
	}
	counts[colPoblacion] = []int64{1000000, 234567, 10}
	counts[colViviendas] = []int64{0, 0, 0}
	counts[colPrimariaIn] = []int64{5, 0, 0}
	counts[colPrimariaCo] = []int64{7, 0, 0}
	counts[colPosBasica] = []int64{10, 5, 0}
	counts[colAgeBands] = []int64{300, 200, 0}   // 0-2 male
	counts[colAgeBands+1] = []int64{100, 50, 0}  // 0-2 female

	census := &CensusStore{
		RegionIDs:  []int32{0, 0, 1},
		RegionDict: []string{"Colima", "Sonora"},
		Counts:     counts,
	}

	long := strings.Repeat("x", 50)
	businesses := &BusinessStore{
		RegionIDs:    []int32{0, 0, 0, 0, 0, 0, 0, 1},
		ActivityIDs:  []int32{0, 0, 1, 2, 3, 4, 5, 0},
		RegionDict:   []string{"Colima", "Tlaxcala"},
		ActivityDict: []string{"Abarrotes", long, "Beta", "Alfa", "Gamma", "Delta"},
	}

	// 2. Run Aggregation
	data := Aggregate(census, businesses)

	// 3. Assertions
	regions := data.Regions()
	if len(regions) != 2 || regions[0] != "Colima" || regions[1] != "Sonora" {
		t.Fatalf("regions: got %v", regions)
	}

	colima, ok := data.Payload("Colima")
	if !ok {
		t.Fatal("Missing Colima payload")
	}

	// A. KPIs
	if got := colima.KPIs.PoblacionTotal.String(); got != "1,234,567" {
		t.Errorf("poblacion: got %q, want 1,234,567", got)
	}
	if got := colima.KPIs.ViviendasTotales.String(); got != "0" {
		t.Errorf("viviendas: got %q, want 0", got)
	}
	if got := colima.KPIs.NumeroNegocios.String(); got != "7" {
		t.Errorf("negocios: got %q, want 7", got)
	}

	// B. Activities: top 5, count desc then name, long names shortened
	acts := colima.ActividadesEconomicas
	if len(acts.Labels) != 5 {
		t.Fatalf("Expected 5 activities, got %d: %v", len(acts.Labels), acts.Labels)
	}
	if acts.Labels[0] != "Abarrotes" || acts.Values[0] != 2 {
		t.Errorf("top activity: got %s=%v", acts.Labels[0], acts.Values[0])
	}
	wantOrder := []string{"Abarrotes", "Alfa", "Beta", "Delta", "Gamma"}
	for i, w := range wantOrder {
		if acts.Labels[i] != w {
			t.Errorf("activity %d: got %q, want %q", i, acts.Labels[i], w)
		}
	}

	// C. Education
	edu := colima.PerfilEducativo
	if len(edu.Labels) != 5 || edu.Labels[3] != "Media Superior" {
		t.Errorf("education labels: got %v", edu.Labels)
	}
	if edu.Values[1] != 12 {
		t.Errorf("primaria: got %v, want 12", edu.Values[1])
	}
	if edu.Values[3] != 7.5 || edu.Values[4] != 7.5 {
		t.Errorf("pos basica split: got %v %v, want 7.5 7.5", edu.Values[3], edu.Values[4])
	}

	// D. Pyramid
	py := colima.PiramidePoblacional
	if py.Labels[0] != "0-2" || py.Labels[6] != "60+" {
		t.Errorf("age bands: got %v", py.Labels)
	}
	if py.Hombres[0] != -500 || py.Mujeres[0] != 150 {
		t.Errorf("0-2: got %v / %v, want -500 / 150", py.Hombres[0], py.Mujeres[0])
	}
	if err := colima.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// E. Region without businesses
	sonora, _ := data.Payload("Sonora")
	if sonora.KPIs.NumeroNegocios.String() != "0" || len(sonora.ActividadesEconomicas.Labels) != 0 {
		t.Errorf("Sonora businesses: %+v", sonora.ActividadesEconomicas)
	}
	if sonora.PiramidePoblacional.Hombres[0] != 0 {
		t.Errorf("zero male count: got %v", sonora.PiramidePoblacional.Hombres[0])
	}

	// F. Businesses without census rows are not exposed
	if _, ok := data.Payload("Tlaxcala"); ok {
		t.Error("Tlaxcala must not have a payload")
	}
}

func TestShortenLabel(t *testing.T) {
	long := strings.Repeat("á", 46)
	got := shortenLabel(long)
	if got != strings.Repeat("á", 42)+"..." {
		t.Errorf("shortenLabel: got %q", got)
	}
	exact := strings.Repeat("b", 45)
	if shortenLabel(exact) != exact {
		t.Error("45 characters must be kept")
	}
}

func TestDatasetFetch(t *testing.T) {
	census := &CensusStore{
		RegionIDs:  []int32{0},
		RegionDict: []string{"Colima"},
		Counts:     make([][]int64, len(censusColumns)),
	}
	for i := range census.Counts {
		census.Counts[i] = []int64{0}
	}
	data := Aggregate(census, nil)

	if _, err := data.Fetch(context.Background(), "Colima"); err != nil {
		t.Errorf("Fetch Colima: %v", err)
	}
	if _, err := data.Fetch(context.Background(), "Atlantis"); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("Fetch Atlantis: got %v, want ErrUnknownRegion", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := data.Fetch(ctx, "Colima"); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled Fetch: got %v", err)
	}
}

func TestLoad(t *testing.T) {
	censusPath := writeTemp(t, "censo.csv", censusHeader()+"\n"+
		censusRow("Colima", "2", map[string]string{"POBTOT": "1500"})+"\n")
	denuePath := writeTemp(t, "denue.csv", "id,entidad,nombre_act\n1,Colima,Abarrotes\n2,Colima,Abarrotes\n")

	data, err := Load(context.Background(), censusPath, denuePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, ok := data.Payload("Colima")
	if !ok {
		t.Fatal("Missing Colima")
	}
	if p.KPIs.PoblacionTotal.String() != "1,500" || p.KPIs.NumeroNegocios.String() != "2" {
		t.Errorf("kpis: %s / %s", p.KPIs.PoblacionTotal, p.KPIs.NumeroNegocios)
	}

	if _, err := Load(context.Background(), censusPath, "/does/not/exist.csv"); err == nil {
		t.Error("Expected error for missing business file")
	}
}

func TestLoadCanceled(t *testing.T) {
	censusPath := writeTemp(t, "censo.csv", censusHeader()+"\n"+
		censusRow("Colima", "2", map[string]string{"POBTOT": "1500"})+"\n")
	denuePath := writeTemp(t, "denue.csv", "id,entidad,nombre_act\n1,Colima,Abarrotes\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, censusPath, denuePath); !errors.Is(err, context.Canceled) {
		t.Errorf("Load: got %v, want context.Canceled", err)
	}
	if _, err := LoadCensus(ctx, censusPath); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadCensus: got %v, want context.Canceled", err)
	}
	if _, err := LoadBusinesses(ctx, denuePath); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadBusinesses: got %v, want context.Canceled", err)
	}
}
