package dashboard

import (
	"sync"

	"territorio/internal/plot"
)

// KPIField names one of the three summary counters by its element id.
type KPIField string

const (
	KPIPoblacion KPIField = "kpi-poblacion"
	KPIViviendas KPIField = "kpi-viviendas"
	KPINegocios  KPIField = "kpi-negocios"
)

// KPIFields is the display order of the counters.
var KPIFields = []KPIField{KPIPoblacion, KPIViviendas, KPINegocios}

// Slot names a chart mount point by its element id.
type Slot string

const (
	SlotActividades Slot = "chart-actividades"
	SlotEducacion   Slot = "chart-educacion"
	SlotPiramide    Slot = "chart-piramide"
)

const (
	TextLoading = "Cargando..."
	TextError   = "Error"
	TextEmpty   = "0"
)

// View is the surface a refresh paints on. Implementations must be safe
// for use from the goroutine running the refresh.
type View interface {
	SetTitle(region string)
	SetKPI(field KPIField, text string)
	Render(slot Slot, fig *plot.Figure) error
	SetFailure(kind FailureKind)
}

// Snapshot is a copy of a Page's state.
type Snapshot struct {
	Title   string                `json:"title"`
	KPIs    map[KPIField]string   `json:"kpis"`
	Charts  map[Slot]*plot.Figure `json:"charts"`
	Failure FailureKind           `json:"failure,omitempty"`
}

// Page is an in-memory View.
type Page struct {
	mu      sync.Mutex
	title   string
	kpis    map[KPIField]string
	charts  map[Slot]*plot.Figure
	failure FailureKind
}

func NewPage() *Page {
	return &Page{
		kpis:   make(map[KPIField]string, len(KPIFields)),
		charts: make(map[Slot]*plot.Figure, 3),
	}
}

func (p *Page) SetTitle(region string) {
	p.mu.Lock()
	p.title = region
	p.mu.Unlock()
}

func (p *Page) SetKPI(field KPIField, text string) {
	p.mu.Lock()
	p.kpis[field] = text
	p.mu.Unlock()
}

func (p *Page) Render(slot Slot, fig *plot.Figure) error {
	p.mu.Lock()
	p.charts[slot] = fig
	p.mu.Unlock()
	return nil
}

func (p *Page) SetFailure(kind FailureKind) {
	p.mu.Lock()
	p.failure = kind
	p.mu.Unlock()
}

func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		Title:   p.title,
		KPIs:    make(map[KPIField]string, len(p.kpis)),
		Charts:  make(map[Slot]*plot.Figure, len(p.charts)),
		Failure: p.failure,
	}
	for k, v := range p.kpis {
		s.KPIs[k] = v
	}
	for k, v := range p.charts {
		s.Charts[k] = v
	}
	return s
}
