// Package dashboard drives a region dashboard: it reacts to region
// selection, fetches the payload and paints KPIs and charts on a View.
//
// Every refresh gets a monotonically increasing token. Starting a refresh
// cancels the one in flight, and a response is applied only while its
// token is still the latest, so overlapping selections settle on the last
// region chosen.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"territorio/internal/models"
	"territorio/internal/plot"
)

// Source yields the payload for a region.
type Source interface {
	Fetch(ctx context.Context, region string) (*models.Payload, error)
}

type Controller struct {
	src  Source
	view View
	log  logrus.FieldLogger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc

	inflight sync.WaitGroup
}

func NewController(src Source, view View, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{src: src, view: view, log: log}
}

// Select is the selection listener. The loading state is painted before
// Select returns; the fetch and render continue in the background.
// An empty region is ignored.
func (c *Controller) Select(region string) {
	if region == "" {
		return
	}
	token, ctx, cancel := c.begin(context.Background(), region)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()
		c.complete(ctx, token, region)
	}()
}

// Wait blocks until every refresh started by Select has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Refresh runs one full refresh cycle for region and returns once it has
// settled. Fetch failures are painted on the view and returned; a refresh
// overtaken by a newer one returns ErrSuperseded without touching the view.
func (c *Controller) Refresh(ctx context.Context, region string) error {
	token, ctx, cancel := c.begin(ctx, region)
	defer cancel()
	return c.complete(ctx, token, region)
}

func (c *Controller) begin(parent context.Context, region string) (uint64, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	c.cancel = cancel

	c.view.SetTitle(region)
	for _, f := range KPIFields {
		c.view.SetKPI(f, TextLoading)
	}
	return c.seq, ctx, cancel
}

func (c *Controller) complete(ctx context.Context, token uint64, region string) error {
	payload, err := c.src.Fetch(ctx, region)

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.WithFields(logrus.Fields{"region": region, "token": token})
	if token != c.seq {
		log.Debug("dropping superseded refresh")
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		kind := Classify(err)
		for _, f := range KPIFields {
			c.view.SetKPI(f, TextError)
		}
		c.view.SetFailure(kind)
		if isCanceled(err) {
			log.WithError(err).Warn("refresh canceled")
		} else {
			log.WithError(err).WithField("kind", kind).Error("error updating dashboard")
		}
		return err
	}

	c.view.SetFailure(FailureNone)
	UpdateKPIs(c.view, payload.KPIs)
	return c.renderCharts(log, payload)
}

func (c *Controller) renderCharts(log logrus.FieldLogger, p *models.Payload) error {
	charts := []struct {
		slot  Slot
		build func() *plot.Figure
	}{
		{SlotActividades, func() *plot.Figure { return plot.Bar(p.ActividadesEconomicas) }},
		{SlotEducacion, func() *plot.Figure { return plot.Donut(p.PerfilEducativo) }},
		{SlotPiramide, func() *plot.Figure { return plot.Pyramid(p.PiramidePoblacional) }},
	}

	var failed map[Slot]error
	for _, ch := range charts {
		if err := c.render(ch.slot, ch.build); err != nil {
			log.WithError(err).WithField("slot", ch.slot).Error("chart render failed")
			if failed == nil {
				failed = make(map[Slot]error)
			}
			failed[ch.slot] = err
		}
	}
	if failed != nil {
		return &RenderError{Failed: failed}
	}
	return nil
}

// render isolates one chart so a failing builder or view does not stop the
// remaining charts.
func (c *Controller) render(slot Slot, build func() *plot.Figure) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.view.Render(slot, build())
}

// UpdateKPIs writes each counter verbatim, or "0" when it is missing,
// null, zero or empty.
func UpdateKPIs(v View, k models.KPIs) {
	v.SetKPI(KPIPoblacion, kpiText(k.PoblacionTotal))
	v.SetKPI(KPIViviendas, kpiText(k.ViviendasTotales))
	v.SetKPI(KPINegocios, kpiText(k.NumeroNegocios))
}

func kpiText(v models.KPIValue) string {
	if v.Truthy() {
		return v.String()
	}
	return TextEmpty
}
