package api

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"territorio/internal/dashboard"
	"territorio/internal/engine"
	"territorio/web"
)

type Handler struct {
	data  atomic.Pointer[engine.Dataset]
	pages *template.Template
	log   logrus.FieldLogger
}

// NewHandler serves data, which may be nil while the ETL is running;
// data endpoints answer 503 until SetData is called.
func NewHandler(data *engine.Dataset, log logrus.FieldLogger) (*Handler, error) {
	pages, err := web.Templates()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Handler{pages: pages, log: log}
	if data != nil {
		h.data.Store(data)
	}
	return h, nil
}

// SetData swaps in a freshly aggregated dataset.
func (h *Handler) SetData(data *engine.Dataset) {
	h.data.Store(data)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)
	e.StaticFS("/static", web.StaticFS())

	api := e.Group("/api")
	api.GET("/regions", h.GetRegions)
	api.GET("/data/:region", h.GetData)
	api.GET("/view/:region", h.GetView)
}

// --- HANDLERS ---

func (h *Handler) dataset() (*engine.Dataset, error) {
	data := h.data.Load()
	if data == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")
	}
	return data, nil
}

// regionParam returns the decoded region. echo routes on the escaped path,
// and so leaves params escaped, only when the request carries a RawPath.
func regionParam(c echo.Context) string {
	region := c.Param("region")
	if c.Request().URL.RawPath == "" {
		return region
	}
	if unescaped, err := url.PathUnescape(region); err == nil {
		return unescaped
	}
	return region
}

// Index renders the page with the region selector pre-populated.
func (h *Handler) Index(c echo.Context) error {
	var regions []string
	if data := h.data.Load(); data != nil {
		regions = data.Regions()
	}

	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, "index.html", map[string]any{"Regions": regions}); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *Handler) Health(c echo.Context) error {
	status := "loading"
	if h.data.Load() != nil {
		status = "ready"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

// GetRegions returns the region names in alphabetical order.
func (h *Handler) GetRegions(c echo.Context) error {
	data, err := h.dataset()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data.Regions())
}

// GetData returns the raw dashboard payload of one region.
func (h *Handler) GetData(c echo.Context) error {
	data, err := h.dataset()
	if err != nil {
		return err
	}
	region := regionParam(c)
	p, ok := data.Payload(region)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown region: "+region)
	}
	return c.JSON(http.StatusOK, p)
}

// GetView runs a refresh cycle server-side and returns the painted page:
// KPI texts plus the three figures ready for Plotly.newPlot.
func (h *Handler) GetView(c echo.Context) error {
	data, err := h.dataset()
	if err != nil {
		return err
	}
	region := regionParam(c)

	page := dashboard.NewPage()
	ctrl := dashboard.NewController(data, page, h.log)
	err = ctrl.Refresh(c.Request().Context(), region)

	var renderErr *dashboard.RenderError
	switch {
	case errors.Is(err, engine.ErrUnknownRegion):
		return echo.NewHTTPError(http.StatusNotFound, "unknown region: "+region)
	case err != nil && !errors.As(err, &renderErr):
		return err
	}
	return c.JSON(http.StatusOK, page.Snapshot())
}
