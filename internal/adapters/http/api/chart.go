package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/metrics"
)

// ChartHandler serves the success-rate chart as geometry or SVG.
type ChartHandler struct {
	deps Dependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

type chartResponse struct {
	Sequence     uint64              `json:"sequence"`
	Domain       geometry.Domain     `json:"domain"`
	Viewport     geometry.Viewport   `json:"viewport"`
	Geometry     model.ChartGeometry `json:"geometry"`
	LinePathData string              `json:"line_path_data"`
	AreaPathData string              `json:"area_path_data"`
}

// HandleChart handles GET /chart requests. The optional width, height, min
// and max query parameters re-project the current history.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	g, d, v, seq, ok := h.chart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, chartResponse{
		Sequence:     seq,
		Domain:       d,
		Viewport:     v,
		Geometry:     g,
		LinePathData: geometry.PathData(g.LinePath),
		AreaPathData: geometry.AreaPathData(g),
	})
}

// HandleChartSVG handles GET /chart.svg requests with the same parameters.
func (h *ChartHandler) HandleChartSVG(w http.ResponseWriter, r *http.Request) {
	g, _, v, _, ok := h.chart(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := geometry.RenderSVG(w, g, v); err != nil {
		metrics.RecordErrorByComponent("api", "render_svg")
	}
}

func (h *ChartHandler) chart(w http.ResponseWriter, r *http.Request) (model.ChartGeometry, geometry.Domain, geometry.Viewport, uint64, bool) {
	if !allowGet(w, r) {
		return model.ChartGeometry{}, geometry.Domain{}, geometry.Viewport{}, 0, false
	}

	d, v, overridden, err := parseChartQuery(r.URL.Query(), h.deps.Domain(), h.deps.Viewport())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return model.ChartGeometry{}, geometry.Domain{}, geometry.Viewport{}, 0, false
	}

	s, ok := loadSnapshot(w, r, h.deps)
	if !ok {
		return model.ChartGeometry{}, geometry.Domain{}, geometry.Viewport{}, 0, false
	}

	g := s.Geometry
	if overridden {
		g = geometry.Project(s.Metrics.SuccessRateHistory, d.Min, d.Max, v.Width, v.Height)
	}
	return g, d, v, s.Sequence, true
}

// parseChartQuery applies query overrides to the defaults and reports whether
// any were given.
func parseChartQuery(q url.Values, d geometry.Domain, v geometry.Viewport) (geometry.Domain, geometry.Viewport, bool, error) {
	overridden := false
	fields := []struct {
		key      string
		dst      *float64
		positive bool
	}{
		{"width", &v.Width, true},
		{"height", &v.Height, true},
		{"min", &d.Min, false},
		{"max", &d.Max, false},
	}

	for _, f := range fields {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			return d, v, false, fmt.Errorf("%w: %s must be a finite number", ErrBadRequest, f.key)
		}
		if f.positive && val <= 0 {
			return d, v, false, fmt.Errorf("%w: %s must be positive", ErrBadRequest, f.key)
		}
		*f.dst = val
		overridden = true
	}

	if d.Max <= d.Min {
		return d, v, false, fmt.Errorf("%w: max must be greater than min", ErrBadRequest)
	}
	return d, v, overridden, nil
}
