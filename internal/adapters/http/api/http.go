// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/demandgen/internal/adapters/mq/hub"
	"github.com/okian/demandgen/internal/adapters/repository"
	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Snapshot returns a copy of the live snapshot.
	Snapshot(ctx context.Context) (model.Snapshot, error)

	// Subscribe registers for every snapshot published from now on.
	Subscribe(ctx context.Context) (*hub.Subscription, error)

	// Domain and Viewport are the projection defaults.
	Domain() geometry.Domain
	Viewport() geometry.Viewport
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	snapshotHandler *SnapshotHandler
	chartHandler    *ChartHandler
	streamHandler   *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := streamConfig{
		pingInterval: defaultPingInterval,
		writeWait:    defaultWriteWait,
		logger:       logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		snapshotHandler: NewSnapshotHandler(deps),
		chartHandler:    NewChartHandler(deps),
		streamHandler:   newStreamHandler(deps, cfg),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleSnapshot, "snapshot"))
	mux.HandleFunc("/chart", MetricsMiddleware(s.chartHandler.HandleChart, "chart"))
	mux.HandleFunc("/chart.svg", MetricsMiddleware(s.chartHandler.HandleChartSVG, "chart_svg"))
	mux.HandleFunc("/ws", MetricsMiddleware(s.streamHandler.HandleStream, "ws"))
}

// SnapshotView is the wire shape of a snapshot on /snapshot and /ws.
type SnapshotView struct {
	Sequence     uint64              `json:"sequence"`
	At           time.Time           `json:"at"`
	Metrics      model.MetricsState  `json:"metrics"`
	Geometry     model.ChartGeometry `json:"geometry"`
	Readout      model.Readout       `json:"readout"`
	LinePathData string              `json:"line_path_data"`
	AreaPathData string              `json:"area_path_data"`
}

// NewSnapshotView decorates s with display strings and SVG path data.
func NewSnapshotView(s model.Snapshot) SnapshotView {
	return SnapshotView{
		Sequence:     s.Sequence,
		At:           s.At,
		Metrics:      s.Metrics,
		Geometry:     s.Geometry,
		Readout:      model.NewReadout(s.Metrics),
		LinePathData: geometry.PathData(s.Geometry.LinePath),
		AreaPathData: geometry.AreaPathData(s.Geometry),
	}
}

// Snapshot strips the display fields.
func (v SnapshotView) Snapshot() model.Snapshot {
	return model.Snapshot{
		Sequence: v.Sequence,
		At:       v.At,
		Metrics:  v.Metrics,
		Geometry: v.Geometry,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// allowGet answers anything but GET with 404 and reports whether the
// handler should go on.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	http.NotFound(w, r)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// loadSnapshot fetches the live snapshot and writes the error response if
// there is none yet.
func loadSnapshot(w http.ResponseWriter, r *http.Request, deps Dependencies) (model.Snapshot, bool) {
	s, err := deps.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrEmpty) {
			writeError(w, http.StatusServiceUnavailable, "not_ready", ErrNotReady)
			return model.Snapshot{}, false
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return model.Snapshot{}, false
	}
	return s, true
}
