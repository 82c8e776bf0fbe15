package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/demandgen/internal/adapters/http/api"
	"github.com/okian/demandgen/internal/adapters/mq/hub"
	"github.com/okian/demandgen/internal/adapters/repository"
	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeDeps serves a real store and hub with the default projection.
type fakeDeps struct {
	store *repository.InMemoryStore
	hub   *hub.Hub
	err   error
}

func newFakeDeps(initial *model.Snapshot) *fakeDeps {
	var opts []repository.Option
	if initial != nil {
		opts = append(opts, repository.WithInitial(*initial))
	}
	return &fakeDeps{store: repository.NewInMemoryStore(opts...), hub: hub.New(hub.WithBufferSize(8))}
}

func (f *fakeDeps) Snapshot(ctx context.Context) (model.Snapshot, error) {
	if f.err != nil {
		return model.Snapshot{}, f.err
	}
	return f.store.Load(ctx)
}

func (f *fakeDeps) Subscribe(ctx context.Context) (*hub.Subscription, error) {
	return f.hub.Subscribe(ctx)
}

func (f *fakeDeps) Domain() geometry.Domain     { return geometry.DefaultDomain }
func (f *fakeDeps) Viewport() geometry.Viewport { return geometry.DefaultViewport }

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"ticks": 3, "subscribers": 1}
}

func referenceSnapshot(seq uint64) model.Snapshot {
	history := []float64{60, 70, 80, 90}
	return model.Snapshot{
		Sequence: seq,
		At:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Metrics: model.MetricsState{
			GrowthROI:          312,
			TotalLeads:         52.4,
			ConversionLift:     26.2,
			CPLReduction:       44.5,
			IterationVelocity:  4.8,
			ChartData:          []float64{0.3, 0.45, 0.35, 0.6, 0.85, 0.95, 0.7, 0.9},
			SuccessRateHistory: history,
		},
		Geometry: geometry.Project(history, 50, 100, 100, 50),
	}
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return mux
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		snap := referenceSnapshot(4)
		mux := newMux(newFakeDeps(&snap))

		Convey("Then the health endpoint should expose Prometheus metrics", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "demandgen_simulator")
		})

		Convey("Then the stats endpoint should return the provider's stats", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["ticks"], ShouldEqual, 3.0)
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
		})

		Convey("Then every route should reject non-GET methods", func() {
			for _, path := range []string{"/healthz", "/stats", "/snapshot", "/chart", "/chart.svg", "/ws"} {
				for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead} {
					req := httptest.NewRequest(method, path, nil)
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, req)
					So(w.Code, ShouldEqual, http.StatusNotFound)
				}
			}
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler without a provider", t, func() {
		h := api.NewStatsHandler(nil)

		Convey("When requesting the stats", func() {
			w := httptest.NewRecorder()
			h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then it should return an empty object", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "{}")
			})
		})

		Convey("When posting to it", func() {
			w := httptest.NewRecorder()
			h.HandleStats(w, httptest.NewRequest(http.MethodPost, "/stats", nil))

			Convey("Then it should answer 404 like the other routes", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSnapshotHandler(t *testing.T) {
	Convey("Given a stored snapshot", t, func() {
		snap := referenceSnapshot(4)
		mux := newMux(newFakeDeps(&snap))

		Convey("When requesting /snapshot", func() {
			w := get(mux, "/snapshot")

			Convey("Then it should return the snapshot with display values", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var view api.SnapshotView
				So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
				So(view.Sequence, ShouldEqual, 4)
				So(view.Metrics, ShouldResemble, snap.Metrics)
				So(view.Geometry, ShouldResemble, snap.Geometry)
				So(view.Readout.GrowthROI, ShouldEqual, "312%")
				So(view.Readout.SuccessRate, ShouldEqual, "90.0%")
				So(view.LinePathData, ShouldStartWith, "M 0,")
				So(view.AreaPathData, ShouldEndWith, " Z")
			})
		})
	})

	Convey("Given nothing stored yet", t, func() {
		mux := newMux(newFakeDeps(nil))

		Convey("Then /snapshot should report that it is not ready", func() {
			w := get(mux, "/snapshot")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "not_ready")
		})
	})

	Convey("Given a failing dependency", t, func() {
		deps := newFakeDeps(nil)
		deps.err = errors.New("boom")
		mux := newMux(deps)

		Convey("Then /snapshot should report an internal error", func() {
			w := get(mux, "/snapshot")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "boom")
		})
	})
}

func TestChartHandler(t *testing.T) {
	Convey("Given a stored snapshot", t, func() {
		snap := referenceSnapshot(9)
		mux := newMux(newFakeDeps(&snap))

		decode := func(w *httptest.ResponseRecorder) map[string]json.RawMessage {
			var body map[string]json.RawMessage
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			return body
		}

		Convey("When requesting /chart without parameters", func() {
			w := get(mux, "/chart")

			Convey("Then it should return the stored geometry and defaults", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				var g model.ChartGeometry
				So(json.Unmarshal(body["geometry"], &g), ShouldBeNil)
				So(g, ShouldResemble, snap.Geometry)
				So(string(body["viewport"]), ShouldEqual, `{"width":100,"height":50}`)
				So(string(body["domain"]), ShouldEqual, `{"min":50,"max":100}`)
			})
		})

		Convey("When requesting /chart with overrides", func() {
			w := get(mux, "/chart?width=200&height=100&min=60&max=90")

			Convey("Then it should re-project the current history", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var g model.ChartGeometry
				So(json.Unmarshal(decode(w)["geometry"], &g), ShouldBeNil)
				So(g, ShouldResemble, geometry.Project(snap.Metrics.SuccessRateHistory, 60, 90, 200, 100))
				So(g.LinePath[0], ShouldResemble, model.Point{X: 0, Y: 100})
				So(g.LastPoint, ShouldResemble, model.Point{X: 200, Y: 0})
			})
		})

		Convey("When the overrides are invalid", func() {
			for _, q := range []string{"width=abc", "width=0", "height=-1", "min=100", "max=10", "min=NaN", "max=Inf"} {
				w := get(mux, "/chart?"+q)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "bad_request")
			}
		})

		Convey("When requesting /chart.svg", func() {
			w := get(mux, "/chart.svg?width=200")

			Convey("Then it should render an SVG document", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(w.Body.String(), ShouldStartWith, "<svg")
				So(w.Body.String(), ShouldContainSubstring, `viewBox="0 0 200 50"`)
				So(strings.Count(w.Body.String(), "<path"), ShouldEqual, 2)
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped in the metrics middleware", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		Convey("Then the response should pass through unchanged", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))
			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(w.Body.String(), ShouldEqual, "short and stout")
		})
	})
}
