package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/demandgen/internal/app"
	"github.com/okian/demandgen/internal/adapters/http/api"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/internal/domain/simulator"
	. "github.com/smartystreets/goconvey/convey"
)

func fastService() *service.Service {
	return service.New(service.WithSimulatorOptions(
		simulator.WithSeed(42),
		simulator.WithDelayRange(5*time.Millisecond, 10*time.Millisecond),
	))
}

func collect(sub <-chan model.Snapshot, n int, timeout time.Duration) []model.Snapshot {
	out := make([]model.Snapshot, 0, n)
	deadline := time.After(timeout)
	for len(out) < n {
		select {
		case s, ok := <-sub:
			if !ok {
				return out
			}
			out = append(out, s)
		case <-deadline:
			return out
		}
	}
	return out
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service with a fast tick", t, func() {
		svc := fastService()
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		sub, err := svc.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("When twenty snapshots are observed", func() {
			got := collect(sub.C(), 20, 10*time.Second)
			So(got, ShouldHaveLength, 20)
			check := simulator.New()

			Convey("Then every snapshot should respect the field bounds", func() {
				for _, s := range got {
					So(check.Validate(s.Metrics), ShouldBeNil)
				}
			})

			Convey("Then sequences should increase by one", func() {
				for i := 1; i < len(got); i++ {
					So(got[i].Sequence, ShouldEqual, got[i-1].Sequence+1)
				}
			})

			Convey("Then the history should shift by exactly one sample per tick", func() {
				for i := 1; i < len(got); i++ {
					prev := got[i-1].Metrics.SuccessRateHistory
					cur := got[i].Metrics.SuccessRateHistory
					So(cur[:len(cur)-1], ShouldResemble, prev[1:])
				}
			})

			Convey("Then each geometry should match a fresh projection", func() {
				for _, s := range got {
					So(s.Geometry, ShouldResemble, svc.Project(s.Metrics.SuccessRateHistory))
				}
			})
		})

		Convey("When the service is stopped mid-stream", func() {
			_ = collect(sub.C(), 2, 5*time.Second)
			svc.Stop()
			last, err := svc.Snapshot(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the stored sequence should stay put", func() {
				time.Sleep(50 * time.Millisecond)
				again, err := svc.Snapshot(context.Background())
				So(err, ShouldBeNil)
				So(again.Sequence, ShouldEqual, last.Sequence)
			})
		})
	})

	Convey("Given a service whose context is cancelled", t, func() {
		svc := fastService()
		defer svc.Stop()

		ctx, cancel := context.WithCancel(context.Background())
		So(svc.Start(ctx), ShouldBeNil)
		sub, err := svc.Subscribe(context.Background())
		So(err, ShouldBeNil)
		So(collect(sub.C(), 1, 5*time.Second), ShouldHaveLength, 1)

		Convey("When the context is cancelled", func() {
			cancel()
			time.Sleep(50 * time.Millisecond)
			before, err := svc.Snapshot(context.Background())
			So(err, ShouldBeNil)

			Convey("Then ticking should stop", func() {
				time.Sleep(50 * time.Millisecond)
				after, err := svc.Snapshot(context.Background())
				So(err, ShouldBeNil)
				So(after.Sequence, ShouldEqual, before.Sequence)
			})
		})
	})
}

func TestServiceOverHTTP(t *testing.T) {
	Convey("Given the API served from a running service", t, func() {
		svc := fastService()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()
		defer svc.Stop()

		Convey("When a websocket client connects", func() {
			url := "ws" + srv.URL[len("http"):] + "/ws"
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			defer conn.Close()
			defer resp.Body.Close()

			Convey("Then it should receive strictly increasing snapshots", func() {
				var last uint64
				for i := 0; i < 5; i++ {
					So(conn.SetReadDeadline(time.Now().Add(5*time.Second)), ShouldBeNil)
					var view api.SnapshotView
					So(conn.ReadJSON(&view), ShouldBeNil)
					if i > 0 {
						So(view.Sequence, ShouldBeGreaterThan, last)
					}
					last = view.Sequence
					So(view.LinePathData, ShouldStartWith, "M ")
				}
			})
		})
	})
}
