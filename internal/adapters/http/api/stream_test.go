package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/demandgen/internal/adapters/http/api"
	"github.com/okian/demandgen/internal/adapters/mq/hub"
	. "github.com/smartystreets/goconvey/convey"
)

func dialStream(srv *httptest.Server) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(url, nil)
}

func readView(conn *websocket.Conn) (api.SnapshotView, error) {
	var v api.SnapshotView
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	err := conn.ReadJSON(&v)
	return v, err
}

func TestStreamHandler(t *testing.T) {
	Convey("Given a server streaming snapshots", t, func() {
		ctx := context.Background()
		snap := referenceSnapshot(1)
		deps := newFakeDeps(&snap)
		srv := httptest.NewServer(newMux(deps))
		defer srv.Close()
		defer func() { _ = deps.hub.Close() }()

		conn, _, err := dialStream(srv)
		So(err, ShouldBeNil)
		defer func() { _ = conn.Close() }()

		Convey("Then the current snapshot should arrive first", func() {
			v, err := readView(conn)
			So(err, ShouldBeNil)
			So(v.Sequence, ShouldEqual, 1)
			So(v.Readout.TotalLeads, ShouldEqual, "52.4k")
			So(v.Snapshot(), ShouldResemble, snap)
		})

		Convey("When newer snapshots are published", func() {
			_, err := readView(conn)
			So(err, ShouldBeNil)

			for _, seq := range []uint64{2, 3} {
				n, err := deps.hub.Publish(ctx, referenceSnapshot(seq))
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			}

			Convey("Then they should follow in order", func() {
				v2, err := readView(conn)
				So(err, ShouldBeNil)
				v3, err := readView(conn)
				So(err, ShouldBeNil)
				So(v2.Sequence, ShouldEqual, 2)
				So(v3.Sequence, ShouldEqual, 3)
			})
		})

		Convey("When an already delivered sequence is published again", func() {
			_, err := readView(conn)
			So(err, ShouldBeNil)
			_, _ = deps.hub.Publish(ctx, referenceSnapshot(1))
			_, _ = deps.hub.Publish(ctx, referenceSnapshot(2))

			Convey("Then it should be skipped", func() {
				v, err := readView(conn)
				So(err, ShouldBeNil)
				So(v.Sequence, ShouldEqual, 2)
			})
		})

		Convey("When the hub shuts down", func() {
			_, err := readView(conn)
			So(err, ShouldBeNil)
			So(deps.hub.Close(), ShouldBeNil)

			Convey("Then the client should receive a going-away close", func() {
				_, err := readView(conn)
				So(websocket.IsCloseError(err, websocket.CloseGoingAway), ShouldBeTrue)
			})
		})

		Convey("When the client disconnects", func() {
			_, err := readView(conn)
			So(err, ShouldBeNil)
			_ = conn.Close()

			Convey("Then its subscription should be released", func() {
				deadline := time.Now().Add(2 * time.Second)
				for deps.hub.Len() != 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(deps.hub.Len(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a hub that is already full", t, func() {
		snap := referenceSnapshot(1)
		deps := newFakeDeps(&snap)
		deps.hub = hub.New(hub.WithMaxSubscribers(1))
		_, err := deps.hub.Subscribe(context.Background())
		So(err, ShouldBeNil)
		srv := httptest.NewServer(newMux(deps))
		defer srv.Close()

		Convey("Then the upgrade should be refused with 503", func() {
			_, resp, err := dialStream(srv)
			So(err, ShouldNotBeNil)
			So(resp, ShouldNotBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given nothing stored yet", t, func() {
		deps := newFakeDeps(nil)
		srv := httptest.NewServer(newMux(deps))
		defer srv.Close()

		Convey("Then the upgrade should be refused and nothing left subscribed", func() {
			_, resp, err := dialStream(srv)
			So(err, ShouldNotBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			deadline := time.Now().Add(2 * time.Second)
			for deps.hub.Len() != 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(deps.hub.Len(), ShouldEqual, 0)
		})
	})
}
