package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/demandgen/internal/adapters/mq/hub"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/logger"
	"github.com/okian/demandgen/pkg/metrics"
)

// maxClientMessage bounds what a viewer may send; viewers only ever answer pings.
const maxClientMessage = 512

// StreamHandler pushes snapshots over a websocket: the current one first,
// then every published one.
type StreamHandler struct {
	deps     Dependencies
	upgrader websocket.Upgrader
	cfg      streamConfig
}

func newStreamHandler(deps Dependencies, cfg streamConfig) *StreamHandler {
	return &StreamHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		cfg: cfg,
	}
}

// HandleStream handles GET /ws requests.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.deps.Subscribe(ctx)
	if err != nil {
		switch {
		case errors.Is(err, hub.ErrTooManySubscribers):
			writeError(w, http.StatusServiceUnavailable, "too_many_subscribers", err)
		case errors.Is(err, hub.ErrClosed):
			writeError(w, http.StatusServiceUnavailable, "shutting_down", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	defer sub.Unsubscribe()

	// Subscribed before loading so nothing published in between is lost.
	current, ok := loadSnapshot(w, r, h.deps)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.cfg.logger.Debug(ctx, "websocket upgrade failed", logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.AddWebsocketClients(1)
	defer metrics.AddWebsocketClients(-1)
	h.cfg.logger.Debug(ctx, "websocket client connected",
		logger.String("subscription", sub.ID()),
		logger.String("remote", r.RemoteAddr),
	)

	go h.readPump(conn, cancel)

	if err := h.send(conn, current); err != nil {
		return
	}
	h.writePump(ctx, conn, sub, current.Sequence)
}

// readPump consumes control frames and cancels the stream when the peer
// goes away or stops answering pings.
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxClientMessage)
	_ = conn.SetReadDeadline(time.Now().Add(2 * h.cfg.pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * h.cfg.pingInterval))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) writePump(ctx context.Context, conn *websocket.Conn, sub *hub.Subscription, last uint64) {
	ping := time.NewTicker(h.cfg.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeWith(conn, websocket.CloseNormalClosure, "")
			return
		case s, ok := <-sub.C():
			if !ok {
				h.closeWith(conn, websocket.CloseGoingAway, "server shutting down")
				return
			}
			if s.Sequence <= last {
				continue
			}
			if err := h.send(conn, s); err != nil {
				return
			}
			last = s.Sequence
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) send(conn *websocket.Conn, s model.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.writeWait))
	if err := conn.WriteJSON(NewSnapshotView(s)); err != nil {
		metrics.RecordErrorByComponent("api", "websocket_write")
		return err
	}
	return nil
}

func (h *StreamHandler) closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.writeWait))
}
