package streamcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/pkg/logger"
)

// chartInfo is the subset of GET /chart the verifier needs.
type chartInfo struct {
	Domain   geometry.Domain   `json:"domain"`
	Viewport geometry.Viewport `json:"viewport"`
}

// streamURL turns the service base URL into the websocket endpoint.
func streamURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// dial connects to the stream, retrying with exponential backoff while the
// server is unreachable or refusing subscribers.
func dial(ctx context.Context, cfg *Config, log logger.Logger) (*websocket.Conn, error) {
	target, err := streamURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDial, err)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: cfg.Timeout}
	operation := func() (*websocket.Conn, error) {
		conn, resp, err := dialer.DialContext(ctx, target, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err == nil {
			return conn, nil
		}
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
			return nil, backoff.Permanent(fmt.Errorf("handshake rejected with status %d", resp.StatusCode))
		}
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	conn, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(cfg.MaxDialTime),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Warn(ctx, "stream not reachable, retrying",
				logger.String("url", target), logger.Duration("backoff", d), logger.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDial, err)
	}
	return conn, nil
}

// fetchChartInfo reads the server's projection settings so frames can be
// re-projected locally with the same domain and viewport.
func fetchChartInfo(ctx context.Context, cfg *Config) (chartInfo, error) {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, cfg.BaseURL+"/chart", http.NoBody)
	if err != nil {
		return chartInfo{}, fmt.Errorf("%w: %w", ErrChartInfo, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return chartInfo{}, fmt.Errorf("%w: %w", ErrChartInfo, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return chartInfo{}, fmt.Errorf("%w: status %d", ErrChartInfo, resp.StatusCode)
	}

	var info chartInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return chartInfo{}, fmt.Errorf("%w: decode: %w", ErrChartInfo, err)
	}
	return info, nil
}
