package api

import (
	"time"

	"github.com/okian/demandgen/pkg/logger"
)

// Default websocket timings.
const (
	defaultPingInterval = 30 * time.Second
	defaultWriteWait    = 10 * time.Second
)

type streamConfig struct {
	pingInterval time.Duration
	writeWait    time.Duration
	logger       logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*streamConfig)

// WithPingInterval sets how often idle websocket connections are pinged.
// Clients that do not answer within twice the interval are dropped.
func WithPingInterval(d time.Duration) Option {
	return func(c *streamConfig) {
		if d > 0 {
			c.pingInterval = d
		}
	}
}

// WithWriteWait bounds each websocket write.
func WithWriteWait(d time.Duration) Option {
	return func(c *streamConfig) {
		if d > 0 {
			c.writeWait = d
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(log logger.Logger) Option {
	return func(c *streamConfig) {
		if log != nil {
			c.logger = log
		}
	}
}
