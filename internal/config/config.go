// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors must be wrapped with this package's sentinels.
package config

import (
	"fmt"
	"time"

	"github.com/okian/demandgen/internal/domain/simulator"
)

// FieldConfig bounds one simulated field and limits its per-tick step.
type FieldConfig struct {
	Min   float64 `koanf:"min"`
	Max   float64 `koanf:"max"`
	Range float64 `koanf:"range"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TickMinMS and TickMaxMS bound the jittered delay between ticks.
	TickMinMS int `koanf:"tick_min_ms"`
	TickMaxMS int `koanf:"tick_max_ms"`

	// HistoryWindow is the success-rate window length.
	HistoryWindow int `koanf:"history_window"`

	// ChartPoints is the bar chart length.
	ChartPoints int `koanf:"chart_points"`

	// ChartDomainMin and ChartDomainMax bound the projected value range.
	ChartDomainMin float64 `koanf:"chart_domain_min"`
	ChartDomainMax float64 `koanf:"chart_domain_max"`

	// ViewportWidth and ViewportHeight size the projected chart.
	ViewportWidth  float64 `koanf:"viewport_width"`
	ViewportHeight float64 `koanf:"viewport_height"`

	// SubscriberBuffer sizes each subscriber's snapshot channel.
	SubscriberBuffer int `koanf:"subscriber_buffer"`

	// MaxSubscribers caps concurrent stream subscribers.
	MaxSubscribers int `koanf:"max_subscribers"`

	// ReportSchedule is a cron spec for the periodic digest. Empty disables it.
	ReportSchedule string `koanf:"report_schedule"`

	// RandomSeed makes the simulation reproducible. Zero seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`

	// Fields overrides per-field bounds. An entry replaces the whole default.
	Fields map[string]FieldConfig `koanf:"fields"`
}

// New creates a Config populated with defaults.
func New() *Config {
	fields := make(map[string]FieldConfig, len(simulator.Fields))
	for field, spec := range simulator.DefaultSpecs() {
		fields[string(field)] = FieldConfig{Min: spec.Min, Max: spec.Max, Range: spec.Range}
	}
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		TickMinMS:        2000,
		TickMaxMS:        3000,
		HistoryWindow:    30,
		ChartPoints:      8,
		ChartDomainMin:   50,
		ChartDomainMax:   100,
		ViewportWidth:    100,
		ViewportHeight:   50,
		SubscriberBuffer: 16,
		MaxSubscribers:   256,
		ReportSchedule:   "@every 1m",
		Fields:           fields,
	}
}

// TickDelay returns the delay bounds as durations.
func (c *Config) TickDelay() (time.Duration, time.Duration) {
	return time.Duration(c.TickMinMS) * time.Millisecond, time.Duration(c.TickMaxMS) * time.Millisecond
}

// FieldSpecs converts the field overrides to simulator specs.
func (c *Config) FieldSpecs() map[simulator.Field]simulator.FieldSpec {
	specs := make(map[simulator.Field]simulator.FieldSpec, len(c.Fields))
	for name, f := range c.Fields {
		specs[simulator.Field(name)] = simulator.FieldSpec{Min: f.Min, Max: f.Max, Range: f.Range}
	}
	return specs
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TickMinMS <= 0 || c.TickMaxMS < c.TickMinMS:
		return fmt.Errorf("%w: tick bounds must satisfy 0 < min <= max, got %d..%d",
			ErrInvalidConfig, c.TickMinMS, c.TickMaxMS)
	case c.HistoryWindow < 2:
		return fmt.Errorf("%w: history_window must be at least 2, got %d", ErrInvalidConfig, c.HistoryWindow)
	case c.ChartPoints < 1:
		return fmt.Errorf("%w: chart_points must be positive, got %d", ErrInvalidConfig, c.ChartPoints)
	case c.ChartDomainMax <= c.ChartDomainMin:
		return fmt.Errorf("%w: chart domain max must exceed min", ErrInvalidConfig)
	case c.ViewportWidth <= 0 || c.ViewportHeight <= 0:
		return fmt.Errorf("%w: viewport must be positive", ErrInvalidConfig)
	case c.SubscriberBuffer < 1:
		return fmt.Errorf("%w: subscriber_buffer must be positive", ErrInvalidConfig)
	case c.MaxSubscribers < 1:
		return fmt.Errorf("%w: max_subscribers must be positive", ErrInvalidConfig)
	}

	known := simulator.DefaultSpecs()
	for name, f := range c.Fields {
		if _, ok := known[simulator.Field(name)]; !ok {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidConfig, name)
		}
		if f.Min > f.Max {
			return fmt.Errorf("%w: field %q min %v exceeds max %v", ErrInvalidConfig, name, f.Min, f.Max)
		}
		if f.Range < 0 {
			return fmt.Errorf("%w: field %q range must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
