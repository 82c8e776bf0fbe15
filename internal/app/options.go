package service

import (
	"github.com/andres-erbsen/clock"

	"github.com/okian/demandgen/internal/adapters/mq/hub"
	"github.com/okian/demandgen/internal/config"
	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/simulator"
	"github.com/okian/demandgen/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSimulatorOptions forwards options to the simulator.
func WithSimulatorOptions(opts ...simulator.Option) Option {
	return func(s *Service) {
		s.simOpts = append(s.simOpts, opts...)
	}
}

// WithProjectorOptions forwards options to the chart projector.
func WithProjectorOptions(opts ...geometry.Option) Option {
	return func(s *Service) {
		s.projOpts = append(s.projOpts, opts...)
	}
}

// WithHubOptions forwards options to the snapshot hub.
func WithHubOptions(opts ...hub.Option) Option {
	return func(s *Service) {
		s.hubOpts = append(s.hubOpts, opts...)
	}
}

// WithClock sets the clock driving the tick loop.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// FromConfig translates a validated Config into service options.
func FromConfig(cfg *config.Config) []Option {
	minDelay, maxDelay := cfg.TickDelay()

	simOpts := []simulator.Option{
		simulator.WithSeed(cfg.RandomSeed),
		simulator.WithDelayRange(minDelay, maxDelay),
		simulator.WithWindow(cfg.HistoryWindow),
		simulator.WithChartPoints(cfg.ChartPoints),
	}
	for field, spec := range cfg.FieldSpecs() {
		simOpts = append(simOpts, simulator.WithFieldSpec(field, spec))
	}

	return []Option{
		WithSimulatorOptions(simOpts...),
		WithProjectorOptions(
			geometry.WithDomain(geometry.Domain{Min: cfg.ChartDomainMin, Max: cfg.ChartDomainMax}),
			geometry.WithViewport(geometry.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}),
		),
		WithHubOptions(
			hub.WithBufferSize(cfg.SubscriberBuffer),
			hub.WithMaxSubscribers(cfg.MaxSubscribers),
		),
	}
}
