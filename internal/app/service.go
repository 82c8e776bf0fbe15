// Package service wires the simulator, the state cell, the tick loop and the
// snapshot hub together and implements the dependencies required by the
// HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/google/uuid"

	"github.com/okian/demandgen/internal/adapters/mq/hub"
	"github.com/okian/demandgen/internal/adapters/repository"
	"github.com/okian/demandgen/internal/adapters/scheduler"
	"github.com/okian/demandgen/internal/domain/geometry"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/internal/domain/simulator"
	"github.com/okian/demandgen/pkg/logger"
	"github.com/okian/demandgen/pkg/metrics"
)

// Service owns the live dashboard state.
type Service struct {
	mu sync.RWMutex

	id string

	// Core components
	sim       *simulator.Simulator
	projector *geometry.Projector
	store     *repository.InMemoryStore
	hub       *hub.Hub
	loop      *scheduler.Loop

	// Configuration
	simOpts  []simulator.Option
	projOpts []geometry.Option
	hubOpts  []hub.Option
	clock    clock.Clock

	// State
	started   bool
	stopped   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service. Components are built eagerly so Snapshot,
// Subscribe and Project are usable before Start; Snapshot reports
// repository.ErrEmpty until the seed is stored.
func New(opts ...Option) *Service {
	s := &Service{
		id:    uuid.NewString(),
		clock: clock.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sim = simulator.New(s.simOpts...)
	s.projector = geometry.NewProjector(s.projOpts...)
	s.store = repository.NewInMemoryStore()
	s.hub = hub.New(s.hubOpts...)

	return s
}

// Start stores the seed snapshot and starts the tick loop. The loop stops
// when ctx is cancelled or Stop is called. Calling Start on a running
// service is a no-op; a stopped service cannot be restarted.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	seed := s.sim.Seed()
	if err := s.sim.Validate(seed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	initial := model.Snapshot{
		Sequence: 0,
		At:       s.clock.Now(),
		Metrics:  seed,
		Geometry: s.projector.Project(seed.SuccessRateHistory),
	}
	if err := s.store.Replace(ctx, initial); err != nil {
		return fmt.Errorf("store seed: %w", err)
	}
	metrics.UpdateSuccessRate(seed.LastSuccessRate())

	s.loop = scheduler.New(s.sim, s.projector, s.store, s.hub,
		scheduler.WithClock(s.clock),
		scheduler.WithName("dashboard"),
		scheduler.WithLogger(s.logger.Named("loop")),
	)
	if err := s.loop.Start(ctx); err != nil {
		return fmt.Errorf("start loop: %w", err)
	}

	s.started = true
	s.startedAt = s.clock.Now()
	s.logger.Info(ctx, "dashboard service started",
		logger.String("id", s.id),
		logger.Int("window", s.sim.Window()),
		logger.Int("chartPoints", s.sim.ChartPoints()),
	)

	return nil
}

// Stop halts the tick loop, waits for it to exit and closes every
// subscription. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	// Subscriptions may exist without a loop: taken before Start or left
	// behind by a failed one.
	var ticks uint64
	if s.loop != nil {
		s.loop.Stop()
		ticks = s.loop.Ticks()
	}
	_ = s.hub.Close()

	s.started = false
	s.stopped = true
	s.logger.Info(context.Background(), "dashboard service stopped",
		logger.Uint64("ticks", ticks),
	)
}

// ID identifies this service instance.
func (s *Service) ID() string { return s.id }

// Snapshot returns a copy of the live snapshot.
func (s *Service) Snapshot(ctx context.Context) (model.Snapshot, error) {
	return s.store.Load(ctx)
}

// Subscribe registers for every snapshot published from now on.
func (s *Service) Subscribe(ctx context.Context) (*hub.Subscription, error) {
	return s.hub.Subscribe(ctx)
}

// Project maps a history onto the configured domain and viewport.
func (s *Service) Project(history []float64) model.ChartGeometry {
	return s.projector.Project(history)
}

// Domain returns the configured chart value range.
func (s *Service) Domain() geometry.Domain { return s.projector.Domain() }

// Viewport returns the configured chart rectangle.
func (s *Service) Viewport() geometry.Viewport { return s.projector.Viewport() }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	hs := s.hub.Stats()
	stats := map[string]interface{}{
		"id":            s.id,
		"started":       s.started,
		"subscribers":   hs.Subscribers,
		"published":     hs.Published,
		"dropped":       hs.Dropped,
		"storeVersion":  s.store.Version(ctx),
		"cacheHits":     s.projector.CacheHits(),
		"goroutines":    runtime.NumGoroutine(),
		"historyWindow": s.sim.Window(),
	}

	if snap, err := s.store.Load(ctx); err == nil {
		stats["sequence"] = snap.Sequence
		stats["successRate"] = snap.Metrics.LastSuccessRate()
	}

	if s.loop != nil {
		stats["ticks"] = s.loop.Ticks()
		stats["tickErrors"] = s.loop.Errors()
	}
	if s.started {
		stats["uptimeSeconds"] = s.clock.Now().Sub(s.startedAt).Seconds()
	}

	metrics.UpdateHubSubscribers(hs.Subscribers)

	return stats
}
