// Package scheduler drives the simulator: it waits a jittered delay, applies
// one tick, publishes the result and schedules the next tick.
//
// The loop owns its timer. Once Stop, Shutdown or context cancellation is
// observed no new timer is created, so no further ticks can happen.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"

	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/internal/domain/simulator"
	"github.com/okian/demandgen/pkg/logger"
	"github.com/okian/demandgen/pkg/metrics"
)

// Simulator produces the next state and the delay before it.
type Simulator interface {
	Tick(prev model.MetricsState) model.MetricsState
	NextDelay() time.Duration
}

// Projector turns the success-rate history into chart geometry.
type Projector interface {
	Project(history []float64) model.ChartGeometry
}

// Store is the state cell the loop reads from and writes to.
type Store interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Replace(ctx context.Context, s model.Snapshot) error
}

// Publisher delivers each new snapshot to observers.
type Publisher interface {
	Publish(ctx context.Context, s model.Snapshot) (int, error)
}

// Loop is the tick scheduler.
type Loop struct {
	sim       Simulator
	projector Projector
	store     Store
	publisher Publisher

	clock  clock.Clock
	name   string
	logger logger.Logger

	started  atomic.Bool
	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	ticks    atomic.Uint64
	failures atomic.Uint64
}

// New creates a loop with configuration options.
func New(sim Simulator, projector Projector, store Store, publisher Publisher, opts ...Option) *Loop {
	l := &Loop{
		sim:       sim,
		projector: projector,
		store:     store,
		publisher: publisher,
		clock:     clock.New(),
		name:      "scheduler",
		logger:    logger.Get().Named("scheduler"),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Start runs the loop in a new goroutine. The store must already hold the
// seed snapshot.
func (l *Loop) Start(ctx context.Context) error {
	if l.isStopped() {
		return ErrStopped
	}
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go l.run(ctx)
	return nil
}

// Stop cancels the loop and waits for it to exit. A tick already in flight
// completes but is not followed by another one. Safe to call more than once.
func (l *Loop) Stop() {
	l.signalStop()
	if l.started.Load() {
		<-l.done
	}
}

// Shutdown cancels the loop and waits for it to exit or ctx to expire.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.signalStop()
	if !l.started.Load() {
		return nil
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out", logger.String("loop", l.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Ticks returns how many ticks have been applied.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Errors returns how many ticks failed to load, store or publish.
func (l *Loop) Errors() uint64 {
	return l.failures.Load()
}

func (l *Loop) signalStop() {
	l.stopOnce.Do(func() {
		close(l.shutdown)
	})
}

func (l *Loop) isStopped() bool {
	select {
	case <-l.shutdown:
		return true
	default:
		return false
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	l.logger.Info(ctx, "loop started", logger.String("loop", l.name))
	defer l.logger.Info(ctx, "loop stopped", logger.String("loop", l.name), logger.Uint64("ticks", l.ticks.Load()))

	for {
		// Re-check before arming: a tick that was in flight when Stop was
		// called must not schedule another.
		if l.isStopped() || ctx.Err() != nil {
			return
		}

		delay := l.sim.NextDelay()
		metrics.RecordTickDelay(float64(delay.Milliseconds()))
		timer := l.clock.Timer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-l.shutdown:
			timer.Stop()
			return
		case <-timer.C:
		}

		// select picks at random when the timer and a stop are both ready.
		if l.isStopped() || ctx.Err() != nil {
			return
		}

		if err := l.step(ctx); err != nil {
			l.failures.Add(1)
			metrics.RecordErrorByComponent("scheduler", "tick")
			l.logger.Error(ctx, "tick failed", logger.String("loop", l.name), logger.Error(err))
		}
	}
}

// step applies one tick: advance the state, project it, store it, publish it.
func (l *Loop) step(ctx context.Context) error {
	start := time.Now()

	prev, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	next := l.sim.Tick(prev.Metrics)
	geometry := l.project(next.SuccessRateHistory)

	snap := model.Snapshot{
		Sequence: prev.Sequence + 1,
		At:       l.clock.Now(),
		Metrics:  next,
		Geometry: geometry,
	}

	if err := l.store.Replace(ctx, snap); err != nil {
		return fmt.Errorf("replace snapshot %d: %w", snap.Sequence, err)
	}
	l.ticks.Add(1)

	if _, err := l.publisher.Publish(ctx, snap); err != nil {
		return fmt.Errorf("publish snapshot %d: %w", snap.Sequence, err)
	}

	metrics.RecordTick(snap.Sequence, float64(time.Since(start).Microseconds())/1000)
	recordValues(next)

	l.logger.Debug(ctx, "tick",
		logger.Uint64("sequence", snap.Sequence),
		logger.Int("growth_roi", next.GrowthROI),
		logger.Float64("success_rate", next.LastSuccessRate()),
	)
	return nil
}

func (l *Loop) project(history []float64) model.ChartGeometry {
	start := time.Now()

	// Memoizing projectors report hits; others are timed only.
	counter, ok := l.projector.(interface{ CacheHits() uint64 })
	var before uint64
	if ok {
		before = counter.CacheHits()
	}

	g := l.projector.Project(history)

	cached := ok && counter.CacheHits() > before
	metrics.RecordProjection(float64(time.Since(start).Microseconds())/1000, cached)
	return g
}

func recordValues(s model.MetricsState) {
	metrics.UpdateMetricValue(string(simulator.FieldGrowthROI), float64(s.GrowthROI))
	metrics.UpdateMetricValue(string(simulator.FieldTotalLeads), s.TotalLeads)
	metrics.UpdateMetricValue(string(simulator.FieldConversionLift), s.ConversionLift)
	metrics.UpdateMetricValue(string(simulator.FieldCPLReduction), s.CPLReduction)
	metrics.UpdateMetricValue(string(simulator.FieldIterationVelocity), s.IterationVelocity)
	if len(s.SuccessRateHistory) > 0 {
		rate := s.LastSuccessRate()
		metrics.UpdateMetricValue(string(simulator.FieldSuccessRate), rate)
		metrics.UpdateSuccessRate(rate)
	}
}
