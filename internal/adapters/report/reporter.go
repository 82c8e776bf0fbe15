// Package report periodically writes a digest of the live dashboard values
// to the log on a cron schedule.
package report

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/logger"
	"github.com/okian/demandgen/pkg/metrics"
)

// Source provides the snapshot to summarize.
type Source interface {
	Load(ctx context.Context) (model.Snapshot, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) (model.Snapshot, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (model.Snapshot, error) { return f(ctx) }

// Digest is one summary of the live snapshot.
type Digest struct {
	Sequence uint64        `json:"sequence"`
	At       time.Time     `json:"at"`
	Readout  model.Readout `json:"readout"`

	// Success rate over the whole window.
	RateMin  float64 `json:"rate_min"`
	RateMax  float64 `json:"rate_max"`
	RateMean float64 `json:"rate_mean"`
}

// Reporter runs the digest job.
type Reporter struct {
	source   Source
	schedule string
	cron     *cron.Cron
	logger   logger.Logger
	hook     func(Digest)

	mu      sync.Mutex
	ctx     context.Context //nolint:containedctx // cron jobs take no context
	running bool
	runs    atomic.Uint64
}

// New validates schedule and registers the digest job. Standard five-field
// specs and descriptors such as "@every 1m" are accepted.
func New(source Source, schedule string, opts ...Option) (*Reporter, error) {
	r := &Reporter{
		source:   source,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.Get().Named("report"),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, schedule, err)
	}
	return r, nil
}

// Start begins running the schedule. ctx is passed to the snapshot source.
func (r *Reporter) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.ctx = ctx
	r.running = true
	r.cron.Start()
	r.logger.Info(ctx, "reporter started", logger.String("schedule", r.schedule))
}

// Stop halts the schedule and waits for a running digest to finish.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	ctx := r.ctx
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Info(ctx, "reporter stopped", logger.Uint64("runs", r.runs.Load()))
}

// Runs returns how many digests were written.
func (r *Reporter) Runs() uint64 {
	return r.runs.Load()
}

// RunNow writes a digest immediately.
func (r *Reporter) RunNow(ctx context.Context) (Digest, error) {
	snap, err := r.source.Load(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %w", ErrNoSnapshot, err)
	}

	d := Summarize(snap)
	r.runs.Add(1)
	metrics.RecordReport()

	r.logger.Info(ctx, "metrics digest",
		logger.Uint64("sequence", d.Sequence),
		logger.String("growth_roi", d.Readout.GrowthROI),
		logger.String("total_leads", d.Readout.TotalLeads),
		logger.Float64("lead_target_progress", d.Readout.LeadTargetProgress),
		logger.String("conversion_lift", d.Readout.ConversionLift),
		logger.String("cpl_reduction", d.Readout.CPLReduction),
		logger.String("iteration_velocity", d.Readout.IterationVelocity),
		logger.String("success_rate", d.Readout.SuccessRate),
		logger.Float64("rate_min", d.RateMin),
		logger.Float64("rate_max", d.RateMax),
		logger.Float64("rate_mean", d.RateMean),
	)
	return d, nil
}

func (r *Reporter) tick() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()

	d, err := r.RunNow(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("report", "load")
		r.logger.Warn(ctx, "digest skipped", logger.Error(err))
		return
	}
	if r.hook != nil {
		r.hook(d)
	}
}

// Summarize builds a digest from a snapshot. The mean is rounded to one decimal.
func Summarize(s model.Snapshot) Digest {
	d := Digest{
		Sequence: s.Sequence,
		At:       s.At,
		Readout:  model.NewReadout(s.Metrics),
	}

	history := s.Metrics.SuccessRateHistory
	if len(history) == 0 {
		return d
	}

	sum := decimal.Zero
	d.RateMin, d.RateMax = history[0], history[0]
	for _, v := range history {
		sum = sum.Add(decimal.NewFromFloat(v))
		d.RateMin = min(d.RateMin, v)
		d.RateMax = max(d.RateMax, v)
	}
	d.RateMean, _ = sum.Div(decimal.NewFromInt(int64(len(history)))).Round(1).Float64()
	return d
}
