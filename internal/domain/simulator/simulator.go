// Package simulator produces a slowly wandering synthetic metrics stream.
//
// Every value performs a bounded random walk: each tick adds a uniform
// perturbation in [-range, +range] and clamps the result to the field's
// interval. The success-rate history is a fixed-length FIFO window whose
// newest sample drifts from the previous newest sample.
package simulator

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/demandgen/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Default simulator configuration constants.
const (
	defaultWindow      = 30
	defaultChartPoints = 8
	defaultMinDelay    = 2000 * time.Millisecond
	defaultMaxDelay    = 3000 * time.Millisecond
	minWindow          = 2

	// Seed history samples are floor(u*seedRateSpread) + seedRateBase.
	seedRateBase   = 70
	seedRateSpread = 15
)

// Reference start values.
const (
	seedGrowthROI         = 312
	seedTotalLeads        = 52.4
	seedConversionLift    = 26.2
	seedCPLReduction      = 44.5
	seedIterationVelocity = 4.8
)

var seedChartData = []float64{0.3, 0.45, 0.35, 0.6, 0.85, 0.95, 0.7, 0.9} //nolint:gochecknoglobals // read-only table

// Simulator advances MetricsState values. It holds configuration only; the
// live state belongs to whoever calls Tick.
type Simulator struct {
	rng         RandomSource
	specs       map[Field]FieldSpec
	window      int
	chartPoints int
	minDelay    time.Duration
	maxDelay    time.Duration
}

// New creates a simulator with the reference configuration and the given options.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		rng:         newMathSource(time.Now().UnixNano()),
		specs:       DefaultSpecs(),
		window:      defaultWindow,
		chartPoints: defaultChartPoints,
		minDelay:    defaultMinDelay,
		maxDelay:    defaultMaxDelay,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Spec returns the bounds configured for a field.
func (s *Simulator) Spec(field Field) FieldSpec {
	return s.specs[field]
}

// Window returns the configured success-rate history length.
func (s *Simulator) Window() int { return s.window }

// ChartPoints returns the configured chart data length.
func (s *Simulator) ChartPoints() int { return s.chartPoints }

// Tick computes the state that follows prev. prev is not modified and the
// result shares no memory with it.
func (s *Simulator) Tick(prev model.MetricsState) model.MetricsState {
	// Draw order matches Fields so fixed random sequences give stable results.
	var history []float64
	if n := len(prev.SuccessRateHistory); n > 0 {
		rate := s.step(FieldSuccessRate, prev.SuccessRateHistory[n-1])
		history = Slide(prev.SuccessRateHistory, rate)
	} else if prev.SuccessRateHistory != nil {
		history = []float64{}
	}

	next := model.MetricsState{
		GrowthROI:          int(math.Floor(s.step(FieldGrowthROI, float64(prev.GrowthROI)))),
		TotalLeads:         RoundTenth(s.step(FieldTotalLeads, prev.TotalLeads)),
		ConversionLift:     RoundTenth(s.step(FieldConversionLift, prev.ConversionLift)),
		CPLReduction:       RoundTenth(s.step(FieldCPLReduction, prev.CPLReduction)),
		IterationVelocity:  RoundTenth(s.step(FieldIterationVelocity, prev.IterationVelocity)),
		SuccessRateHistory: history,
	}

	if prev.ChartData != nil {
		next.ChartData = make([]float64, len(prev.ChartData))
		for i, h := range prev.ChartData {
			next.ChartData[i] = s.step(FieldChartData, h)
		}
	}

	return next
}

// NextDelay returns a jittered wait, uniform in the configured delay range.
func (s *Simulator) NextDelay() time.Duration {
	span := float64(s.maxDelay - s.minDelay)
	return s.minDelay + time.Duration(s.rng.Float64()*span)
}

// Seed returns the reference start state, clamped to the configured bounds
// and sized to the configured window and chart length.
func (s *Simulator) Seed() model.MetricsState {
	rate := s.specs[FieldSuccessRate]
	history := make([]float64, s.window)
	for i := range history {
		v := math.Floor(s.rng.Float64()*seedRateSpread) + seedRateBase
		history[i] = Clamp(v, rate.Min, rate.Max)
	}

	chart := s.specs[FieldChartData]
	bars := make([]float64, s.chartPoints)
	for i := range bars {
		bars[i] = Clamp(seedChartData[i%len(seedChartData)], chart.Min, chart.Max)
	}

	roi := s.specs[FieldGrowthROI]
	return model.MetricsState{
		GrowthROI:          int(math.Floor(Clamp(seedGrowthROI, roi.Min, roi.Max))),
		TotalLeads:         s.clampTenth(FieldTotalLeads, seedTotalLeads),
		ConversionLift:     s.clampTenth(FieldConversionLift, seedConversionLift),
		CPLReduction:       s.clampTenth(FieldCPLReduction, seedCPLReduction),
		IterationVelocity:  s.clampTenth(FieldIterationVelocity, seedIterationVelocity),
		ChartData:          bars,
		SuccessRateHistory: history,
	}
}

// Validate checks a state against the configured bounds and lengths.
func (s *Simulator) Validate(state model.MetricsState) error {
	scalars := []struct {
		field Field
		value float64
	}{
		{FieldGrowthROI, float64(state.GrowthROI)},
		{FieldTotalLeads, state.TotalLeads},
		{FieldConversionLift, state.ConversionLift},
		{FieldCPLReduction, state.CPLReduction},
		{FieldIterationVelocity, state.IterationVelocity},
	}
	for _, sc := range scalars {
		if err := s.check(sc.field, sc.value); err != nil {
			return err
		}
	}

	if len(state.ChartData) != s.chartPoints {
		return fmt.Errorf("%w: got %d, want %d", ErrChartLength, len(state.ChartData), s.chartPoints)
	}
	for _, h := range state.ChartData {
		if err := s.check(FieldChartData, h); err != nil {
			return err
		}
	}

	if len(state.SuccessRateHistory) != s.window {
		return fmt.Errorf("%w: got %d, want %d", ErrWindowLength, len(state.SuccessRateHistory), s.window)
	}
	for _, r := range state.SuccessRateHistory {
		if err := s.check(FieldSuccessRate, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) check(field Field, v float64) error {
	spec := s.specs[field]
	if !spec.Contains(v) {
		return fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfBounds, field, v, spec.Min, spec.Max)
	}
	return nil
}

// step drifts v by the field's range and clamps it to the field's interval.
func (s *Simulator) step(field Field, v float64) float64 {
	spec := s.specs[field]
	return Clamp(Drift(v, spec.Range, s.rng), spec.Min, spec.Max)
}

func (s *Simulator) clampTenth(field Field, v float64) float64 {
	spec := s.specs[field]
	return RoundTenth(Clamp(v, spec.Min, spec.Max))
}

// Drift adds a uniform perturbation in [-rng, +rng) to value.
func Drift(value, rng float64, src RandomSource) float64 {
	return value + (src.Float64()*rng*2 - rng)
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RoundTenth rounds v to one fractional digit, half away from zero.
func RoundTenth(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

// Slide drops the oldest element of window and appends v. The result is a
// new slice of the same length; window is not modified.
func Slide(window []float64, v float64) []float64 {
	if len(window) == 0 {
		return []float64{}
	}
	out := make([]float64, len(window))
	copy(out, window[1:])
	out[len(out)-1] = v
	return out
}
