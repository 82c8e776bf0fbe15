package simulator

import "time"

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithRandomSource injects the source of uniform numbers in [0, 1).
func WithRandomSource(src RandomSource) Option {
	return func(s *Simulator) {
		if src != nil {
			s.rng = src
		}
	}
}

// WithSeed makes the default random source deterministic. Zero keeps a time-based seed.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		if seed != 0 {
			s.rng = newMathSource(seed)
		}
	}
}

// WithFieldSpec overrides the bounds and step size of one field. Invalid specs are ignored.
func WithFieldSpec(field Field, spec FieldSpec) Option {
	return func(s *Simulator) {
		if _, known := s.specs[field]; known && spec.Valid() {
			s.specs[field] = spec
		}
	}
}

// WithDelayRange sets the jittered interval between ticks.
func WithDelayRange(minDelay, maxDelay time.Duration) Option {
	return func(s *Simulator) {
		if minDelay > 0 && maxDelay >= minDelay {
			s.minDelay = minDelay
			s.maxDelay = maxDelay
		}
	}
}

// WithWindow sets the success-rate history length used by Seed and Validate.
func WithWindow(n int) Option {
	return func(s *Simulator) {
		if n >= minWindow {
			s.window = n
		}
	}
}

// WithChartPoints sets the chart data length used by Seed and Validate.
func WithChartPoints(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.chartPoints = n
		}
	}
}
