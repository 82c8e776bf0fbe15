package streamcheck

import (
	"time"

	"github.com/okian/demandgen/internal/domain/simulator"
)

// Default run settings.
const (
	DefaultFrames      = 20
	DefaultTimeout     = 10 * time.Second
	DefaultMaxDialTime = 30 * time.Second
)

// Config holds settings for one verification run.
type Config struct {
	BaseURL     string        // Base URL of the service, e.g. http://localhost:9080
	Frames      int           // Number of frames to read after the first
	Timeout     time.Duration // Per-frame and per-request timeout
	MaxDialTime time.Duration // Upper bound on dial retries
	Verbose     bool          // Log every frame

	// Specs bounds each field. Nil uses simulator.DefaultSpecs.
	Specs map[simulator.Field]simulator.FieldSpec
}

// DefaultConfig returns a Config aimed at a local server.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:9080",
		Frames:      DefaultFrames,
		Timeout:     DefaultTimeout,
		MaxDialTime: DefaultMaxDialTime,
	}
}

// Stats summarizes a run.
type Stats struct {
	RunID         string
	Frames        int
	Consecutive   int // frames whose predecessor had the previous sequence
	Gaps          int // frames that skipped at least one sequence
	Failures      int
	FirstSequence uint64
	LastSequence  uint64
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
