package simulator

import (
	"math/rand"
	"sync"
)

// RandomSource yields uniform numbers in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// lockedSource serializes access to a math/rand generator, which is not safe
// for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newMathSource(seed int64) *lockedSource {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // simulated data, not security sensitive
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}
