package geometry

import (
	"slices"
	"sync"

	"github.com/okian/demandgen/internal/domain/model"
)

// Projector projects with a fixed domain and viewport and remembers the last
// result, so an unchanged history is not recomputed.
type Projector struct {
	domain   Domain
	viewport Viewport

	mu       sync.Mutex
	lastIn   []float64
	lastOut  model.ChartGeometry
	hasCache bool
	hits     uint64
}

// NewProjector creates a projector with the default domain and viewport.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{
		domain:   DefaultDomain,
		viewport: DefaultViewport,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Domain returns the configured value range.
func (p *Projector) Domain() Domain { return p.domain }

// Viewport returns the configured drawing rectangle.
func (p *Projector) Viewport() Viewport { return p.viewport }

// Project returns the geometry for history. The result is owned by the caller.
func (p *Projector) Project(history []float64) model.ChartGeometry {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasCache && slices.Equal(p.lastIn, history) {
		p.hits++
		return p.lastOut.Clone()
	}

	g := Project(history, p.domain.Min, p.domain.Max, p.viewport.Width, p.viewport.Height)
	p.lastIn = slices.Clone(history)
	p.lastOut = g
	p.hasCache = true
	return g.Clone()
}

// CacheHits reports how many calls were served from the memoized result.
func (p *Projector) CacheHits() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits
}
