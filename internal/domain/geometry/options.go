package geometry

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithDomain sets the value range. Ranges with Max < Min are ignored.
func WithDomain(d Domain) Option {
	return func(p *Projector) {
		if d.Max >= d.Min {
			p.domain = d
		}
	}
}

// WithViewport sets the drawing rectangle. Non-positive sizes are ignored.
func WithViewport(v Viewport) Option {
	return func(p *Projector) {
		if v.Width > 0 && v.Height > 0 {
			p.viewport = v
		}
	}
}
