package hub

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithMaxSubscribers caps the number of concurrent subscriptions.
func WithMaxSubscribers(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.maxSubscribers = n
		}
	}
}
