// Package hub fans simulator snapshots out to any number of observers.
//
// Publishing never blocks the producer: a subscriber whose buffer is full
// misses that snapshot and catches up with the next one.
package hub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultBufferSize     = 16
	defaultMaxSubscribers = 256
)

// Publisher accepts snapshots for delivery.
type Publisher interface {
	// Publish delivers s to every subscriber with room in its buffer and
	// returns how many received it.
	Publish(ctx context.Context, s model.Snapshot) (int, error)
}

// Stats summarizes hub activity.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
}

// Hub is an in-memory broadcast of snapshots.
type Hub struct {
	bufferSize     int
	maxSubscribers int

	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

var _ Publisher = (*Hub)(nil)

// New creates a hub with configuration options.
func New(opts ...Option) *Hub {
	h := &Hub{
		bufferSize:     defaultBufferSize,
		maxSubscribers: defaultMaxSubscribers,
		subs:           make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(h)
	}
	metrics.UpdateHubSubscribers(0)
	return h
}

// Subscribe registers a new observer. The subscription ends when ctx is
// cancelled, Unsubscribe is called or the hub is closed; its channel is
// closed in every case.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	if len(h.subs) >= h.maxSubscribers {
		h.mu.Unlock()
		metrics.RecordErrorByComponent("hub", "too_many_subscribers")
		return nil, ErrTooManySubscribers
	}
	sub := &Subscription{
		id:   uuid.NewString(),
		ch:   make(chan model.Snapshot, h.bufferSize),
		done: make(chan struct{}),
		hub:  h,
	}
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()

	metrics.UpdateHubSubscribers(count)

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
			case <-sub.done:
			}
		}()
	}
	return sub, nil
}

// Publish implements Publisher. Each subscriber receives its own copy.
func (h *Hub) Publish(ctx context.Context, s model.Snapshot) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return 0, ErrClosed
	}

	delivered, dropped := 0, 0
	for _, sub := range h.subs {
		select {
		case sub.ch <- s.Clone():
			delivered++
		default:
			sub.dropped.Add(1)
			dropped++
		}
	}

	h.published.Add(uint64(delivered))
	metrics.RecordHubPublished(delivered)
	if dropped > 0 {
		h.dropped.Add(uint64(dropped))
		metrics.RecordHubDropped(dropped)
	}
	return delivered, nil
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns delivery counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Subscribers: h.Len(),
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// Close ends every subscription and rejects further use.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	for _, sub := range subs {
		sub.close()
	}
	h.mu.Unlock()

	metrics.UpdateHubSubscribers(0)
	return nil
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, sub.id)
	sub.close()
	count := len(h.subs)
	h.mu.Unlock()

	metrics.UpdateHubSubscribers(count)
}

// Subscription is one observer's view of the snapshot stream.
type Subscription struct {
	id      string
	ch      chan model.Snapshot
	done    chan struct{}
	hub     *Hub
	once    sync.Once
	dropped atomic.Uint64
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// C returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan model.Snapshot { return s.ch }

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Dropped returns how many snapshots this subscriber missed.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Unsubscribe ends the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.hub.remove(s)
}

// close must be called with the hub lock held.
func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.done)
		close(s.ch)
	})
}
