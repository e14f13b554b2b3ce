// Package hub fans swap updates out to many subscribers through a bounded
// ring buffer. Publishers never block: a slow subscriber falls behind and is
// told how many messages it skipped rather than applying backpressure to the
// pipeline.
package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultCapacity is the ring size used when the config does not override it.
const DefaultCapacity = 100

// ErrClosed is returned from Next after the hub shuts down.
var ErrClosed = errors.New("hub: closed")

// LaggedError reports that a subscriber fell out of the retained window. The
// subscriber's cursor has been advanced to the oldest retained message; the
// next Next call resumes from there.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("hub: subscriber lagged, skipped %d messages", e.Skipped)
}

// SwapUpdate is the curated outbound message shared by the gRPC and
// websocket surfaces. Reserve and amount fields keep full u64 precision;
// Price is the display-grade float the original feed exposes.
type SwapUpdate struct {
	Pair         string
	User         string
	IsToken0In   bool
	AmountIn     uint64
	AmountOut    uint64
	Reserve0     uint64
	Reserve1     uint64
	Price        float32
	VolumeUSD    float64
	HasVolumeUSD bool
	TxSig        string
	Timestamp    int64
	Slot         uint64
}

// Hub is a single-producer-friendly broadcast ring. All methods are safe for
// concurrent use.
type Hub struct {
	mu     sync.Mutex
	buf    []SwapUpdate
	head   uint64 // sequence number of the next write
	wake   chan struct{}
	closed bool
}

func New(capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Hub{
		buf:  make([]SwapUpdate, capacity),
		wake: make(chan struct{}),
	}
}

// Publish appends an update, overwriting the oldest retained message when
// the ring is full. It never blocks.
func (h *Hub) Publish(u SwapUpdate) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.buf[h.head%uint64(len(h.buf))] = u
	h.head++
	// Wake every blocked subscriber; each re-checks its cursor.
	close(h.wake)
	h.wake = make(chan struct{})
	h.mu.Unlock()
}

// Close releases all blocked subscribers. Further publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.wake)
	}
	h.mu.Unlock()
}

// Subscribe attaches a new subscriber positioned at the live edge: it sees
// only messages published after this call.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &Subscription{h: h, cursor: h.head}
}

// Subscription is a cursor into the hub's ring. Not safe for concurrent use;
// each forwarder goroutine owns exactly one.
type Subscription struct {
	h      *Hub
	cursor uint64
}

// Next returns the next update, blocking until one is available or ctx ends.
// When the subscriber has fallen out of the retained window it returns a
// *LaggedError and repositions the cursor at the oldest retained message so
// the caller can account for the gap and continue.
func (s *Subscription) Next(ctx context.Context) (SwapUpdate, error) {
	for {
		s.h.mu.Lock()
		oldest := uint64(0)
		if s.h.head > uint64(len(s.h.buf)) {
			oldest = s.h.head - uint64(len(s.h.buf))
		}
		if s.cursor < oldest {
			skipped := oldest - s.cursor
			s.cursor = oldest
			s.h.mu.Unlock()
			return SwapUpdate{}, &LaggedError{Skipped: skipped}
		}
		if s.cursor < s.h.head {
			u := s.h.buf[s.cursor%uint64(len(s.h.buf))]
			s.cursor++
			s.h.mu.Unlock()
			return u, nil
		}
		if s.h.closed {
			s.h.mu.Unlock()
			return SwapUpdate{}, ErrClosed
		}
		wake := s.h.wake
		s.h.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return SwapUpdate{}, ctx.Err()
		}
	}
}
