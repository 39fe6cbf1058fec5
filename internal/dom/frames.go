package dom

import (
	"sync"
	"time"
)

// FrameScheduler batches callbacks to animation-frame boundaries. Work
// queued within one frame runs together at the next tick, which is what lets
// the bridge coalesce resize storms into a single redraw.
type FrameScheduler interface {
	// Request schedules fn to run at the next frame.
	Request(fn func())
}

// TickScheduler drives frames from a wall-clock ticker, the analog of
// requestAnimationFrame for embedders that keep a bridge alive across
// renders. The service itself renders previews per request and drives
// frames manually. The default interval approximates 60fps.
type TickScheduler struct {
	mu      sync.Mutex
	queue   []func()
	stop    chan struct{}
	stopped bool
}

// NewTickScheduler starts a scheduler ticking at the given interval.
func NewTickScheduler(interval time.Duration) *TickScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	s := &TickScheduler{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.flush()
			case <-s.stop:
				return
			}
		}
	}()

	return s
}

// Request schedules fn for the next tick.
func (s *TickScheduler) Request(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, fn)
}

// Stop halts the ticker goroutine. Pending callbacks are dropped.
func (s *TickScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stop)
}

func (s *TickScheduler) flush() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
}

// ManualScheduler runs frames only when Flush is called. Deterministic
// replacement for TickScheduler in tests and one-shot server-side renders.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Request queues fn for the next Flush.
func (s *ManualScheduler) Request(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

// Flush runs one frame: every callback queued before the call, in order.
// Returns the number of callbacks run.
func (s *ManualScheduler) Flush() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of callbacks waiting for the next frame.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
