package capture

import (
	"sync"
	"sync/atomic"
)

// LatestSlot is a single-frame mailbox between the capture loop and the
// pipeline. Offering a frame replaces any frame still waiting; the displaced
// frame is released and counted as dropped, never queued.
type LatestSlot struct {
	mu     sync.Mutex
	frame  *Frame
	closed bool
	ready  chan struct{}

	offered atomic.Uint64
	taken   atomic.Uint64
	dropped atomic.Uint64
}

// SlotStats is a snapshot of slot counters.
type SlotStats struct {
	Offered uint64
	Taken   uint64
	Dropped uint64
	Pending bool
}

func NewLatestSlot() *LatestSlot {
	return &LatestSlot{ready: make(chan struct{}, 1)}
}

// Offer stores f as the pending frame. It reports whether an older pending
// frame was displaced. After Close the frame is released immediately.
func (s *LatestSlot) Offer(f *Frame) (displaced bool) {
	if f == nil {
		return false
	}
	s.offered.Add(1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.dropped.Add(1)
		f.Release()
		return false
	}
	old := s.frame
	s.frame = f
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	if old != nil {
		s.dropped.Add(1)
		old.Release()
		return true
	}
	return false
}

// Take removes and returns the pending frame, or nil. It never blocks.
func (s *LatestSlot) Take() *Frame {
	s.mu.Lock()
	f := s.frame
	s.frame = nil
	s.mu.Unlock()
	if f != nil {
		s.taken.Add(1)
	}
	return f
}

// Ready signals after an Offer. A signal may be stale; Take can return nil.
func (s *LatestSlot) Ready() <-chan struct{} { return s.ready }

// Close releases any pending frame. Later offers are released on arrival.
// Idempotent.
func (s *LatestSlot) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	f := s.frame
	s.frame = nil
	s.mu.Unlock()
	if f != nil {
		s.dropped.Add(1)
		f.Release()
	}
}

func (s *LatestSlot) Stats() SlotStats {
	s.mu.Lock()
	pending := s.frame != nil
	s.mu.Unlock()
	return SlotStats{
		Offered: s.offered.Load(),
		Taken:   s.taken.Load(),
		Dropped: s.dropped.Load(),
		Pending: pending,
	}
}
