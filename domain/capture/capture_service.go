package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/facebox-go/geometry"
)

const captureStatsLogInterval = 5 * time.Second

// Options configures a capture service.
type Options struct {
	// Rotation is attached to every frame as sensor orientation metadata.
	Rotation geometry.Rotation
	// Interval paces the capture loop. Zero uses 33ms.
	Interval time.Duration
}

// Service grabs images on its own goroutine and offers them to a
// LatestSlot. Frames carry pooled buffers that are recycled on release.
type Service struct {
	grab   Grabber
	slot   *LatestSlot
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	captures       atomic.Uint64
	skipped        atomic.Uint64
	releases       atomic.Uint64
	doubleReleases atomic.Uint64
	captureNanos   atomic.Uint64
	sequence       atomic.Uint64
	lastCapture    atomic.Int64
	lastErr        atomic.Pointer[error]
	failing        atomic.Bool
}

// NewService constructs a stopped capture service feeding slot.
func NewService(grab Grabber, slot *LatestSlot, opts Options, logger *slog.Logger) *Service {
	if opts.Interval <= 0 {
		opts.Interval = 33 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{grab: grab, slot: slot, opts: opts, logger: logger}
}

func (s *Service) Running() bool { return s.running.Load() }

// Start launches the capture loop. Idempotent.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return
	}
	s.done = make(chan struct{})
	s.running.Store(true)
	s.wg.Add(1)
	go s.loop(s.done)
}

// Stop ends the capture loop and waits for it to exit. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return
	}
	close(s.done)
	s.wg.Wait()
	s.running.Store(false)
}

func (s *Service) loop(done <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()

	for {
		s.captureOnce()
		select {
		case <-done:
			return
		case <-logTicker.C:
			s.logStats()
		case <-ticker.C:
		}
	}
}

// captureOnce grabs one image and offers it to the slot.
func (s *Service) captureOnce() {
	start := time.Now()
	img, err := s.grab()
	if err != nil || img == nil {
		s.skipped.Add(1)
		if err != nil {
			s.lastErr.Store(&err)
			// Log binding failures on the transition only; the loop keeps its cadence.
			if s.failing.CompareAndSwap(false, true) {
				s.logger.Error("capture.bind", "error", err)
			}
		}
		return
	}
	if s.failing.CompareAndSwap(true, false) {
		s.logger.Info("capture.recovered")
	}
	pooled := copyToPooled(img)
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	s.lastCapture.Store(time.Now().UnixNano())
	seq := s.sequence.Add(1)
	s.slot.Offer(NewFrame(pooled, s.opts.Rotation, seq, s.onRelease))
}

func (s *Service) onRelease(f *Frame, first bool) {
	if !first {
		s.doubleReleases.Add(1)
		s.logger.Warn("capture.double_release", "sequence", f.Sequence)
		return
	}
	s.releases.Add(1)
	recycleFrame(f.Image)
}

func (s *Service) Stats() CaptureStats {
	captures := s.captures.Load()
	var avg time.Duration
	if total := s.captureNanos.Load(); captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	var last time.Time
	var age time.Duration
	if ns := s.lastCapture.Load(); ns > 0 {
		last = time.Unix(0, ns)
		age = time.Since(last)
	}
	var lastErr error
	if p := s.lastErr.Load(); p != nil {
		lastErr = *p
	}
	return CaptureStats{
		Captures:       captures,
		Skipped:        s.skipped.Load(),
		Dropped:        s.slot.Stats().Dropped,
		Releases:       s.releases.Load(),
		DoubleReleases: s.doubleReleases.Load(),
		AvgCapture:     avg,
		LastCapture:    last,
		LatestFrameAge: age,
		Sequence:       s.sequence.Load(),
		LastError:      lastErr,
	}
}

func (s *Service) logStats() {
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"dropped", stats.Dropped,
		"releases", stats.Releases,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}

var _ FrameSource = (*Service)(nil)
