package detect

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Result is the eventual outcome of a submitted detection.
type Result struct {
	Regions []Region
	Err     error
	Latency time.Duration
}

type job struct {
	ctx context.Context
	img image.Image
	out chan Result
}

// Async runs a Detector on a single worker goroutine. Submit returns a
// future immediately; the detector is only ever called from the worker and
// is closed once, after the last queued job finishes.
type Async struct {
	det    Detector
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	work   chan job
	wg     sync.WaitGroup
	once   sync.Once
	err    error
}

// NewAsync starts the worker. queue bounds pending submissions; values
// below 1 use 1.
func NewAsync(det Detector, queue int, logger *slog.Logger) *Async {
	if queue < 1 {
		queue = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Async{det: det, logger: logger, work: make(chan job, queue)}
	a.wg.Add(1)
	go a.run()
	return a
}

// Submit queues img for detection. The returned channel receives exactly
// one Result. It never blocks: a full queue yields ErrBusy and a closed
// detector ErrClosed.
func (a *Async) Submit(ctx context.Context, img image.Image) <-chan Result {
	out := make(chan Result, 1)
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		out <- Result{Err: ErrClosed}
		return out
	}
	select {
	case a.work <- job{ctx: ctx, img: img, out: out}:
	default:
		out <- Result{Err: ErrBusy}
	}
	return out
}

func (a *Async) run() {
	defer a.wg.Done()
	for j := range a.work {
		j.out <- a.detect(j)
	}
}

func (a *Async) detect(j job) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("detector panic", "error", r, "stack", string(debug.Stack()))
			res = Result{Err: fmt.Errorf("detect: panic: %v", r)}
		}
		res.Latency = time.Since(start)
	}()
	if err := j.ctx.Err(); err != nil {
		return Result{Err: err}
	}
	regions, err := a.det.Detect(j.ctx, j.img)
	return Result{Regions: regions, Err: err}
}

// Close stops accepting work, waits for queued jobs and closes the wrapped
// detector. Idempotent; later calls return the first error.
func (a *Async) Close() error {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.work)
		a.mu.Unlock()
		a.wg.Wait()
		a.err = a.det.Close()
	})
	return a.err
}
