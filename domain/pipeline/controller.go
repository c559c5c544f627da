// Package pipeline moves frames from the capture slot through the detector
// and publishes the detected regions, mapped into view coordinates, to the
// overlay. Every exported method except Stats must be called from the single
// main context that owns frame delivery and overlay writes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/soocke/facebox-go/domain/capture"
	"github.com/soocke/facebox-go/domain/detect"
	"github.com/soocke/facebox-go/geometry"
)

// ErrNoSlot is returned by Run when it has no frame slot to drain.
var ErrNoSlot = errors.New("pipeline: nil frame slot")

// Submitter is the asynchronous detection capability. Submit must not block;
// the returned channel yields exactly one result.
type Submitter interface {
	Submit(ctx context.Context, img image.Image) <-chan detect.Result
	Close() error
}

// Publisher receives the mapped overlay, taking ownership of the slice.
type Publisher interface {
	Publish(rects []geometry.Rect)
}

// ExtentSource reports the current size of the preview surface.
type ExtentSource interface {
	Extent() geometry.Extent
}

// ExtentFunc adapts a function to ExtentSource.
type ExtentFunc func() geometry.Extent

func (f ExtentFunc) Extent() geometry.Extent { return f() }

// Options wires a Controller.
type Options struct {
	Detector Submitter
	Overlay  Publisher
	View     ExtentSource
	Lens     geometry.LensFacing
	// MaxInFlight bounds concurrent detections. Values below 1 use 1.
	MaxInFlight int
	// Preview, when set, sees every frame on the main context before it is
	// submitted. It must not retain the frame or its image.
	Preview func(f *capture.Frame, upright geometry.Extent)
	Logger  *slog.Logger
}

// Stats is a snapshot of controller counters.
type Stats struct {
	Received, Submitted uint64
	Succeeded, Failed   uint64
	Skipped, Stale      uint64
	Cancelled           uint64
	Released, Published uint64
	InFlight            int
	LastLatency         time.Duration
}

type completion struct {
	cy  *cycle
	res detect.Result
}

// Controller runs the per-frame detection cycle.
type Controller struct {
	det      Submitter
	overlay  Publisher
	view     ExtentSource
	mirror   bool
	maxIn    int
	preview  func(*capture.Frame, geometry.Extent)
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	posted   chan completion
	closeErr chan error

	// main context only
	seq           uint64
	lastPublished uint64
	inFlight      int
	torn          bool

	received, submitted atomic.Uint64
	succeeded, failed   atomic.Uint64
	skipped, stale      atomic.Uint64
	cancelled           atomic.Uint64
	released, published atomic.Uint64
	inFlightGauge       atomic.Int64
	lastLatency         atomic.Int64
}

// New returns a controller. A nil Detector yields a controller that releases
// every frame unprocessed.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = 1
	}
	if opts.View == nil {
		opts.View = ExtentFunc(func() geometry.Extent { return geometry.Extent{} })
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		det:     opts.Detector,
		overlay: opts.Overlay,
		view:    opts.View,
		mirror:  opts.Lens.Mirrored(),
		maxIn:   opts.MaxInFlight,
		preview: opts.Preview,
		logger:  opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
		posted:  make(chan completion, opts.MaxInFlight+1),
	}
}

// OnFrame starts a cycle for f. The frame is released exactly once, either
// here when no detector is available or when its completion is processed.
func (c *Controller) OnFrame(f *capture.Frame) {
	if f == nil {
		return
	}
	c.seq++
	cy := &cycle{frame: f, seq: c.seq, state: Received}
	c.received.Add(1)

	cy.source = f.Extent().Rotated(f.Rotation)
	cy.advance(RotationNormalized, c.logger)

	if c.preview != nil {
		c.callPreview(cy)
	}
	if c.det == nil || c.torn {
		c.skipped.Add(1)
		c.release(cy)
		return
	}
	fut := c.det.Submit(c.ctx, f.Image)
	cy.submitted = time.Now()
	cy.advance(DetectionSubmitted, c.logger)
	c.submitted.Add(1)
	c.inFlight++
	c.inFlightGauge.Store(int64(c.inFlight))
	go c.await(cy, fut)
}

// await runs off the main context and posts the completion back.
func (c *Controller) await(cy *cycle, fut <-chan detect.Result) {
	res := <-fut
	c.posted <- completion{cy: cy, res: res}
}

// Drain processes every completion posted so far without blocking. It
// returns the number processed.
func (c *Controller) Drain() int {
	n := 0
	for {
		select {
		case cm := <-c.posted:
			c.complete(cm)
			n++
		default:
			return n
		}
	}
}

// Pump takes the newest frame from slot when below the in-flight limit.
// Detections are serialized by default, so while one is running the slot
// keeps replacing its frame and only the newest is analyzed next.
func (c *Controller) Pump(slot *capture.LatestSlot) bool {
	if slot == nil || c.inFlight >= c.maxIn {
		return false
	}
	f := slot.Take()
	if f == nil {
		return false
	}
	c.OnFrame(f)
	return true
}

// Run is the main context for headless operation. It returns once ctx is
// done and every in-flight frame has been released. slot is required.
func (c *Controller) Run(ctx context.Context, slot *capture.LatestSlot) error {
	if slot == nil {
		return ErrNoSlot
	}
	for {
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return c.Shutdown(sctx)
		case <-slot.Ready():
			c.Pump(slot)
		case cm := <-c.posted:
			c.complete(cm)
			c.Pump(slot)
		}
	}
}

func (c *Controller) complete(cm completion) {
	cy := cm.cy
	c.inFlight--
	c.inFlightGauge.Store(int64(c.inFlight))
	c.lastLatency.Store(int64(cm.res.Latency))
	defer c.release(cy)

	if c.torn {
		c.cancelled.Add(1)
		c.logger.Debug("pipeline.late_completion", "seq", cy.seq)
		return
	}
	if cm.res.Err != nil {
		cy.advance(DetectionFailed, c.logger)
		c.failed.Add(1)
		c.logger.Debug("pipeline.detect_failed", "seq", cy.seq, "error", cm.res.Err)
		return
	}
	cy.advance(DetectionSucceeded, c.logger)
	c.succeeded.Add(1)
	if cy.seq < c.lastPublished {
		c.stale.Add(1)
		c.logger.Debug("pipeline.stale", "seq", cy.seq, "last_published", c.lastPublished)
		return
	}
	t := geometry.NewTransform(cy.source, c.view.Extent(), c.mirror)
	raw := cy.frame.Extent()
	upright := make([]geometry.Rect, 0, len(cm.res.Regions))
	for _, r := range cm.res.Regions {
		upright = append(upright, geometry.Upright(geometry.FromImageRect(r.Box), raw, cy.frame.Rotation))
	}
	rects := geometry.MapAll(make([]geometry.Rect, 0, len(upright)), upright, t)
	if c.publish(cy, rects) {
		c.lastPublished = cy.seq
		c.published.Add(1)
	}
}

func (c *Controller) publish(cy *cycle, rects []geometry.Rect) (ok bool) {
	if c.overlay == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("pipeline.publish_panic", "seq", cy.seq, "error", r, "stack", string(debug.Stack()))
			ok = false
		}
	}()
	c.overlay.Publish(rects)
	return true
}

func (c *Controller) callPreview(cy *cycle) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("pipeline.preview_panic", "seq", cy.seq, "error", r)
		}
	}()
	c.preview(cy.frame, cy.source)
}

func (c *Controller) release(cy *cycle) {
	if !cy.frame.Release() {
		c.logger.Error("pipeline.double_release", "seq", cy.seq, "frame_seq", cy.frame.Sequence)
	}
	cy.advance(FrameReleased, c.logger)
	c.released.Add(1)
}

// Teardown detaches and closes the detector. Later frames are released
// unprocessed and completions still in flight become no-ops apart from the
// release. Close runs in the background; Shutdown collects its error.
func (c *Controller) Teardown() {
	if c.torn {
		return
	}
	c.torn = true
	c.cancel()
	det := c.det
	c.det = nil
	c.closeErr = make(chan error, 1)
	if det == nil {
		c.closeErr <- nil
		return
	}
	go func() { c.closeErr <- det.Close() }()
}

// Shutdown tears down the detector and processes completions until nothing
// is in flight or ctx expires.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.Teardown()
	for c.inFlight > 0 {
		select {
		case cm := <-c.posted:
			c.complete(cm)
		case <-ctx.Done():
			return fmt.Errorf("pipeline: %d frames still in flight: %w", c.inFlight, ctx.Err())
		}
	}
	select {
	case err := <-c.closeErr:
		c.closeErr <- err
		if err != nil && !errors.Is(err, detect.ErrClosed) {
			return fmt.Errorf("pipeline: close detector: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline: close detector: %w", ctx.Err())
	}
}

// Stats may be called from any goroutine.
func (c *Controller) Stats() Stats {
	return Stats{
		Received:    c.received.Load(),
		Submitted:   c.submitted.Load(),
		Succeeded:   c.succeeded.Load(),
		Failed:      c.failed.Load(),
		Skipped:     c.skipped.Load(),
		Stale:       c.stale.Load(),
		Cancelled:   c.cancelled.Load(),
		Released:    c.released.Load(),
		Published:   c.published.Load(),
		InFlight:    int(c.inFlightGauge.Load()),
		LastLatency: time.Duration(c.lastLatency.Load()),
	}
}
