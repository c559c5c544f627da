package app

import (
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/soocke/facebox-go/ui/images"
	"github.com/soocke/facebox-go/ui/presenter"
)

// HeadlessOptions controls a run without a window.
type HeadlessOptions struct {
	// Duration stops the run after this long. Zero runs until ctx is done.
	Duration time.Duration
	// Snapshot, when set, receives the last composed preview and overlay.
	// The format follows the file extension.
	Snapshot string
	// StatsInterval paces the counters log line. Zero uses 5s.
	StatsInterval time.Duration
}

// RunHeadless drives the pipeline from its own main context until ctx is
// done or Duration elapses, then shuts everything down.
func RunHeadless(ctx context.Context, c *AppContainer, opts HeadlessOptions) (err error) {
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 5 * time.Second
	}
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	// Headless redraws happen off-screen, on the pipeline's main context,
	// as soon as a publish marks the overlay dirty.
	canvas := images.NewCanvas(c.Renderer, c.View)
	overlay := presenter.NewOverlayPresenter(c.Overlay, c.Preview, canvas)
	c.OnInvalidate = func() { overlay.Tick() }

	c.Capture.SetEnabled(true)
	c.CaptureSvc.Start()
	c.Logger.Info("headless run started", "duration", opts.Duration.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Pipeline.Run(gctx, c.Slot)
	})
	g.Go(func() error {
		t := time.NewTicker(opts.StatsInterval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-t.C:
				c.Session.OnTick(true, now)
				c.Logger.Info("stats",
					"summary", presenter.FormatStats(c.Pipeline.Stats(), c.CaptureSvc.Stats()),
					"run", c.Session.Times().Run.Round(time.Second).String(),
				)
			}
		}
	})
	err = g.Wait()

	// Run already drained the pipeline; Close is idempotent for it.
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Append(err, c.Close(sctx))
	c.Capture.SetEnabled(false)

	if opts.Snapshot != "" {
		err = multierr.Append(err, saveSnapshot(c, canvas, opts.Snapshot))
	}
	c.Logger.Info("headless run finished",
		"summary", presenter.FormatStats(c.Pipeline.Stats(), c.CaptureSvc.Stats()),
		"previews", c.Preview.Frames(),
		"redraws", canvas.Draws(),
	)
	return err
}

func saveSnapshot(c *AppContainer, canvas *images.Canvas, path string) error {
	if canvas.Last() == nil {
		// nothing was ever published; show the bare preview
		img, _ := c.Preview.Latest()
		canvas.Draw(img, c.Overlay.Rects())
	}
	img := canvas.Last()
	if img == nil {
		return fmt.Errorf("snapshot: nothing to render")
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	c.Logger.Info("snapshot saved", "path", path, "regions", len(c.Overlay.Rects()))
	return nil
}
