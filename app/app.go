package app

import (
	"context"
	"fmt"
	"time"

	. "modernc.org/tk9.0"

	"github.com/soocke/facebox-go/ui/presenter"
	"github.com/soocke/facebox-go/ui/theme"
	"github.com/soocke/facebox-go/ui/view"
)

const shutdownTimeout = 5 * time.Second

// window is the windowed front end. Every pipeline and presenter call happens
// on the Tk event loop, which is the pipeline's main context.
type window struct {
	c       *AppContainer
	title   string
	refresh time.Duration
	afterID string
	exiting bool

	root    *view.RootView
	capture *presenter.CapturePresenter
	loop    *presenter.Loop
}

func NewWindow(title string, c *AppContainer) *window {
	refresh := time.Duration(c.Config.RefreshIntervalMS) * time.Millisecond
	if refresh <= 0 {
		refresh = 16 * time.Millisecond
	}
	return &window{c: c, title: title, refresh: refresh}
}

// Start builds the window, starts capture and blocks until the window is
// closed.
func (a *window) Start() {
	theme.InitStyles()
	App.WmTitle(a.title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", a.c.View.Width+16, a.c.View.Height+96))

	a.root = view.NewRootView(a.c.View, a.c.Lens, a.c.Logger)
	var onRegion func()
	if a.c.Picker != nil {
		onRegion = a.c.Picker.OpenOrFocus
	}
	a.capture = presenter.NewCapturePresenter(a.c.Capture, a.c.CaptureSvc, a.c.Overlay, a)
	a.root.Build(a.c.Renderer, a.capture.Toggle, onRegion, a.exitHandler)

	overlay := presenter.NewOverlayPresenter(a.c.Overlay, a.c.Preview, a.root)
	stats := presenter.NewStatsPresenter(a.c.Session, a.c.Capture, a.c.Pipeline, a.c.CaptureSvc, a.root)
	a.loop = presenter.NewLoop(a.c.Pipeline, a.c.Slot, overlay, stats, a.scheduleUpdate)

	a.capture.Enable()
	a.scheduleUpdate()
	App.Wait()
}

// PreviewReset clears both the preview source and the surface so the next
// redraw does not resurrect a stale frame.
func (a *window) PreviewReset() {
	a.c.Preview.Reset()
	a.root.PreviewReset()
}

func (a *window) SetRunning(running bool) { a.root.SetRunning(running) }

func (a *window) scheduleUpdate() {
	if a.exiting {
		return
	}
	a.afterID = TclAfter(a.refresh, func() { a.loop.Tick() })
}

func (a *window) exitHandler() {
	if a.exiting {
		return
	}
	a.exiting = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.c.Close(ctx); err != nil {
		a.c.Logger.Error("shutdown", "error", err)
	} else {
		a.c.Logger.Info("shutdown complete", "stats", presenter.FormatStats(a.c.Pipeline.Stats(), a.c.CaptureSvc.Stats()))
	}
	Destroy(App)
}
