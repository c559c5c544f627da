package view

import (
	"image"
	"log/slog"

	"github.com/soocke/facebox-go/geometry"
	"github.com/soocke/facebox-go/ui/images"
	"github.com/soocke/facebox-go/ui/model"
	"github.com/soocke/facebox-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level layout: a control strip on top and the
// overlay surface below it.
type RootView struct {
	logger *slog.Logger
	view   geometry.Extent
	lens   geometry.LensFacing

	Stats   *StatsView
	Overlay *OverlayView

	StateLabel *LabelWidget
	toggleBtn  *ButtonWidget
}

func NewRootView(view geometry.Extent, lens geometry.LensFacing, logger *slog.Logger) *RootView {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RootView{logger: logger, view: view, lens: lens}
}

// Build constructs the layout. onRegion may be nil when the source has no
// selectable region.
func (rv *RootView) Build(render *images.Renderer, onToggle, onRegion, onExit func()) {
	if rv == nil {
		return
	}
	strip := Frame(Background(theme.CurrentPalette().AppBg))
	Grid(strip, Row(0), Column(0), Columnspan(4), Sticky("we"), Padx("0.3m"), Pady("0.3m"))

	rv.Stats = NewStatsView(strip, 0)
	rv.StateLabel = Label(append(theme.StateLabel(false), Txt(rv.stateText(false)))...)
	Grid(rv.StateLabel, In(strip), Row(0), Column(2), Sticky("we"), Padx("0.4m"))

	btns := Frame(Background(theme.CurrentPalette().AppBg))
	Grid(btns, In(strip), Row(0), Column(3), Sticky("ne"), Padx("0.3m"))
	rv.toggleBtn = Button(append(theme.PrimaryButton(), Txt("Start"), Command(onToggle))...)
	Grid(rv.toggleBtn, In(btns), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	col := 1
	if onRegion != nil {
		regionBtn := Button(append(theme.PrimaryButton(), Txt("Region"), Command(onRegion))...)
		Grid(regionBtn, In(btns), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		col++
	}
	exitBtn := Button(append(theme.DangerButton(), Txt("Exit"), Command(onExit))...)
	Grid(exitBtn, In(btns), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	rv.Overlay = NewOverlayView(1, rv.view, render)
}

func (rv *RootView) stateText(running bool) string {
	s := "Stopped"
	if running {
		s = "Running"
	}
	return s + " · " + rv.lens.String()
}

// SetRunning updates the state badge and the toggle caption.
func (rv *RootView) SetRunning(running bool) {
	if rv == nil || rv.StateLabel == nil {
		return
	}
	rv.StateLabel.Configure(append(theme.StateLabel(running), Txt(rv.stateText(running)))...)
	caption := "Start"
	if running {
		caption = "Stop"
	}
	rv.toggleBtn.Configure(Txt(caption))
	rv.logger.Debug("capture state", "running", running)
}

// PreviewReset blanks the overlay surface.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Overlay != nil {
		rv.Overlay.PreviewReset()
	}
}

// Draw proxies to the overlay surface.
func (rv *RootView) Draw(preview image.Image, rects []geometry.Rect) {
	if rv != nil && rv.Overlay != nil {
		rv.Overlay.Draw(preview, rects)
	}
}

// SetSession proxies to the stats strip.
func (rv *RootView) SetSession(t model.SessionTimes) {
	if rv != nil && rv.Stats != nil {
		rv.Stats.SetSession(t)
	}
}

// SetStats proxies to the stats strip.
func (rv *RootView) SetStats(text string) {
	if rv != nil && rv.Stats != nil {
		rv.Stats.SetStats(text)
	}
}
