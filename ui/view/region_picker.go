package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/soocke/facebox-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// RegionPicker lets the user drag a translucent window over the screen area
// the screen source should capture. The chosen rectangle is persisted to
// the config file.
type RegionPicker struct {
	logger    *slog.Logger
	cfg       *config.Config
	cfgPath   string
	selection atomic.Pointer[image.Rectangle]
	win       *ToplevelWidget
}

// NewRegionPicker restores the saved selection from cfg.
func NewRegionPicker(cfg *config.Config, cfgPath string, logger *slog.Logger) *RegionPicker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &RegionPicker{logger: logger, cfg: cfg, cfgPath: cfgPath}
	if cfg != nil {
		if r := cfg.Selection(); r != nil {
			v.selection.Store(r)
		}
	}
	return v
}

// OpenOrFocus shows the picker window.
func (v *RegionPicker) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background("#10b981"))
	win.WmTitle("Capture Region")
	v.win = win
	w, h, x, y := 640, 360, 100, 100
	if r := v.ActiveRect(); r != nil {
		w, h, x, y = r.Dx(), r.Dy(), r.Min.X, r.Min.Y
	}
	WmGeometry(win.Window, fmt.Sprintf("%dx%d+%d+%d", w, h, x, y))
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-alpha", 0.35)
	controls := win.Frame()
	Grid(controls, Row(0), Column(0), Sticky("we"))
	confirm := win.Button(Txt("Use Region [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.destroy))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	clear := win.Button(Txt("Full Screen"), Command(v.Clear))
	Grid(clear, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
}

// Clear reverts to full-screen capture.
func (v *RegionPicker) Clear() {
	v.selection.Store(nil)
	if v.cfg != nil {
		v.cfg.SelectionW, v.cfg.SelectionH = 0, 0
		v.save()
	}
	v.destroy()
}

func (v *RegionPicker) confirm() {
	if v.win == nil {
		return
	}
	rect, ok := parseGeometry(WmGeometry(v.win.Window))
	if !ok {
		v.logger.Warn("region.geometry_unparsed")
		v.destroy()
		return
	}
	v.selection.Store(&rect)
	if v.cfg != nil {
		v.cfg.SelectionX, v.cfg.SelectionY = rect.Min.X, rect.Min.Y
		v.cfg.SelectionW, v.cfg.SelectionH = rect.Dx(), rect.Dy()
		v.save()
	}
	v.logger.Info("region.selected", "rect", rect.String())
	v.destroy()
}

func (v *RegionPicker) save() {
	if v.cfgPath == "" {
		return
	}
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.logger.Error("config save failed", "error", err)
	}
}

func (v *RegionPicker) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// ActiveRect returns the selection or nil for full screen. Safe to call from
// the capture goroutine.
func (v *RegionPicker) ActiveRect() *image.Rectangle {
	if v == nil {
		return nil
	}
	r := v.selection.Load()
	if r == nil || r.Empty() {
		return nil
	}
	cp := *r
	return &cp
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y"
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// parseGeometry parses a Tk geometry string into a screen rectangle.
func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
