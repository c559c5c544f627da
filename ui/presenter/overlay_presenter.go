package presenter

import (
	"image"

	"github.com/soocke/facebox-go/geometry"
)

// OverlaySource is the read side of the overlay model.
type OverlaySource interface {
	Rects() []geometry.Rect
	TakeRedraw() bool
}

// PreviewSource yields the newest preview image.
type PreviewSource interface {
	Latest() (image.Image, bool)
}

// OverlaySurface renders the overlay on top of a preview image.
type OverlaySurface interface {
	Draw(preview image.Image, rects []geometry.Rect)
}

// OverlayPresenter redraws the surface when the overlay changed or a new
// preview arrived. At most one redraw per Tick.
type OverlayPresenter struct {
	src     OverlaySource
	preview PreviewSource
	surface OverlaySurface
	base    image.Image
	redraws uint64
}

func NewOverlayPresenter(src OverlaySource, preview PreviewSource, surface OverlaySurface) *OverlayPresenter {
	return &OverlayPresenter{src: src, preview: preview, surface: surface}
}

// Tick is the display refresh callback. It reports whether it redrew.
func (p *OverlayPresenter) Tick() bool {
	if p == nil || p.src == nil || p.surface == nil {
		return false
	}
	redraw := p.src.TakeRedraw()
	if p.preview != nil {
		if img, fresh := p.preview.Latest(); fresh {
			p.base = img
			redraw = true
		}
	}
	if !redraw {
		return false
	}
	p.surface.Draw(p.base, p.src.Rects())
	p.redraws++
	return true
}

// Redraws counts completed redraws.
func (p *OverlayPresenter) Redraws() uint64 {
	if p == nil {
		return 0
	}
	return p.redraws
}
