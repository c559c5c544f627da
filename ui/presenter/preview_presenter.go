package presenter

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/soocke/facebox-go/domain/capture"
	"github.com/soocke/facebox-go/geometry"
	"github.com/soocke/facebox-go/ui/images"
)

// PreviewPresenter turns raw frames into view-sized preview images. It runs
// on the main context and keeps only the newest preview; the frame itself
// is not retained past OnFrame.
type PreviewPresenter struct {
	view   geometry.Extent
	mirror bool
	filter imaging.ResampleFilter

	latest image.Image
	fresh  bool
	frames uint64
}

// NewPreviewPresenter prepares previews for view. Fast mode uses nearest
// neighbour sampling.
func NewPreviewPresenter(view geometry.Extent, lens geometry.LensFacing, fast bool) *PreviewPresenter {
	filter := imaging.Linear
	if fast {
		filter = imaging.NearestNeighbor
	}
	return &PreviewPresenter{view: view, mirror: lens.Mirrored(), filter: filter}
}

// OnFrame renders f. Matches the pipeline's preview hook.
func (p *PreviewPresenter) OnFrame(f *capture.Frame, _ geometry.Extent) {
	if p == nil || f == nil || f.Image == nil {
		return
	}
	if img := images.FillCenter(f.Image, p.view, f.Rotation, p.mirror, p.filter); img != nil {
		p.latest = img
		p.fresh = true
		p.frames++
	}
}

// Latest returns the newest preview and whether it changed since the last
// call.
func (p *PreviewPresenter) Latest() (image.Image, bool) {
	if p == nil {
		return nil, false
	}
	fresh := p.fresh
	p.fresh = false
	return p.latest, fresh
}

// Reset drops the preview; the next redraw shows a blank surface.
func (p *PreviewPresenter) Reset() {
	if p == nil {
		return
	}
	p.latest = nil
	p.fresh = true
}

// Frames counts previews rendered.
func (p *PreviewPresenter) Frames() uint64 {
	if p == nil {
		return 0
	}
	return p.frames
}
