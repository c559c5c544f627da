package view

import (
	"image"

	"github.com/soocke/facebox-go/geometry"
	"github.com/soocke/facebox-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// OverlayView is the on-screen rendering surface: a label whose photo is
// replaced with the composed preview plus overlay on every redraw.
type OverlayView struct {
	label  *LabelWidget
	photo  *Img // last Tk photo, deleted before replacement
	ext    geometry.Extent
	render *images.Renderer
}

// NewOverlayView grids the surface at row, spanning the window width.
func NewOverlayView(row int, ext geometry.Extent, render *images.Renderer) *OverlayView {
	v := &OverlayView{ext: ext, render: render}
	v.photo = NewPhoto(Data(images.EncodePNG(v.placeholder())))
	v.label = Label(Image(v.photo), Borderwidth(1), Relief("sunken"))
	Grid(v.label, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func (v *OverlayView) placeholder() image.Image {
	return image.NewRGBA(image.Rect(0, 0, max(1, v.ext.Width), max(1, v.ext.Height)))
}

// Draw outlines rects over preview and shows the result. A nil preview
// draws on black.
func (v *OverlayView) Draw(preview image.Image, rects []geometry.Rect) {
	if v == nil || v.render == nil {
		return
	}
	v.show(v.render.Compose(preview, v.ext, rects))
}

func (v *OverlayView) show(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.photo))
}

// PreviewReset blanks the surface.
func (v *OverlayView) PreviewReset() {
	if v == nil {
		return
	}
	v.show(v.placeholder())
}
