package images

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/soocke/facebox-go/geometry"
)

// Style is the fixed look of overlay outlines.
type Style struct {
	CornerRadius float64
	StrokeWidth  float64
	Color        string // hex, e.g. "#00ff00"
}

// DefaultStyle is a 6px green outline with 20px rounded corners.
var DefaultStyle = Style{CornerRadius: 20, StrokeWidth: 6, Color: "#00ff00"}

// Renderer draws overlay rectangles as rounded outlines on top of a preview.
type Renderer struct {
	style Style
	color color.Color
}

func NewRenderer(style Style) (*Renderer, error) {
	c, err := colorful.Hex(style.Color)
	if err != nil {
		return nil, fmt.Errorf("overlay color %q: %w", style.Color, err)
	}
	if style.StrokeWidth <= 0 {
		style.StrokeWidth = DefaultStyle.StrokeWidth
	}
	if style.CornerRadius < 0 {
		style.CornerRadius = 0
	}
	return &Renderer{style: style, color: c.Clamped()}, nil
}

// Compose returns a view-sized image: base (or black when nil) with every
// non-empty rect outlined. base is drawn at the origin and is expected to be
// view-sized already.
func (r *Renderer) Compose(base image.Image, view geometry.Extent, rects []geometry.Rect) image.Image {
	if view.Empty() {
		return nil
	}
	dc := gg.NewContext(view.Width, view.Height)
	if base != nil {
		dc.DrawImage(base, 0, 0)
	} else {
		dc.SetRGB(0, 0, 0)
		dc.Clear()
	}
	r.Draw(dc, rects)
	return dc.Image()
}

// Draw strokes rects into dc.
func (r *Renderer) Draw(dc *gg.Context, rects []geometry.Rect) {
	dc.SetColor(r.color)
	dc.SetLineWidth(r.style.StrokeWidth)
	for _, rc := range rects {
		if rc.IsEmpty() {
			continue
		}
		rc = rc.Canon()
		w, h := rc.Width(), rc.Height()
		radius := min(r.style.CornerRadius, w/2, h/2)
		dc.DrawRoundedRectangle(rc.Left, rc.Top, w, h, radius)
		dc.Stroke()
	}
}
