package images

import (
	"image"

	"github.com/soocke/facebox-go/geometry"
)

// Canvas is an off-screen rendering surface. It keeps the last composed
// image instead of showing it.
type Canvas struct {
	render *Renderer
	view   geometry.Extent
	last   image.Image
	draws  uint64
}

func NewCanvas(render *Renderer, view geometry.Extent) *Canvas {
	return &Canvas{render: render, view: view}
}

// Draw outlines rects over preview. A nil preview draws on black.
func (c *Canvas) Draw(preview image.Image, rects []geometry.Rect) {
	if c == nil || c.render == nil {
		return
	}
	if img := c.render.Compose(preview, c.view, rects); img != nil {
		c.last = img
		c.draws++
	}
}

// Last returns the most recent composition, or nil before the first Draw.
func (c *Canvas) Last() image.Image {
	if c == nil {
		return nil
	}
	return c.last
}

func (c *Canvas) Draws() uint64 {
	if c == nil {
		return 0
	}
	return c.draws
}
