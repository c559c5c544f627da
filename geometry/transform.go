// Package geometry maps rectangles from analyzed-image space into preview
// space under the center-crop fill policy used by the preview renderer.
package geometry

// Transform is a precomputed source-to-destination mapping. The zero value is
// invalid and maps every rectangle to the empty sentinel.
type Transform struct {
	scale  float64
	dx, dy float64
	destW  float64
	mirror bool
	valid  bool
}

// NewTransform computes the fill scale and centering offsets for mapping
// src-space rectangles into dst. The scale is the larger of the two axis
// ratios, so the scaled source covers dst and overflows on the other axis.
func NewTransform(src, dst Extent, mirror bool) Transform {
	if src.Empty() || dst.Empty() {
		return Transform{}
	}
	sw, sh := float64(src.Width), float64(src.Height)
	dw, dh := float64(dst.Width), float64(dst.Height)
	scale := max(dw/sw, dh/sh)
	return Transform{
		scale:  scale,
		dx:     (dw - sw*scale) / 2,
		dy:     (dh - sh*scale) / 2,
		destW:  dw,
		mirror: mirror,
		valid:  true,
	}
}

// Valid reports whether both extents were non-empty.
func (t Transform) Valid() bool { return t.valid }

// Scale returns the uniform source-to-destination scale factor.
func (t Transform) Scale() float64 { return t.scale }

// Offset returns the centering offsets. Negative values are cropped margin.
func (t Transform) Offset() (dx, dy float64) { return t.dx, t.dy }

// Apply maps r into destination space.
func (t Transform) Apply(r Rect) Rect {
	if !t.valid {
		return Rect{}
	}
	out := Rect{
		Left:   r.Left*t.scale + t.dx,
		Top:    r.Top*t.scale + t.dy,
		Right:  r.Right*t.scale + t.dx,
		Bottom: r.Bottom*t.scale + t.dy,
	}
	if t.mirror {
		out.Left, out.Right = t.destW-out.Right, t.destW-out.Left
	}
	return out
}

// Map is the one-shot form of NewTransform(src, dst, mirror).Apply(r).
func Map(r Rect, src, dst Extent, mirror bool) Rect {
	return NewTransform(src, dst, mirror).Apply(r)
}

// MapAll appends the mapped form of every rectangle in rs to dst.
func MapAll(dst []Rect, rs []Rect, t Transform) []Rect {
	for _, r := range rs {
		dst = append(dst, t.Apply(r))
	}
	return dst
}

// Upright moves r from the raw sensor buffer of size raw into the upright
// (display-oriented) image produced by rotating the buffer clockwise by rot.
// The result lives in raw.Rotated(rot) space.
func Upright(r Rect, raw Extent, rot Rotation) Rect {
	w, h := float64(raw.Width), float64(raw.Height)
	switch rot.Normalize() {
	case Rotation90:
		return Rect{Left: h - r.Bottom, Top: r.Left, Right: h - r.Top, Bottom: r.Right}
	case Rotation180:
		return Rect{Left: w - r.Right, Top: h - r.Bottom, Right: w - r.Left, Bottom: h - r.Top}
	case Rotation270:
		return Rect{Left: r.Top, Top: w - r.Right, Right: r.Bottom, Bottom: w - r.Left}
	}
	return r
}
