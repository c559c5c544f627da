package geometry

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Rect is an axis-aligned rectangle given by its four edges. The zero value is
// the empty sentinel returned for undefined transforms.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// R is shorthand for a Rect with the given edges.
func R(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// FromImageRect converts an integer pixel rectangle.
func FromImageRect(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{
		Left:   float64(r.Min.X),
		Top:    float64(r.Min.Y),
		Right:  float64(r.Max.X),
		Bottom: float64(r.Max.Y),
	}
}

// ImageRect rounds the rectangle outward to whole pixels.
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left)),
		int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)),
		int(math.Ceil(r.Bottom)),
	)
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// IsEmpty reports whether r is the all-zero sentinel.
func (r Rect) IsEmpty() bool { return r == Rect{} }

// Canon returns r with edges swapped where needed so Left <= Right and Top <= Bottom.
func (r Rect) Canon() Rect {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", r.Left, r.Top, r.Right, r.Bottom)
}

// Extent is the pixel size of an image buffer or view surface.
type Extent struct {
	Width, Height int
}

// Ext is shorthand for an Extent.
func Ext(w, h int) Extent { return Extent{Width: w, Height: h} }

// ExtentOf returns the size of an image's bounds.
func ExtentOf(img image.Image) Extent {
	if img == nil {
		return Extent{}
	}
	b := img.Bounds()
	return Extent{Width: b.Dx(), Height: b.Dy()}
}

// Empty reports whether either side is zero or negative.
func (e Extent) Empty() bool { return e.Width <= 0 || e.Height <= 0 }

// Rotated returns the effective extent after the sensor rotation is applied:
// width and height swap for quarter turns.
func (e Extent) Rotated(r Rotation) Extent {
	if r.SwapsAxes() {
		return Extent{Width: e.Height, Height: e.Width}
	}
	return e
}

func (e Extent) String() string { return fmt.Sprintf("%dx%d", e.Width, e.Height) }

// Rotation is a clockwise sensor rotation in degrees relative to the display.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// Normalize folds any multiple of 90 (including negatives) into [0, 360).
// Values that are not quarter turns are returned unchanged and fail Valid.
func (r Rotation) Normalize() Rotation {
	if r%90 != 0 {
		return r
	}
	n := r % 360
	if n < 0 {
		n += 360
	}
	return n
}

// Valid reports whether r is one of 0, 90, 180 or 270.
func (r Rotation) Valid() bool {
	switch r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return true
	}
	return false
}

// SwapsAxes reports whether width and height trade places under r.
func (r Rotation) SwapsAxes() bool { return r%180 != 0 }

// LensFacing selects the active camera lens.
type LensFacing int

const (
	LensBack LensFacing = iota
	LensFront
)

func (l LensFacing) String() string {
	switch l {
	case LensFront:
		return "front"
	case LensBack:
		return "back"
	default:
		return "unknown"
	}
}

// Mirrored reports whether overlay geometry must be reflected horizontally.
func (l LensFacing) Mirrored() bool { return l == LensFront }

// ParseLensFacing accepts "front" or "back" (case-insensitive).
func ParseLensFacing(s string) (LensFacing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front":
		return LensFront, nil
	case "back":
		return LensBack, nil
	}
	return LensBack, fmt.Errorf("geometry: unknown lens facing %q", s)
}
