package capture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/vova616/screenshot"
	xdraw "golang.org/x/image/draw"

	"github.com/soocke/facebox-go/geometry"
)

// Grabber produces one raw image per call.
type Grabber func() (*image.RGBA, error)

// ScreenGrabber captures the selection rectangle when one is set, otherwise
// the full screen.
func ScreenGrabber(selection func() *image.Rectangle) Grabber {
	return func() (*image.RGBA, error) {
		if selection != nil {
			if r := selection(); r != nil {
				if r.Empty() {
					return nil, ErrEmptySelection
				}
				img, err := screenshot.CaptureRect(*r)
				if err != nil {
					return nil, fmt.Errorf("capture selection %v: %w", *r, err)
				}
				return img, nil
			}
		}
		img, err := screenshot.CaptureScreen()
		if err != nil {
			return nil, fmt.Errorf("capture screen: %w", err)
		}
		return img, nil
	}
}

// StillGrabber replays img on every call. The image is converted to RGBA
// once up front.
func StillGrabber(img image.Image) Grabber {
	var rgba *image.RGBA
	if img != nil {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return func() (*image.RGBA, error) {
		if rgba == nil {
			return nil, fmt.Errorf("capture: no still image")
		}
		return rgba, nil
	}
}

// Downscale wraps grab so images larger than target are scaled down to fit
// within it, aspect preserved. Orientation is ignored: the long side is
// bounded by the long side of target. An empty target returns grab as is.
func Downscale(grab Grabber, target geometry.Extent) Grabber {
	if target.Empty() {
		return grab
	}
	long, short := max(target.Width, target.Height), min(target.Width, target.Height)
	return func() (*image.RGBA, error) {
		img, err := grab()
		if err != nil || img == nil {
			return img, err
		}
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		lim := func(a, b int) float64 { return float64(a) / float64(b) }
		var f float64
		if w >= h {
			f = min(lim(long, w), lim(short, h))
		} else {
			f = min(lim(short, w), lim(long, h))
		}
		if f >= 1 {
			return img, nil
		}
		dst := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(w)*f)), max(1, int(float64(h)*f))))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst, nil
	}
}
