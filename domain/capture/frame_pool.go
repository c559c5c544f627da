package capture

import (
	"image"
	"image/draw"
	"sync"
)

// Reusable frame buffers. The grabbers still allocate their own images; we
// copy those pixels into a pooled buffer that goes back to the pool when the
// pipeline releases the frame, so slow detection does not pin one large
// backing slice per captured frame.
var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns a reusable RGBA image sized to rect with Stride w*4.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// copyToPooled copies src into a pooled buffer anchored at the origin.
func copyToPooled(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := acquireFrame(image.Rect(0, 0, b.Dx(), b.Dy()))
	if len(dst.Pix) == 0 {
		return dst
	}
	if src.Stride == dst.Stride && b.Min == (image.Point{}) && len(src.Pix) >= len(dst.Pix) {
		copy(dst.Pix, src.Pix[:len(dst.Pix)])
		return dst
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// recycleFrame returns the buffer to the pool. The caller must not touch img
// afterwards.
func recycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
