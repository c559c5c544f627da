package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/soocke/facebox-go/geometry"
)

// Upright rotates img clockwise by rot. imaging rotates counter-clockwise,
// hence the swapped quarter turns.
func Upright(img image.Image, rot geometry.Rotation) image.Image {
	switch rot.Normalize() {
	case geometry.Rotation90:
		return imaging.Rotate270(img)
	case geometry.Rotation180:
		return imaging.Rotate180(img)
	case geometry.Rotation270:
		return imaging.Rotate90(img)
	}
	return img
}

// FillCenter renders the preview for a raw frame: rotated upright, mirrored
// when requested, scaled to cover view and center-cropped. This is the same
// fill policy geometry.Transform assumes for the overlay.
func FillCenter(img image.Image, view geometry.Extent, rot geometry.Rotation, mirror bool, filter imaging.ResampleFilter) *image.NRGBA {
	if img == nil || view.Empty() || geometry.ExtentOf(img).Empty() {
		return nil
	}
	up := Upright(img, rot)
	if mirror {
		up = imaging.FlipH(up)
	}
	return imaging.Fill(up, view.Width, view.Height, imaging.Center, filter)
}

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}
