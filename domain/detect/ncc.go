package detect

import (
	"image"
	"math"
)

// grayPlane stores per-pixel luminance of a frame and its summed-area tables
// (integral images), so window sums and variances are O(1).
type grayPlane struct {
	gray       []float64
	integral   []float64
	integralSq []float64
	W, H       int
	origin     image.Point
}

// templateStats caches luminance and summary statistics for a template at
// one scale.
type templateStats struct {
	gray  []float32
	W, H  int
	meanT float64
	stdT  float64
}

func luma(r, g, b uint32) float64 {
	return 0.2126*float64(r>>8) + 0.7152*float64(g>>8) + 0.0722*float64(b>>8)
}

// buildGrayPlane converts img to luminance. *image.RGBA is read directly;
// other types go through At. Transparent pixels contribute zero.
func buildGrayPlane(img image.Image) *grayPlane {
	b := img.Bounds()
	W, H := b.Dx(), b.Dy()
	p := &grayPlane{
		gray:       make([]float64, W*H),
		integral:   make([]float64, W*H),
		integralSq: make([]float64, W*H),
		W:          W,
		H:          H,
		origin:     b.Min,
	}
	rgba, _ := img.(*image.RGBA)
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		for x := 0; x < W; x++ {
			var g float64
			if rgba != nil {
				i := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				px := rgba.Pix[i : i+4 : i+4]
				if px[3] != 0 {
					g = 0.2126*float64(px[0]) + 0.7152*float64(px[1]) + 0.0722*float64(px[2])
				}
			} else if r, gg, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA(); a != 0 {
				g = luma(r, gg, bb)
			}
			off := y*W + x
			p.gray[off] = g
			rowSum += g
			rowSum2 += g * g
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[off-W] + rowSum
				p.integralSq[off] = p.integralSq[off-W] + rowSum2
			}
		}
	}
	return p
}

// windowSum returns the inclusive sum over [x0..x1]x[y0..y1].
func windowSum(I []float64, W, x0, y0, x1, y1 int) float64 {
	at := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
}

// newTemplateStats builds stats for tmpl. Transparent pixels are ignored.
func newTemplateStats(tmpl image.Image) *templateStats {
	b := tmpl.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	gray := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, a := tmpl.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			gray[y*w+x] = float32(luma(r, g, bb))
		}
	}
	return finishStats(gray, w, h)
}

func finishStats(gray []float32, w, h int) *templateStats {
	var sum, sum2 float64
	for _, v := range gray {
		f := float64(v)
		sum += f
		sum2 += f * f
	}
	n := float64(w * h)
	mean := sum / n
	variance := (sum2 - sum*sum/n) / n
	std := 0.0
	if variance > 0 {
		std = math.Sqrt(variance)
	}
	return &templateStats{gray: gray, W: w, H: h, meanT: mean, stdT: std}
}

// scaled resamples the template luminance bilinearly by factor. It returns
// nil when the result would be smaller than 2x2.
func (t *templateStats) scaled(factor float64) *templateStats {
	if factor == 1 {
		return t
	}
	w := int(float64(t.W) * factor)
	h := int(float64(t.H) * factor)
	if w < 2 || h < 2 {
		return nil
	}
	gray := make([]float32, w*h)
	fx := float64(t.W) / float64(w)
	fy := float64(t.H) / float64(h)
	for y := 0; y < h; y++ {
		ys := clampF((float64(y)+0.5)*fy-0.5, 0, float64(t.H-1))
		y0 := int(ys)
		y1 := min(y0+1, t.H-1)
		dy := ys - float64(y0)
		for x := 0; x < w; x++ {
			xs := clampF((float64(x)+0.5)*fx-0.5, 0, float64(t.W-1))
			x0 := int(xs)
			x1 := min(x0+1, t.W-1)
			dx := xs - float64(x0)
			top := float64(t.gray[y0*t.W+x0])*(1-dx) + float64(t.gray[y0*t.W+x1])*dx
			bottom := float64(t.gray[y1*t.W+x0])*(1-dx) + float64(t.gray[y1*t.W+x1])*dx
			gray[y*w+x] = float32(top*(1-dy) + bottom*dy)
		}
	}
	return finishStats(gray, w, h)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type nccMatch struct {
	X, Y  int
	Score float64
}

// scoreAt computes the normalized cross-correlation of t at (x, y). ok is
// false for flat windows where NCC is undefined.
func (p *grayPlane) scoreAt(t *templateStats, x, y int) (float64, bool) {
	n := float64(t.W * t.H)
	sumF := windowSum(p.integral, p.W, x, y, x+t.W-1, y+t.H-1)
	sumF2 := windowSum(p.integralSq, p.W, x, y, x+t.W-1, y+t.H-1)
	meanF := sumF / n
	varF := (sumF2 - sumF*sumF/n) / n
	if varF <= 1e-9 {
		return 0, false
	}
	var sumFT float64
	for ty := 0; ty < t.H; ty++ {
		row := p.gray[(y+ty)*p.W+x : (y+ty)*p.W+x+t.W]
		trow := t.gray[ty*t.W : (ty+1)*t.W]
		for i, f := range row {
			sumFT += f * float64(trow[i])
		}
	}
	denom := n * math.Sqrt(varF) * t.stdT
	if denom <= 0 {
		return 0, false
	}
	return (sumFT - n*meanF*t.meanT) / denom, true
}

// match scans the plane at stride and optionally refines around the best
// coarse hit at stride 1. Returns Score -1 when nothing could be scored.
func (p *grayPlane) match(t *templateStats, stride int, refine bool) nccMatch {
	best := nccMatch{Score: -1}
	if t == nil || t.stdT <= 1e-9 || p.W < t.W || p.H < t.H {
		return best
	}
	stride = max(stride, 1)
	scan := func(x0, y0, x1, y1, step int) {
		for y := y0; y <= y1; y += step {
			for x := x0; x <= x1; x += step {
				if s, ok := p.scoreAt(t, x, y); ok && s > best.Score {
					best = nccMatch{X: x, Y: y, Score: s}
				}
			}
		}
	}
	scan(0, 0, p.W-t.W, p.H-t.H, stride)
	if refine && stride > 1 && best.Score > -1 {
		scan(
			max(0, best.X-stride), max(0, best.Y-stride),
			min(p.W-t.W, best.X+stride), min(p.H-t.H, best.Y+stride),
			1,
		)
	}
	return best
}
