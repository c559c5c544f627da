package detect

import (
	"context"
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// SkinOptions configures the skin-tone face candidate detector.
type SkinOptions struct {
	Mode PerformanceMode
	// MinRegionPx is the minimum side length of a reported box in pixels.
	MinRegionPx int
	// MinScore is the minimum fraction of skin cells inside a box.
	MinScore float64
}

// SkinDetector classifies pixels on a coarse grid by HSV skin-tone range,
// joins 4-connected skin cells and reports face-shaped components.
type SkinDetector struct {
	cell      int
	sample    int
	minSide   int
	minScore  float64
	cellRatio float64
}

func NewSkinDetector(opts SkinOptions) *SkinDetector {
	d := &SkinDetector{cell: 16, sample: 4, minSide: opts.MinRegionPx, minScore: opts.MinScore, cellRatio: 0.5}
	if opts.Mode == ModeAccurate {
		d.cell, d.sample = 8, 2
	}
	if d.minSide <= 0 {
		d.minSide = 32
	}
	if d.minScore <= 0 || d.minScore > 1 {
		d.minScore = 0.4
	}
	return d
}

// isSkin reports whether c falls in a broad skin-tone band.
func isSkin(c colorful.Color) bool {
	h, s, v := c.Hsv()
	return (h <= 50 || h >= 340) && s >= 0.2 && s <= 0.7 && v >= 0.35
}

func (d *SkinDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if img == nil {
		return nil, nil
	}
	b := img.Bounds()
	cols := (b.Dx() + d.cell - 1) / d.cell
	rows := (b.Dy() + d.cell - 1) / d.cell
	if cols == 0 || rows == 0 {
		return nil, nil
	}
	mask := make([]bool, cols*rows)
	for cy := 0; cy < rows; cy++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for cx := 0; cx < cols; cx++ {
			mask[cy*cols+cx] = d.cellIsSkin(img, b, cx, cy)
		}
	}
	return d.components(mask, cols, rows, b), nil
}

func (d *SkinDetector) cellIsSkin(img image.Image, b image.Rectangle, cx, cy int) bool {
	x0 := b.Min.X + cx*d.cell
	y0 := b.Min.Y + cy*d.cell
	x1 := min(x0+d.cell, b.Max.X)
	y1 := min(y0+d.cell, b.Max.Y)
	var total, skin int
	for y := y0; y < y1; y += d.sample {
		for x := x0; x < x1; x += d.sample {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			total++
			if isSkin(c) {
				skin++
			}
		}
	}
	return total > 0 && float64(skin)/float64(total) >= d.cellRatio
}

// components flood-fills the cell mask and converts each blob to a Region.
func (d *SkinDetector) components(mask []bool, cols, rows int, b image.Rectangle) []Region {
	seen := make([]bool, len(mask))
	var regions []Region
	stack := make([]int, 0, 64)
	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		minX, minY, maxX, maxY := cols, rows, -1, -1
		count := 0
		stack = append(stack[:0], start)
		seen[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%cols, i/cols
			count++
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if n[0] < 0 || n[1] < 0 || n[0] >= cols || n[1] >= rows {
					continue
				}
				j := n[1]*cols + n[0]
				if mask[j] && !seen[j] {
					seen[j] = true
					stack = append(stack, j)
				}
			}
		}
		box := image.Rect(
			b.Min.X+minX*d.cell, b.Min.Y+minY*d.cell,
			b.Min.X+(maxX+1)*d.cell, b.Min.Y+(maxY+1)*d.cell,
		).Intersect(b)
		if box.Dx() < d.minSide || box.Dy() < d.minSide {
			continue
		}
		aspect := float64(box.Dx()) / float64(box.Dy())
		if aspect < 0.5 || aspect > 1.6 {
			continue
		}
		score := float64(count) / float64((maxX-minX+1)*(maxY-minY+1))
		if score < d.minScore {
			continue
		}
		regions = append(regions, Region{Box: box, Score: score, Label: "face"})
	}
	return regions
}

func (d *SkinDetector) Close() error { return nil }
