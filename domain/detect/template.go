package detect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// TemplateOptions configures multi-scale template matching. Zero values
// fall back to the defaults noted per field.
type TemplateOptions struct {
	Mode        PerformanceMode
	MinScale    float64 // 0.6
	MaxScale    float64 // 1.4
	ScaleStep   float64 // 0.05
	Threshold   float64 // 0.8
	Stride      int     // 4; fast mode doubles it
	Refine      bool    // forced off in fast mode
	StopOnScore float64 // 0 disables early stop
}

// TemplateDetector finds the best normalized cross-correlation match of a
// template across a range of scales and reports it as a single region.
type TemplateDetector struct {
	base   *templateStats
	opts   TemplateOptions
	scales []float64
	cache  *lru.Cache[int, *templateStats]
	mu     sync.Mutex
}

var errStopEarly = errors.New("stop early")

func NewTemplateDetector(tmpl image.Image, opts TemplateOptions) (*TemplateDetector, error) {
	if tmpl == nil {
		return nil, errors.New("detect: nil template")
	}
	base := newTemplateStats(tmpl)
	if base == nil {
		return nil, errors.New("detect: empty template")
	}
	if opts.MinScale <= 0 {
		opts.MinScale = 0.6
	}
	if opts.MaxScale < opts.MinScale {
		opts.MaxScale = opts.MinScale + 0.8
	}
	if opts.ScaleStep <= 0 {
		opts.ScaleStep = 0.05
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = 0.8
	}
	if opts.Stride <= 0 {
		opts.Stride = 4
	}
	if opts.Mode == ModeFast {
		opts.Stride *= 2
		opts.Refine = false
	}
	var scales []float64
	for s := opts.MinScale; s <= opts.MaxScale+1e-9 && len(scales) < 200; s += opts.ScaleStep {
		scales = append(scales, s)
	}
	cache, err := lru.New[int, *templateStats](len(scales) + 1)
	if err != nil {
		return nil, fmt.Errorf("detect: template cache: %w", err)
	}
	return &TemplateDetector{base: base, opts: opts, scales: scales, cache: cache}, nil
}

// statsFor returns the scaled template for scale index i, building it once.
func (d *TemplateDetector) statsFor(i int) *templateStats {
	if t, ok := d.cache.Get(i); ok {
		return t
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.cache.Get(i); ok {
		return t
	}
	t := d.base.scaled(d.scales[i])
	d.cache.Add(i, t)
	return t
}

type scaleHit struct {
	nccMatch
	W, H int
}

func (d *TemplateDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if img == nil {
		return nil, nil
	}
	plane := buildGrayPlane(img)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	var mu sync.Mutex
	best := scaleHit{nccMatch: nccMatch{Score: -1}}
	for i := range d.scales {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := d.statsFor(i)
			if t == nil {
				return nil
			}
			m := plane.match(t, d.opts.Stride, d.opts.Refine)
			mu.Lock()
			if m.Score > best.Score {
				best = scaleHit{nccMatch: m, W: t.W, H: t.H}
			}
			mu.Unlock()
			if d.opts.StopOnScore > 0 && m.Score >= d.opts.StopOnScore {
				return errStopEarly
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errStopEarly) {
		return nil, err
	}
	if best.Score < d.opts.Threshold {
		return nil, nil
	}
	min := plane.origin.Add(image.Pt(best.X, best.Y))
	return []Region{{
		Box:   image.Rectangle{Min: min, Max: min.Add(image.Pt(best.W, best.H))},
		Score: best.Score,
		Label: "template",
	}}, nil
}

func (d *TemplateDetector) Close() error {
	d.cache.Purge()
	return nil
}
