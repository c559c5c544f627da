package detect

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"
)

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// noise fills img with deterministic pseudo-random gray levels.
func noise(img *image.RGBA, seed uint32) {
	b := img.Bounds()
	s := seed
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s = s*1664525 + 1013904223
			v := uint8(s >> 24)
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
}

func TestSkinDetector_FindsSkinBlock(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	fill(img, img.Bounds(), color.RGBA{30, 60, 200, 255})
	face := image.Rect(96, 64, 192, 176)
	fill(img, face, color.RGBA{224, 172, 140, 255})

	d := NewSkinDetector(SkinOptions{Mode: ModeAccurate})
	regions, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region got %d: %+v", len(regions), regions)
	}
	if regions[0].Box != face {
		t.Fatalf("box mismatch: got %v want %v", regions[0].Box, face)
	}
	if regions[0].Label != "face" || regions[0].Score < 0.99 {
		t.Fatalf("unexpected region %+v", regions[0])
	}
}

func TestSkinDetector_IgnoresSmallAndElongated(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	fill(img, img.Bounds(), color.RGBA{30, 60, 200, 255})
	fill(img, image.Rect(16, 16, 32, 32), color.RGBA{224, 172, 140, 255})   // too small
	fill(img, image.Rect(0, 200, 320, 240), color.RGBA{224, 172, 140, 255}) // too wide

	regions, err := NewSkinDetector(SkinOptions{Mode: ModeAccurate}).Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(regions) != 0 {
		t.Fatalf("expected no regions got %+v", regions)
	}
}

func TestSkinDetector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if _, err := NewSkinDetector(SkinOptions{}).Detect(ctx, img); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
}

func TestTemplateDetector_FindsEmbeddedPattern(t *testing.T) {
	tmpl := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(0)
			if (x/4+y/4)%2 == 0 {
				v = 255
			}
			tmpl.SetRGBA(x, y, color.RGBA{v, v / 2, 255 - v, 255})
		}
	}
	scene := image.NewRGBA(image.Rect(0, 0, 120, 100))
	noise(scene, 7)
	at := image.Pt(40, 30)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			scene.SetRGBA(at.X+x, at.Y+y, tmpl.RGBAAt(x, y))
		}
	}

	d, err := NewTemplateDetector(tmpl, TemplateOptions{
		Mode: ModeAccurate, MinScale: 1, MaxScale: 1, Stride: 1, Threshold: 0.9,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Close()
	regions, err := d.Detect(context.Background(), scene)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region got %+v", regions)
	}
	want := image.Rect(40, 30, 56, 46)
	if regions[0].Box != want || regions[0].Score < 0.99 {
		t.Fatalf("unexpected region %+v want box %v", regions[0], want)
	}
}

func TestTemplateDetector_BelowThreshold(t *testing.T) {
	tmpl := image.NewRGBA(image.Rect(0, 0, 8, 8))
	noise(tmpl, 1)
	scene := image.NewRGBA(image.Rect(0, 0, 40, 40))
	fill(scene, scene.Bounds(), color.RGBA{90, 90, 90, 255})

	d, err := NewTemplateDetector(tmpl, TemplateOptions{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	regions, err := d.Detect(context.Background(), scene)
	if err != nil || len(regions) != 0 {
		t.Fatalf("flat scene should not match: regions=%v err=%v", regions, err)
	}
}

func TestNewTemplateDetector_RejectsEmpty(t *testing.T) {
	if _, err := NewTemplateDetector(nil, TemplateOptions{}); err == nil {
		t.Fatalf("expected error for nil template")
	}
	if _, err := NewTemplateDetector(image.NewRGBA(image.Rect(0, 0, 0, 0)), TemplateOptions{}); err == nil {
		t.Fatalf("expected error for empty template")
	}
}

func TestParsePerformanceMode(t *testing.T) {
	cases := map[string]PerformanceMode{"": ModeFast, "fast": ModeFast, " Accurate ": ModeAccurate}
	for in, want := range cases {
		got, err := ParsePerformanceMode(in)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %v err %v", in, got, err)
		}
	}
	if _, err := ParsePerformanceMode("turbo"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

// stubDetector records calls and returns programmed results.
type stubDetector struct {
	calls   atomic.Int32
	closes  atomic.Int32
	block   chan struct{}
	panicOn int32
	regions []Region
	err     error
}

func (s *stubDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	n := s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	if s.panicOn != 0 && n == s.panicOn {
		panic("boom")
	}
	return s.regions, s.err
}

func (s *stubDetector) Close() error { s.closes.Add(1); return nil }

func await(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for result")
	}
	return Result{}
}

func TestAsync_DeliversResult(t *testing.T) {
	want := []Region{{Box: image.Rect(1, 2, 3, 4), Label: "x"}}
	stub := &stubDetector{regions: want}
	a := NewAsync(stub, 1, nil)
	defer a.Close()

	r := await(t, a.Submit(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4))))
	if r.Err != nil || len(r.Regions) != 1 || r.Regions[0] != want[0] {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestAsync_BusyWhenQueueFull(t *testing.T) {
	stub := &stubDetector{block: make(chan struct{})}
	a := NewAsync(stub, 1, nil)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	first := a.Submit(context.Background(), img)
	// wait until the worker holds the first job so the queue slot is free
	deadline := time.Now().Add(2 * time.Second)
	for stub.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	second := a.Submit(context.Background(), img)
	third := a.Submit(context.Background(), img)
	if r := await(t, third); !errors.Is(r.Err, ErrBusy) {
		t.Fatalf("expected ErrBusy got %v", r.Err)
	}
	close(stub.block)
	if r := await(t, first); r.Err != nil {
		t.Fatalf("first: %v", r.Err)
	}
	if r := await(t, second); r.Err != nil {
		t.Fatalf("second: %v", r.Err)
	}
	a.Close()
}

func TestAsync_RecoversPanic(t *testing.T) {
	stub := &stubDetector{panicOn: 1}
	a := NewAsync(stub, 2, nil)
	defer a.Close()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	if r := await(t, a.Submit(context.Background(), img)); r.Err == nil {
		t.Fatalf("expected error from panicking detector")
	}
	if r := await(t, a.Submit(context.Background(), img)); r.Err != nil {
		t.Fatalf("worker should survive panic: %v", r.Err)
	}
}

func TestAsync_CloseIdempotentAndRejects(t *testing.T) {
	stub := &stubDetector{}
	a := NewAsync(stub, 1, nil)
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if stub.closes.Load() != 1 {
		t.Fatalf("detector closed %d times", stub.closes.Load())
	}
	if r := await(t, a.Submit(context.Background(), nil)); !errors.Is(r.Err, ErrClosed) {
		t.Fatalf("expected ErrClosed got %v", r.Err)
	}
}

func TestAsync_CancelledBeforeRun(t *testing.T) {
	stub := &stubDetector{}
	a := NewAsync(stub, 1, nil)
	defer a.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := await(t, a.Submit(ctx, nil)); !errors.Is(r.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", r.Err)
	}
	if stub.calls.Load() != 0 {
		t.Fatalf("detector should not run for cancelled work")
	}
}
