package capture

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/facebox-go/geometry"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout: %s", msg)
}

func TestService_DeliversPooledFramesWithRotation(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	src.Set(3, 2, color.RGBA{R: 200, A: 255})
	slot := NewLatestSlot()
	svc := NewService(StillGrabber(src), slot, Options{Rotation: geometry.Rotation270, Interval: time.Millisecond}, nil)
	svc.Start()
	svc.Start()
	defer svc.Stop()

	var f *Frame
	waitFor(t, time.Second, func() bool { f = slot.Take(); return f != nil }, "no frame delivered")
	if f.Rotation != geometry.Rotation270 {
		t.Fatalf("expected rotation 270, got %d", f.Rotation)
	}
	if f.Extent() != geometry.Ext(8, 6) {
		t.Fatalf("expected 8x6 extent, got %v", f.Extent())
	}
	if got := f.Image.RGBAAt(3, 2); got.R != 200 {
		t.Fatalf("pixels not copied, got %v", got)
	}
	f.Release()
	svc.Stop()
	slot.Close()

	st := svc.Stats()
	if st.Captures == 0 || st.Sequence != st.Captures {
		t.Fatalf("unexpected capture counters %+v", st)
	}
	if st.Releases != st.Captures {
		t.Fatalf("every captured frame must be released exactly once: captures=%d releases=%d", st.Captures, st.Releases)
	}
	if st.DoubleReleases != 0 {
		t.Fatalf("unexpected double releases %d", st.DoubleReleases)
	}
}

func TestService_BindFailureIsCountedNotFatal(t *testing.T) {
	var calls atomic.Int32
	grab := func() (*image.RGBA, error) {
		if calls.Add(1) <= 3 {
			return nil, errors.New("no display")
		}
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	}
	slot := NewLatestSlot()
	svc := NewService(grab, slot, Options{Interval: time.Millisecond}, nil)
	svc.Start()
	waitFor(t, time.Second, func() bool { return svc.Stats().Captures > 0 }, "service did not recover after failures")
	svc.Stop()
	if svc.Running() {
		t.Fatalf("service should be stopped")
	}
	st := svc.Stats()
	if st.Skipped < 3 || st.LastError == nil {
		t.Fatalf("expected skipped grabs and a recorded error, got %+v", st)
	}
	slot.Close()
}

func TestDownscale_FitsWithinTarget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	grab := Downscale(StillGrabber(src), geometry.Ext(720, 1280))
	img, err := grab()
	if err != nil {
		t.Fatalf("grab: %v", err)
	}
	if got := geometry.ExtentOf(img); got != geometry.Ext(1280, 720) {
		t.Fatalf("expected 1280x720 got %v", got)
	}

	small := image.NewRGBA(image.Rect(0, 0, 64, 48))
	img, _ = Downscale(StillGrabber(small), geometry.Ext(720, 1280))()
	if geometry.ExtentOf(img) != geometry.Ext(64, 48) {
		t.Fatalf("small images must not be upscaled, got %v", geometry.ExtentOf(img))
	}
	if g := Downscale(StillGrabber(small), geometry.Extent{}); g == nil {
		t.Fatalf("empty target should return the grabber")
	}
}
