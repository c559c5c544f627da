package capture

import (
	"errors"
	"image"
	"sync/atomic"
	"time"

	"github.com/soocke/facebox-go/geometry"
)

// ErrEmptySelection is returned by the screen grabber for an empty selection.
var ErrEmptySelection = errors.New("capture: empty selection")

// ReleaseFunc is invoked on every Frame.Release call. first is true exactly
// once per frame; later calls are double releases.
type ReleaseFunc func(f *Frame, first bool)

// Frame is one captured image plus the metadata the pipeline needs. The
// holder must call Release exactly once when done with it.
type Frame struct {
	Image      *image.RGBA
	Rotation   geometry.Rotation
	CapturedAt time.Time
	Sequence   uint64

	release  ReleaseFunc
	released atomic.Bool
}

// NewFrame wraps img. release may be nil.
func NewFrame(img *image.RGBA, rot geometry.Rotation, seq uint64, release ReleaseFunc) *Frame {
	return &Frame{Image: img, Rotation: rot, CapturedAt: time.Now(), Sequence: seq, release: release}
}

// Extent returns the raw (unrotated) pixel size of the frame.
func (f *Frame) Extent() geometry.Extent {
	if f == nil || f.Image == nil {
		return geometry.Extent{}
	}
	return geometry.ExtentOf(f.Image)
}

// Release hands the frame back to its owner. It returns false if the frame
// had already been released; the release hook still observes the call.
func (f *Frame) Release() bool {
	if f == nil {
		return false
	}
	first := f.released.CompareAndSwap(false, true)
	if f.release != nil {
		f.release(f, first)
	}
	return first
}

// Released reports whether Release has been called.
func (f *Frame) Released() bool { return f != nil && f.released.Load() }

// FrameSource delivers frames under keep-only-latest backpressure.
type FrameSource interface {
	Start()
	Stop()
	Running() bool
	Stats() CaptureStats
}

// CaptureStats summarises capture loop behaviour for instrumentation.
type CaptureStats struct {
	Captures       uint64
	Skipped        uint64
	Dropped        uint64
	Releases       uint64
	DoubleReleases uint64
	AvgCapture     time.Duration
	LastCapture    time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
	LastError      error
}
