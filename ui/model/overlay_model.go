package model

import (
	"sync/atomic"

	"github.com/soocke/facebox-go/geometry"
)

// OverlayModel holds the rectangles currently drawn over the preview, in view
// coordinates. There is a single writer (the main context); readers get the
// latest snapshot without locking. The zero value is empty and usable.
type OverlayModel struct {
	rects      atomic.Pointer[[]geometry.Rect]
	version    atomic.Uint64
	dirty      atomic.Bool
	invalidate func()
}

// NewOverlayModel returns a model that calls invalidate when a redraw
// becomes pending. invalidate may be nil.
func NewOverlayModel(invalidate func()) *OverlayModel {
	return &OverlayModel{invalidate: invalidate}
}

// Publish replaces the overlay with rects. The model takes ownership of the
// slice; callers must not modify it afterwards. Redraw requests coalesce:
// only the first publish after a TakeRedraw triggers invalidate.
func (m *OverlayModel) Publish(rects []geometry.Rect) {
	if m == nil {
		return
	}
	m.rects.Store(&rects)
	m.version.Add(1)
	if m.dirty.CompareAndSwap(false, true) && m.invalidate != nil {
		m.invalidate()
	}
}

// Rects returns the latest published snapshot. Callers must treat it as
// read-only.
func (m *OverlayModel) Rects() []geometry.Rect {
	if m == nil {
		return nil
	}
	if p := m.rects.Load(); p != nil {
		return *p
	}
	return nil
}

// Clear publishes an empty overlay.
func (m *OverlayModel) Clear() { m.Publish(nil) }

// Version counts publishes.
func (m *OverlayModel) Version() uint64 {
	if m == nil {
		return 0
	}
	return m.version.Load()
}

// TakeRedraw reports and clears the pending redraw flag. Called once per
// display refresh.
func (m *OverlayModel) TakeRedraw() bool {
	if m == nil {
		return false
	}
	return m.dirty.Swap(false)
}
