package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether the frame source is running and how often it
// was toggled. The zero value is stopped and usable. Atomic because Tk
// button callbacks and the headless runner may both flip it.
type CaptureModel struct {
	enabled atomic.Bool
	toggles atomic.Uint64
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the flag and reports whether it changed.
func (m *CaptureModel) SetEnabled(b bool) bool {
	if m == nil {
		return false
	}
	if m.enabled.Swap(b) == b {
		return false
	}
	m.toggles.Add(1)
	return true
}

// Toggles counts state changes.
func (m *CaptureModel) Toggles() uint64 {
	if m == nil {
		return 0
	}
	return m.toggles.Load()
}
