package presenter

import (
	"time"

	"github.com/soocke/facebox-go/domain/capture"
)

// FrameDriver is the main-context side of the pipeline controller.
type FrameDriver interface {
	Drain() int
	Pump(slot *capture.LatestSlot) bool
}

// Loop aggregates feature presenters and drives periodic updates. In GUI
// mode it is the main context: completions are drained and frames pumped
// only from Tick.
//
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Pipeline FrameDriver
	Slot     *capture.LatestSlot
	Overlay  *OverlayPresenter
	Stats    *StatsPresenter
	Schedule func()
}

func NewLoop(pipe FrameDriver, slot *capture.LatestSlot, overlay *OverlayPresenter, stats *StatsPresenter, schedule func()) *Loop {
	return &Loop{Pipeline: pipe, Slot: slot, Overlay: overlay, Stats: stats, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Pipeline != nil {
		l.Pipeline.Drain()
		l.Pipeline.Pump(l.Slot)
	}
	if l.Overlay != nil {
		l.Overlay.Tick()
	}
	if l.Stats != nil {
		l.Stats.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
