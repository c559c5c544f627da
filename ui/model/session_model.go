package model

import (
	"time"

	"github.com/soocke/facebox-go/geometry"
)

// SessionTimes is a snapshot of how long the preview has been running.
type SessionTimes struct {
	Run   time.Duration // current (or last) run
	Total time.Duration // all runs, including the current one
	Runs  int
}

// SessionModel tracks one overlay session: its id, the fixed lens and the
// time spent with capture running. Presenters poll Times(); the model has no
// view dependency. Updates happen on the main context only.
type SessionModel struct {
	id   string
	lens geometry.LensFacing

	running  bool
	runStart time.Time
	lastRun  time.Duration
	finished time.Duration
	runs     int
}

// NewSessionModel returns a session with the given id and lens.
func NewSessionModel(id string, lens geometry.LensFacing) *SessionModel {
	return &SessionModel{id: id, lens: lens}
}

func (m *SessionModel) ID() string {
	if m == nil {
		return ""
	}
	return m.id
}

func (m *SessionModel) Lens() geometry.LensFacing {
	if m == nil {
		return geometry.LensBack
	}
	return m.lens
}

// OnTick folds the capture state observed at now into the durations.
func (m *SessionModel) OnTick(capturing bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case capturing && !m.running:
		m.running = true
		m.runStart = now
		m.lastRun = 0
		m.runs++
	case capturing:
		m.lastRun = now.Sub(m.runStart)
	case m.running:
		m.lastRun = now.Sub(m.runStart)
		m.finished += m.lastRun
		m.running = false
	}
}

// Times returns the current durations. Total includes the ongoing run.
func (m *SessionModel) Times() SessionTimes {
	if m == nil {
		return SessionTimes{}
	}
	t := SessionTimes{Run: m.lastRun, Total: m.finished, Runs: m.runs}
	if m.running {
		t.Total += m.lastRun
	}
	return t
}
