package presenter

import (
	"testing"

	"github.com/soocke/facebox-go/ui/model"
)

type mockService struct{ started, stopped int }

func (s *mockService) Start() { s.started++ }
func (s *mockService) Stop()  { s.stopped++ }

type mockClearer struct{ cleared int }

func (o *mockClearer) Clear() { o.cleared++ }

type mockCaptureView struct {
	reset, runningCalls int
	lastRunning         bool
}

func (v *mockCaptureView) PreviewReset()     { v.reset++ }
func (v *mockCaptureView) SetRunning(b bool) { v.runningCalls++; v.lastRunning = b }

func TestCapturePresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &model.CaptureModel{}
	svc := &mockService{}
	ov := &mockClearer{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(m, svc, ov, view)

	p.Enable()
	if !m.Enabled() || svc.started != 1 || !view.lastRunning || view.runningCalls != 1 {
		t.Fatalf("enable failed: enabled=%v started=%d runningCalls=%d lastRunning=%v", m.Enabled(), svc.started, view.runningCalls, view.lastRunning)
	}
	p.Enable()
	if svc.started != 1 || view.runningCalls != 1 {
		t.Fatalf("enable not idempotent: started=%d runningCalls=%d", svc.started, view.runningCalls)
	}

	p.Disable()
	if m.Enabled() || svc.stopped != 1 || ov.cleared != 1 || view.reset != 1 || view.lastRunning {
		t.Fatalf("disable failed: enabled=%v stopped=%d cleared=%d reset=%d lastRunning=%v", m.Enabled(), svc.stopped, ov.cleared, view.reset, view.lastRunning)
	}
	p.Disable()
	if svc.stopped != 1 || ov.cleared != 1 || view.reset != 1 {
		t.Fatalf("disable not idempotent: stopped=%d cleared=%d reset=%d", svc.stopped, ov.cleared, view.reset)
	}
	if m.Toggles() != 2 {
		t.Fatalf("expected 2 model toggles, got %d", m.Toggles())
	}
}

func TestCapturePresenter_Toggle(t *testing.T) {
	m := &model.CaptureModel{}
	svc := &mockService{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(m, svc, nil, view)
	p.Toggle()
	if !m.Enabled() || svc.started != 1 {
		t.Fatalf("toggle enable failed")
	}
	p.Toggle()
	if m.Enabled() || svc.stopped != 1 || view.reset != 1 {
		t.Fatalf("toggle disable failed")
	}
	var nilPresenter *CapturePresenter
	nilPresenter.Toggle()
}
