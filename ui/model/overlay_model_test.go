package model

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/soocke/facebox-go/geometry"
)

func TestOverlayModel_ZeroValueEmpty(t *testing.T) {
	var m OverlayModel
	if len(m.Rects()) != 0 || m.Version() != 0 || m.TakeRedraw() {
		t.Fatalf("zero value should be empty and clean")
	}
	var nilModel *OverlayModel
	nilModel.Publish([]geometry.Rect{{Right: 1, Bottom: 1}})
	if nilModel.Rects() != nil {
		t.Fatalf("nil model should ignore publish")
	}
}

func TestOverlayModel_PublishReplacesWholesale(t *testing.T) {
	m := NewOverlayModel(nil)
	first := []geometry.Rect{geometry.R(0, 0, 10, 10), geometry.R(5, 5, 20, 20)}
	second := []geometry.Rect{geometry.R(1, 2, 3, 4)}
	m.Publish(first)
	m.Publish(second)
	if diff := cmp.Diff(second, m.Rects()); diff != "" {
		t.Fatalf("rects mismatch (-want +got):\n%s", diff)
	}
	if m.Version() != 2 {
		t.Fatalf("expected version 2 got %d", m.Version())
	}
	m.Clear()
	if len(m.Rects()) != 0 || m.Version() != 3 {
		t.Fatalf("clear should publish empty overlay, got %v v%d", m.Rects(), m.Version())
	}
}

func TestOverlayModel_RedrawCoalesces(t *testing.T) {
	invalidations := 0
	m := NewOverlayModel(func() { invalidations++ })
	for i := 0; i < 5; i++ {
		m.Publish([]geometry.Rect{geometry.R(0, 0, float64(i+1), 1)})
	}
	if invalidations != 1 {
		t.Fatalf("expected 1 invalidate for 5 publishes, got %d", invalidations)
	}
	if !m.TakeRedraw() {
		t.Fatalf("redraw should be pending")
	}
	if m.TakeRedraw() {
		t.Fatalf("redraw flag should be cleared")
	}
	m.Publish(nil)
	if invalidations != 2 || !m.TakeRedraw() {
		t.Fatalf("publish after frame callback should invalidate again, got %d", invalidations)
	}
}

func TestOverlayModel_ReadersSeeWholeSnapshots(t *testing.T) {
	m := NewOverlayModel(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 500; i++ {
			rs := make([]geometry.Rect, i%7+1)
			for j := range rs {
				rs[j] = geometry.R(float64(i), float64(i), float64(i+1), float64(i+1))
			}
			m.Publish(rs)
		}
	}()
	for k := 0; k < 500; k++ {
		rs := m.Rects()
		for _, r := range rs {
			if r.Left != rs[0].Left {
				t.Fatalf("torn snapshot: %v", rs)
			}
		}
	}
	wg.Wait()
}
