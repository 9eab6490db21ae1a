package presenter

import (
	"testing"
	"time"

	"github.com/soocke/spice-go/ui/model"
)

type mockInFlight struct{ on bool }

func (m *mockInFlight) InFlight() bool { return m.on }

type mockSessionView struct {
	last, total time.Duration
	count       int
	calls       int
}

func (v *mockSessionView) SetSession(last, total time.Duration, count int) {
	v.last, v.total, v.count = last, total, count
	v.calls++
}

func TestSessionPresenter_CountsFinishedGenerations(t *testing.T) {
	sess := model.NewSessionModel()
	gen := &mockInFlight{on: true}
	view := &mockSessionView{}
	p := NewSessionPresenter(sess, gen, view)

	base := time.Unix(100, 0)
	p.Tick(base)
	p.Tick(base.Add(2 * time.Second))
	if view.last != 2*time.Second || view.count != 0 {
		t.Fatalf("expected 2s running and count 0, got last=%v count=%d", view.last, view.count)
	}
	gen.on = false
	p.Tick(base.Add(3 * time.Second))
	if view.total != 3*time.Second || view.count != 1 {
		t.Fatalf("expected total 3s and count 1, got total=%v count=%d", view.total, view.count)
	}
	if view.calls != 3 {
		t.Fatalf("expected one view update per tick, got %d", view.calls)
	}
}
