package model

import (
	"testing"
	"time"
)

func TestSessionModel_BasicLifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	// Start at t0 and run for 5s.
	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	last, total := m.Values()
	if last < 5*time.Second || total < 5*time.Second {
		t.Fatalf("expected ~5s last & total; got last=%v total=%v", last, total)
	}
	if m.Count() != 0 {
		t.Fatalf("running generation must not be counted, got %d", m.Count())
	}

	// Finish at 5s.
	m.OnTick(false, base.Add(5*time.Second))
	last, total = m.Values()
	if last < 5*time.Second || total < 5*time.Second || m.Count() != 1 {
		t.Fatalf("after finish expected persisted 5s and count 1; got last=%v total=%v count=%d", last, total, m.Count())
	}

	// Idle 2s (no change expected).
	m.OnTick(false, base.Add(7*time.Second))
	last2, total2 := m.Values()
	if last2 != last || total2 != total || m.Count() != 1 {
		t.Fatalf("idle tick should not change values: before last=%v total=%v after last=%v total=%v", last, total, last2, total2)
	}

	// Second generation at 10s lasting 3s.
	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(13*time.Second))
	l3, t3 := m.Values()
	if l3 < 3*time.Second {
		t.Fatalf("second generation expected >=3s, got %v", l3)
	}
	if t3 < 8*time.Second { // 5 + 3 ongoing
		t.Fatalf("total should include previous 5s + current >=3s (>=8s); got %v", t3)
	}

	m.OnTick(false, base.Add(13*time.Second))
	lFinal, tFinal := m.Values()
	if lFinal < 3*time.Second || tFinal < 8*time.Second || m.Count() != 2 {
		t.Fatalf("final expected last >=3s total >=8s count 2, got last=%v total=%v count=%d", lFinal, tFinal, m.Count())
	}
}

func TestSessionModel_NilSafe(t *testing.T) {
	var m *SessionModel
	m.OnTick(true, time.Now())
	if l, tot := m.Values(); l != 0 || tot != 0 || m.Count() != 0 {
		t.Fatalf("nil model must report zeros")
	}
}
