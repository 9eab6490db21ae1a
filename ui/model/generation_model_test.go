package model

import (
	"testing"

	"github.com/soocke/spice-go/domain/geometry"
)

func TestGenerationModel_BeginIsExclusive(t *testing.T) {
	var m GenerationModel
	if !m.Begin() {
		t.Fatalf("first Begin must succeed")
	}
	if m.Begin() {
		t.Fatalf("second Begin must fail while in flight")
	}
	if !m.InFlight() {
		t.Fatalf("expected in flight")
	}
	m.End()
	if m.InFlight() || !m.Begin() {
		t.Fatalf("expected Begin to succeed after End")
	}
}

func TestRegionModel_SetAndClear(t *testing.T) {
	m := NewRegionModel()
	r := geometry.Rect{Top: 36, Left: 36, Bottom: 264, Right: 264}
	m.Set("doc-1", r)
	got, doc := m.Region()
	if got != r || doc != "doc-1" {
		t.Fatalf("unexpected region %v in %q", got, doc)
	}
	m.Set("doc-1", geometry.Rect{Top: 5, Left: 5, Bottom: 5, Right: 9})
	if got, doc := m.Region(); got != (geometry.Rect{}) || doc != "" {
		t.Fatalf("empty region must clear, got %v in %q", got, doc)
	}
}
