package model

import (
	"github.com/soocke/spice-go/domain/geometry"
)

// RegionModel holds the region of the last successful generation. Zero value means none and is usable.
// No synchronization needed: updates occur on the UI thread tick.
type RegionModel struct {
	region   geometry.Rect
	document string
}

func NewRegionModel() *RegionModel { return &RegionModel{} }

// Set records the region placed into document. An empty region clears it.
func (m *RegionModel) Set(document string, r geometry.Rect) {
	if m == nil {
		return
	}
	if r.Width() <= 0 || r.Height() <= 0 {
		m.region, m.document = geometry.Rect{}, ""
		return
	}
	m.region, m.document = r, document
}

// Region returns the last region and the document it was placed into.
func (m *RegionModel) Region() (geometry.Rect, string) {
	if m == nil {
		return geometry.Rect{}, ""
	}
	return m.region, m.document
}
