package config

import (
	"github.com/soocke/spice-go/domain/geometry"
)

// SelectionStore persists the last panel selection into the settings file.
type SelectionStore struct {
	Config *Config
	Path   string
}

// SaveSelection records r (an empty rect clears it) and saves the settings.
func (s SelectionStore) SaveSelection(r geometry.Rect) error {
	if s.Config == nil {
		return nil
	}
	if r.Empty() {
		s.Config.SelectionX, s.Config.SelectionY, s.Config.SelectionW, s.Config.SelectionH = 0, 0, 0, 0
	} else {
		s.Config.SelectionX, s.Config.SelectionY = r.Left, r.Top
		s.Config.SelectionW, s.Config.SelectionH = r.Width(), r.Height()
	}
	if s.Path == "" {
		return nil
	}
	return s.Config.Save(s.Path)
}

// Selection returns the saved selection, if any.
func (c *Config) Selection() (geometry.Rect, bool) {
	if c == nil || c.SelectionW <= 0 || c.SelectionH <= 0 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{Top: c.SelectionY, Left: c.SelectionX, Bottom: c.SelectionY + c.SelectionH, Right: c.SelectionX + c.SelectionW}, true
}
