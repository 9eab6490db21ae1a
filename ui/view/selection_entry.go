package view

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/domain/geometry"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionEntry lets the user type a rectangular selection for the active
// document. The last value is kept in the settings.
type SelectionEntry interface {
	Build(startRow int, onSelect func(geometry.Rect)) (endRow int)
	Rect() (geometry.Rect, bool)
	SetEditable(enabled bool)
}

type selectionEntry struct {
	logger  *slog.Logger
	cfg     *config.Config
	fields  map[string]*TextWidget
	buttons []*ButtonWidget
}

// NewSelectionEntry creates the entry seeded from the saved selection.
func NewSelectionEntry(cfg *config.Config, logger *slog.Logger) SelectionEntry {
	return &selectionEntry{logger: logger, cfg: cfg, fields: make(map[string]*TextWidget)}
}

func (v *selectionEntry) Build(startRow int, onSelect func(geometry.Rect)) (row int) {
	row = startRow
	frame := Frame()
	Grid(frame, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Grid(Label(Txt("Selection"), Anchor("w")), In(frame), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	var x, y, w, h int
	if v.cfg != nil {
		x, y, w, h = v.cfg.SelectionX, v.cfg.SelectionY, v.cfg.SelectionW, v.cfg.SelectionH
	}
	col := 1
	for _, f := range []struct {
		id    string
		value int
	}{{"x", x}, {"y", y}, {"w", w}, {"h", h}} {
		Grid(Label(Txt(strings.ToUpper(f.id))), In(frame), Row(0), Column(col), Sticky("e"))
		t := Text(Height(1), Width(6))
		Grid(t, In(frame), Row(0), Column(col+1), Sticky("w"), Padx("0.2m"))
		t.Insert("1.0", fmt.Sprintf("%d", f.value))
		v.fields[f.id] = t
		col += 2
	}
	selectBtn := Button(Txt("Select"), Command(func() {
		r, ok := v.Rect()
		if !ok {
			if v.logger != nil {
				v.logger.Warn("invalid selection entry")
			}
			return
		}
		onSelect(r)
	}))
	Grid(selectBtn, In(frame), Row(0), Column(col), Sticky("we"), Padx("0.2m"))
	clearBtn := Button(Txt("Deselect"), Command(func() { onSelect(geometry.Rect{}) }))
	Grid(clearBtn, In(frame), Row(0), Column(col+1), Sticky("we"), Padx("0.2m"))
	v.buttons = []*ButtonWidget{selectBtn, clearBtn}
	row++
	return row
}

// Rect parses the entry fields. Width and height must be positive.
func (v *selectionEntry) Rect() (geometry.Rect, bool) {
	vals := make(map[string]int, 4)
	for id, w := range v.fields {
		i, ok := parseIntField(textOf(w))
		if !ok {
			return geometry.Rect{}, false
		}
		vals[id] = i
	}
	if vals["w"] <= 0 || vals["h"] <= 0 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{Top: vals["y"], Left: vals["x"], Bottom: vals["y"] + vals["h"], Right: vals["x"] + vals["w"]}, true
}

func (v *selectionEntry) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.fields {
		w.Configure(State(state))
	}
	for _, b := range v.buttons {
		b.Configure(State(state))
	}
}
