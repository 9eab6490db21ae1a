package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/images"
)

const backgroundLayer = "Background"

// state is one immutable document revision. Layers and selection masks are
// never written after they are stored in a state; edits replace them.
type state struct {
	w, h      int
	layers    []*layer // bottom to top
	active    int      // index into layers, -1 for none
	selection *image.Alpha
}

func (s state) clone() state {
	s.layers = append([]*layer(nil), s.layers...)
	return s
}

func (s state) indexOf(id string) int {
	for i, l := range s.layers {
		if l.id == id {
			return i
		}
	}
	return -1
}

type snapshot struct {
	token host.Checkpoint
	st    state
}

// Document is an in-memory layered image with linear history.
type Document struct {
	host *Host
	id   string
	name string

	mu      sync.RWMutex
	history []snapshot
	cursor  int
	closed  bool
}

var _ host.Document = (*Document)(nil)

func newDocument(h *Host, name string, st state) *Document {
	return &Document{
		host:    h,
		id:      uuid.NewString(),
		name:    name,
		history: []snapshot{{token: newCheckpoint(), st: st}},
	}
}

func newCheckpoint() host.Checkpoint { return host.Checkpoint(uuid.NewString()) }

func (d *Document) ID() string   { return d.id }
func (d *Document) Name() string { return d.name }

func (d *Document) current() state {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.history[d.cursor].st
}

func (d *Document) Width() int  { return d.current().w }
func (d *Document) Height() int { return d.current().h }

// mutate applies fn to a copy of the current state and records the result as
// a new history state. Redo states past the cursor are discarded. The history
// limit is enforced when the modal scope ends, see trimHistory.
func (d *Document) mutate(op string, fn func(st *state) error) error {
	if err := d.host.checkModal(); err != nil {
		return err
	}
	if err := d.host.fault(op); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return host.ErrClosed
	}
	next := d.history[d.cursor].st.clone()
	if err := fn(&next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	d.history = append(d.history[:d.cursor+1], snapshot{token: newCheckpoint(), st: next})
	d.cursor = len(d.history) - 1
	return nil
}

// trimHistory cuts the history down to limit states. States past the cursor
// go first, so edits a modal scope made and then restored past never push
// older undo states out.
func (d *Document) trimHistory(limit int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	over := len(d.history) - limit
	if over <= 0 {
		return
	}
	if redo := len(d.history) - 1 - d.cursor; redo > 0 {
		n := min(over, redo)
		d.history = d.history[:len(d.history)-n]
		over -= n
	}
	if over > 0 {
		d.history = append([]snapshot(nil), d.history[over:]...)
		d.cursor -= over
	}
}

// HistoryState returns the token of the current history state.
func (d *Document) HistoryState() host.Checkpoint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.history[d.cursor].token
}

// RestoreHistory moves the cursor back (or forward) to cp. Later states stay
// available until the next edit.
func (d *Document) RestoreHistory(cp host.Checkpoint) error {
	if err := d.host.checkModal(); err != nil {
		return err
	}
	if err := d.host.fault(OpRestore); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return host.ErrClosed
	}
	for i := range d.history {
		if d.history[i].token == cp {
			d.cursor = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s", host.ErrUnknownCheckpoint, cp)
}

// HistoryLen reports the number of retained history states.
func (d *Document) HistoryLen() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.history)
}

// SelectionBounds returns the bounding box of all selected pixels.
func (d *Document) SelectionBounds() geometry.OptionalBounds {
	if err := d.host.fault(OpSelectionBounds); err != nil {
		d.host.logger.Debug("selection bounds query failed", "document", d.name, "error", err)
		return geometry.None()
	}
	sel := d.current().selection
	if sel == nil {
		return geometry.None()
	}
	r, ok := alphaBounds(sel)
	if !ok {
		return geometry.None()
	}
	return geometry.Some(geometry.FromImage(r))
}

// Selection returns the current selection mask or nil. The mask must not be modified.
func (d *Document) Selection() *image.Alpha { return d.current().selection }

func (d *Document) SetSelection(r geometry.Rect) error {
	return d.mutate(OpSelect, func(st *state) error {
		st.selection = rectSelection(st.w, st.h, r.Image())
		return nil
	})
}

// SelectMask replaces the selection with a copy of mask, clipped to the
// canvas. A mask with no set pixels clears the selection.
func (d *Document) SelectMask(mask *image.Alpha) error {
	return d.mutate(OpSelect, func(st *state) error {
		if mask == nil {
			st.selection = nil
			return nil
		}
		sel := image.NewAlpha(image.Rect(0, 0, st.w, st.h))
		draw.Draw(sel, sel.Bounds(), mask, image.Point{}, draw.Src)
		if _, ok := alphaBounds(sel); !ok {
			sel = nil
		}
		st.selection = sel
		return nil
	})
}

func (d *Document) Deselect() error {
	return d.mutate(OpDeselect, func(st *state) error {
		st.selection = nil
		return nil
	})
}

// InvertSelection inverts the selection mask. An inversion that selects
// nothing leaves the document without a selection.
func (d *Document) InvertSelection() error {
	return d.mutate(OpInvert, func(st *state) error {
		if st.selection == nil {
			return ErrNoSelection
		}
		inv := image.NewAlpha(st.selection.Rect)
		selected := false
		for i, a := range st.selection.Pix {
			inv.Pix[i] = 0xff - a
			if inv.Pix[i] != 0 {
				selected = true
			}
		}
		if !selected {
			inv = nil
		}
		st.selection = inv
		return nil
	})
}

// FillSelection paints c into the active layer wherever the selection is set,
// or over the whole layer when nothing is selected.
func (d *Document) FillSelection(c color.RGBA) error {
	return d.mutate(OpFill, func(st *state) error {
		if st.active < 0 || st.active >= len(st.layers) {
			return ErrNoActiveLayer
		}
		l := st.layers[st.active].clone()
		dst := l.docView()
		src := image.NewUniform(c)
		if st.selection == nil {
			draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
		} else {
			draw.DrawMask(dst, dst.Bounds(), src, image.Point{}, st.selection, dst.Bounds().Min, draw.Over)
		}
		st.layers[st.active] = l
		return nil
	})
}

// AddLayer appends a transparent, canvas-sized layer on top and activates it.
func (d *Document) AddLayer(name string) (host.Layer, error) {
	var id string
	err := d.mutate(OpAddLayer, func(st *state) error {
		l := &layer{id: uuid.NewString(), name: name, img: image.NewRGBA(image.Rect(0, 0, st.w, st.h))}
		st.layers = append(st.layers, l)
		st.active = len(st.layers) - 1
		id = l.id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Layer{doc: d, id: id}, nil
}

// Layers returns handles for the current layers, bottom to top.
func (d *Document) Layers() []host.Layer {
	st := d.current()
	out := make([]host.Layer, 0, len(st.layers))
	for _, l := range st.layers {
		out = append(out, &Layer{doc: d, id: l.id})
	}
	return out
}

func (d *Document) ActiveLayer() (host.Layer, bool) {
	st := d.current()
	if st.active < 0 || st.active >= len(st.layers) {
		return nil, false
	}
	return &Layer{doc: d, id: st.layers[st.active].id}, true
}

// Duplicate copies the document into a new active document. With flatten the
// copy has a single layer composited over white.
func (d *Document) Duplicate(name string, flatten bool) (host.Document, error) {
	if err := d.host.fault(OpDuplicate); err != nil {
		return nil, err
	}
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return nil, host.ErrClosed
	}
	st := d.history[d.cursor].st.clone()
	d.mu.RUnlock()
	if flatten {
		flat := &layer{id: uuid.NewString(), name: backgroundLayer, img: flattenLayers(st.w, st.h, st.layers)}
		st.layers = []*layer{flat}
		st.active = 0
	}
	dup := newDocument(d.host, name, st)
	d.host.push(dup)
	return dup, nil
}

// Crop trims the canvas to r intersected with the canvas. The selection is dropped.
func (d *Document) Crop(r geometry.Rect) error {
	return d.mutate(OpCrop, func(st *state) error {
		cr := r.Image().Intersect(image.Rect(0, 0, st.w, st.h))
		if cr.Empty() {
			return fmt.Errorf("crop %v outside %dx%d canvas", r, st.w, st.h)
		}
		for i, l := range st.layers {
			st.layers[i] = l.cropTo(cr)
		}
		st.w, st.h = cr.Dx(), cr.Dy()
		st.selection = nil
		return nil
	})
}

// Flatten composites the current layers over white.
func (d *Document) Flatten() *image.RGBA {
	st := d.current()
	return flattenLayers(st.w, st.h, st.layers)
}

// ExportPNG writes the flattened document to path, replacing any existing file.
func (d *Document) ExportPNG(path string) error {
	if err := d.host.fault(OpExport); err != nil {
		return err
	}
	if d.isClosed() {
		return host.ErrClosed
	}
	data, err := images.EncodePNG(d.Flatten())
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// CloseWithoutSaving discards the document. Closing twice is a no-op.
func (d *Document) CloseWithoutSaving() error {
	if err := d.host.fault(OpClose); err != nil {
		return err
	}
	d.mu.Lock()
	was := d.closed
	d.closed = true
	d.mu.Unlock()
	if !was {
		d.host.remove(d)
	}
	return nil
}

func (d *Document) isClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

func rectSelection(w, h int, r image.Rectangle) *image.Alpha {
	r = r.Intersect(image.Rect(0, 0, w, h))
	if r.Empty() {
		return nil
	}
	sel := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.Draw(sel, r, image.Opaque, image.Point{}, draw.Src)
	return sel
}

func alphaBounds(a *image.Alpha) (image.Rectangle, bool) {
	b := a.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := a.Pix[(y-b.Min.Y)*a.Stride : (y-b.Min.Y)*a.Stride+b.Dx()]
		for i, v := range row {
			if v == 0 {
				continue
			}
			x := b.Min.X + i
			found = true
			minX, maxX = min(minX, x), max(maxX, x+1)
			minY, maxY = min(minY, y), max(maxY, y+1)
		}
	}
	if !found {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}

func flattenLayers(w, h int, layers []*layer) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	for _, l := range layers {
		v := l.docView()
		draw.Draw(out, v.Bounds(), v, v.Bounds().Min, draw.Over)
	}
	return out
}
