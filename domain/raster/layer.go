package raster

import (
	"image"
	"image/draw"
	"math"

	"github.com/google/uuid"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
)

// layer is immutable once stored in a state; clone before editing.
type layer struct {
	id   string
	name string
	img  *image.RGBA // zero origin
	x, y float64     // document-space top-left, may be fractional
}

func (l *layer) clone() *layer {
	c := *l
	c.img = &image.RGBA{
		Pix:    append([]uint8(nil), l.img.Pix...),
		Stride: l.img.Stride,
		Rect:   l.img.Rect,
	}
	return &c
}

// origin is the pixel-grid position used for compositing.
func (l *layer) origin() image.Point {
	return image.Pt(int(math.Floor(l.x+0.5)), int(math.Floor(l.y+0.5)))
}

// docView shares pixels with l but addresses them in document space.
func (l *layer) docView() *image.RGBA {
	return &image.RGBA{Pix: l.img.Pix, Stride: l.img.Stride, Rect: l.img.Rect.Add(l.origin())}
}

func (l *layer) bounds() geometry.RectF {
	return geometry.RectF{
		Top:    l.y,
		Left:   l.x,
		Bottom: l.y + float64(l.img.Rect.Dy()),
		Right:  l.x + float64(l.img.Rect.Dx()),
	}
}

// cropTo keeps the part of the layer inside cr and re-bases it so cr.Min
// becomes the document origin.
func (l *layer) cropTo(cr image.Rectangle) *layer {
	v := l.docView()
	keep := v.Bounds().Intersect(cr)
	c := &layer{id: l.id, name: l.name}
	if keep.Empty() {
		c.img = image.NewRGBA(image.Rect(0, 0, 0, 0))
		return c
	}
	c.img = image.NewRGBA(image.Rect(0, 0, keep.Dx(), keep.Dy()))
	draw.Draw(c.img, c.img.Bounds(), v, keep.Min, draw.Src)
	c.x = float64(keep.Min.X - cr.Min.X)
	c.y = float64(keep.Min.Y - cr.Min.Y)
	return c
}

// Layer is a stable handle to a layer of a Document. It stays valid across
// history restores as long as the layer exists in the current state.
type Layer struct {
	doc *Document
	id  string
}

var _ host.Layer = (*Layer)(nil)

func (h *Layer) ID() string { return h.id }

func (h *Layer) lookup() (*layer, error) {
	st := h.doc.current()
	i := st.indexOf(h.id)
	if i < 0 {
		return nil, ErrLayerGone
	}
	return st.layers[i], nil
}

func (h *Layer) Name() string {
	l, err := h.lookup()
	if err != nil {
		return ""
	}
	return l.name
}

// Bounds returns the layer extent in document space.
func (h *Layer) Bounds() (geometry.RectF, error) {
	if err := h.doc.host.fault(OpLayerBounds); err != nil {
		return geometry.RectF{}, err
	}
	l, err := h.lookup()
	if err != nil {
		return geometry.RectF{}, err
	}
	return l.bounds(), nil
}

// Translate moves the layer by whole pixels. A layer sitting between pixels
// is snapped to the pixel it renders on first, so a moved layer is always on
// the grid.
func (h *Layer) Translate(dx, dy int) error {
	return h.doc.mutate(OpTranslate, func(st *state) error {
		i := st.indexOf(h.id)
		if i < 0 {
			return ErrLayerGone
		}
		c := *st.layers[i]
		o := c.origin()
		c.x = float64(o.X + dx)
		c.y = float64(o.Y + dy)
		st.layers[i] = &c
		return nil
	})
}

// DuplicateInto copies the layer on top of target and activates the copy.
// The copy lands where the host spawn policy puts it.
func (h *Layer) DuplicateInto(target host.Document) (host.Layer, error) {
	dst, ok := target.(*Document)
	if !ok || dst.host != h.doc.host {
		return nil, ErrForeignTarget
	}
	src, err := h.lookup()
	if err != nil {
		return nil, err
	}
	policy := h.doc.host.spawn()
	id := uuid.NewString()
	err = dst.mutate(OpDuplicateLayer, func(st *state) error {
		c := &layer{id: id, name: src.name, img: src.img}
		if policy == SpawnCentered {
			c.x = float64(st.w-src.img.Rect.Dx()) / 2
			c.y = float64(st.h-src.img.Rect.Dy()) / 2
		}
		st.layers = append(st.layers, c)
		st.active = len(st.layers) - 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Layer{doc: dst, id: id}, nil
}
