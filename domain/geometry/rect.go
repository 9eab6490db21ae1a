package geometry

import (
	"fmt"
	"image"
	"math"
)

// Rect is an integer rectangle in document pixel space with a top-left origin.
// Right and Bottom are exclusive, matching image.Rectangle.
type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// FromImage converts an image.Rectangle into a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{Top: r.Min.Y, Left: r.Min.X, Bottom: r.Max.Y, Right: r.Max.X}
}

// Image returns the rectangle as an image.Rectangle.
func (r Rect) Image() image.Rectangle { return image.Rect(r.Left, r.Top, r.Right, r.Bottom) }

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Square reports whether width equals height.
func (r Rect) Square() bool { return r.Width() == r.Height() }

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() image.Point { return image.Pt(r.Left, r.Top) }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{Top: r.Top + dy, Left: r.Left + dx, Bottom: r.Bottom + dy, Right: r.Right + dx}
}

// Within reports whether r lies inside a w x h canvas.
func (r Rect) Within(w, h int) bool {
	return r.Left >= 0 && r.Top >= 0 && r.Right <= w && r.Bottom <= h
}

func (r Rect) String() string {
	return fmt.Sprintf("{top:%d left:%d bottom:%d right:%d}", r.Top, r.Left, r.Bottom, r.Right)
}

// RectF carries layer bounds as reported by a host, which may be fractional.
type RectF struct {
	Top, Left, Bottom, Right float64
}

// FromRect widens an integer Rect.
func FromRect(r Rect) RectF {
	return RectF{Top: float64(r.Top), Left: float64(r.Left), Bottom: float64(r.Bottom), Right: float64(r.Right)}
}

// Round snaps every edge to the nearest integer.
func (r RectF) Round() Rect {
	return Rect{Top: round(r.Top), Left: round(r.Left), Bottom: round(r.Bottom), Right: round(r.Right)}
}

// OnGrid reports whether the top-left corner sits on whole pixels.
func (r RectF) OnGrid() bool {
	return r.Left == math.Trunc(r.Left) && r.Top == math.Trunc(r.Top)
}

// TopLeftAt reports whether the top-left corner is exactly at p.
func (r RectF) TopLeftAt(p image.Point) bool {
	return r.Left == float64(p.X) && r.Top == float64(p.Y)
}

// OptionalBounds is a bounds query result that may be absent. Absence is a
// regular outcome (for example an empty selection), not an error.
type OptionalBounds struct {
	rect Rect
	ok   bool
}

// Some wraps present bounds.
func Some(r Rect) OptionalBounds { return OptionalBounds{rect: r, ok: true} }

// None reports absent bounds.
func None() OptionalBounds { return OptionalBounds{} }

// Get returns the bounds and whether they are present.
func (o OptionalBounds) Get() (Rect, bool) { return o.rect, o.ok }

// Present reports whether bounds exist.
func (o OptionalBounds) Present() bool { return o.ok }

// Offset is a pixel translation.
type Offset struct {
	DX, DY int
}

// Zero reports whether the offset moves nothing.
func (o Offset) Zero() bool { return o.DX == 0 && o.DY == 0 }

// PlacementOffset returns the whole-pixel translation moving actual's
// top-left onto target's top-left. A fractional corner is first snapped to
// the pixel it renders on.
func PlacementOffset(target Rect, actual RectF) Offset {
	return Offset{
		DX: target.Left - round(actual.Left),
		DY: target.Top - round(actual.Top),
	}
}

// round mirrors the usual "half up" rounding used by host scripting APIs.
func round(v float64) int { return int(math.Floor(v + 0.5)) }
