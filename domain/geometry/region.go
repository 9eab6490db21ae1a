package geometry

// Padding is the context margin added around a selection on every side.
const Padding = 64

// shiftPasses bounds the number of whole-box shifts per axis.
const shiftPasses = 2

// ComputeRegion turns a selection into the square generation region used for
// both extraction and placement. The selection is padded, squared around its
// center and shifted back inside the canvas. A box larger than the canvas on an
// axis cannot be fixed by shifting; that axis is truncated to the canvas.
// ComputeRegion is pure: equal inputs give equal outputs.
func ComputeRegion(sel Rect, canvasW, canvasH int) Rect {
	if canvasW <= 0 || canvasH <= 0 {
		return Rect{}
	}
	top := float64(sel.Top) - Padding
	left := float64(sel.Left) - Padding
	bottom := float64(sel.Bottom) + Padding
	right := float64(sel.Right) + Padding

	w, h := right-left, bottom-top
	if w < h {
		d := (h - w) / 2
		left -= d
		right += d
	} else if h < w {
		d := (w - h) / 2
		top -= d
		bottom += d
	}

	cw, ch := float64(canvasW), float64(canvasH)
	for i := 0; i < shiftPasses; i++ {
		left, right = shiftInside(left, right, cw)
		top, bottom = shiftInside(top, bottom, ch)
	}

	return Rect{
		Top:    clamp(round(top), 0, canvasH),
		Left:   clamp(round(left), 0, canvasW),
		Bottom: clamp(round(bottom), 0, canvasH),
		Right:  clamp(round(right), 0, canvasW),
	}
}

// shiftInside moves the span [lo, hi) as a whole so the offending edge lands on
// the canvas edge. Only one edge is corrected per call.
func shiftInside(lo, hi, limit float64) (float64, float64) {
	switch {
	case lo < 0:
		off := -lo
		return lo + off, hi + off
	case hi > limit:
		off := limit - hi
		return lo + off, hi + off
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
