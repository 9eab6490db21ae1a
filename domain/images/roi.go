package images

import (
	"errors"
	"image"
	"image/draw"
)

// Crop copies the part of frame inside r into a new image whose origin is
// (0,0). The rectangle is clamped to the frame bounds and the result is at
// least 1x1. It returns the copy and the clamped rectangle in frame space.
func Crop(frame image.Image, r image.Rectangle) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	roi := r.Intersect(b)
	if roi.Empty() {
		// keep a single pixel at the nearest frame corner
		x0 := clampInt(r.Min.X, b.Min.X, b.Max.X-1)
		y0 := clampInt(r.Min.Y, b.Min.Y, b.Max.Y-1)
		roi = image.Rect(x0, y0, x0+1, y0+1)
	}
	out := image.NewRGBA(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	draw.Draw(out, out.Bounds(), frame, roi.Min, draw.Src)
	return out, roi, nil
}

// ToRGBA returns img as *image.RGBA with a zero origin, copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
