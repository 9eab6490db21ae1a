package images

import (
	"fmt"
	"image"
	"image/color"
)

// maskThreshold splits gray levels into selected (white) and background.
const maskThreshold = 0x80

// Binary reports whether every pixel of img is pure black or pure white.
func Binary(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if g != 0 && g != 0xff {
				return false
			}
		}
	}
	return true
}

// Selected reports whether the mask pixel at (x, y) marks an editable area.
func Selected(mask image.Image, x, y int) bool {
	return color.GrayModel.Convert(mask.At(x, y)).(color.Gray).Y >= maskThreshold
}

// AlphaMask converts a black/white mask into an RGBA mask whose selected
// (white) pixels are fully transparent, the form edit endpoints expect.
func AlphaMask(maskPNG []byte) ([]byte, error) {
	img, _, err := Decode(maskPNG)
	if err != nil {
		return nil, fmt.Errorf("alpha mask: %w", err)
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if Selected(img, b.Min.X+x, b.Min.Y+y) {
				out.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			out.SetNRGBA(x, y, color.NRGBA{A: 0xff})
		}
	}
	return EncodePNG(out)
}
