package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// Grab returns a screen capture of the primary monitor.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}
