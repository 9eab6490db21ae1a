// Package pipeline turns a document selection into an inpainted layer: it
// classifies the selection, extracts the region image and mask, calls an
// Inpainter and places the result back at the exact region.
package pipeline

import (
	"context"

	"github.com/soocke/spice-go/domain/geometry"
)

// Host command names, shown in the host history and logs.
const (
	CommandCheckSelection = "Check Full Selection"
	CommandPrepareImage   = "Prepare Image"
	CommandPrepareMask    = "Prepare Mask"
	CommandPlaceResult    = "Place Generated Result"
)

// Temporary host objects created while extracting.
const (
	MaskLayerName = "Temp_Generation_Mask"
	ExportDocName = "Temp_Export_Doc"
)

// Scratch is the file storage shared with the host.
type Scratch interface {
	Path(name string) (string, error)
	Write(name string, data []byte) error
	Read(name string) ([]byte, error)
}

// Locker guards the scratch files against concurrent generations.
type Locker interface {
	Lock() (unlock func(), err error)
}

// InpaintRequest carries one region to an inpainting backend.
type InpaintRequest struct {
	Prompt     string
	Image      []byte // PNG, region sized
	Mask       []byte // PNG, white marks editable pixels
	Denoise    float64
	ControlEnd float64
	Region     geometry.Rect
}

// Inpainter is a remote image inpainting backend.
type Inpainter interface {
	// Ping checks reachability. Callers bound it with a short timeout.
	Ping(ctx context.Context) error
	// Inpaint returns the first generated image.
	Inpaint(ctx context.Context, req InpaintRequest) ([]byte, error)
}
