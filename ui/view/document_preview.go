package view

import (
	"image"

	"github.com/soocke/spice-go/domain/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// DocumentPreview shows a scaled rendering of the active document.
type DocumentPreview interface {
	UpdatePreview(img image.Image)
	Reset()
}

type documentPreview struct {
	label     *LabelWidget
	prevPhoto *Img // last Tk photo image instance
}

// Internal state tracks the current preview photo so the old image can be
// disposed before replacing it, preventing accumulation of off-screen image data.

const (
	// Max preview dimensions; scaling is proportional.
	maxPreviewW = 480
	maxPreviewH = 320
)

// NewDocumentPreview creates the preview label, grids it and returns the view.
// The preview spans columns 0-3 of the provided row.
func NewDocumentPreview(row int) DocumentPreview {
	photo := NewPhoto(Data(placeholderPNG()))
	label := Label(Image(photo), Borderwidth(1), Relief("sunken"))
	Grid(label, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return &documentPreview{label: label, prevPhoto: photo}
}

func placeholderPNG() []byte {
	data, _ := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 240, 160)))
	return data
}

func (v *documentPreview) UpdatePreview(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	// Scale for display only; allocate a fresh scaled image each call.
	scaled := images.ScaleToFit(img, maxPreviewW, maxPreviewH)
	pngBytes, err := images.EncodePNG(scaled)
	if err != nil {
		return
	}
	v.replace(pngBytes)
}

func (v *documentPreview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.replace(placeholderPNG())
}

func (v *documentPreview) replace(pngBytes []byte) {
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}
