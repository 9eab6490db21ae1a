package presenter

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/domain/raster"
)

// DocumentHost narrows the reference host to what the panel drives directly.
type DocumentHost interface {
	Open(path string) (host.Document, error)
	OpenImage(name string, img image.Image) *raster.Document
	Active() *raster.Document
	ExecuteAsModal(ctx context.Context, commandName string, fn func(ctx context.Context) error) error
}

// DocumentView shows the active document.
type DocumentView interface {
	UpdatePreview(img image.Image)
	SetDocumentLabel(text string)
	SetStatus(text string)
}

// SelectionStore persists the last selection entered in the panel.
type SelectionStore interface {
	SaveSelection(r geometry.Rect) error
}

// Command names of panel-driven edits.
const (
	CommandSelect   = "Select Region"
	CommandDeselect = "Deselect"
)

// DocumentPresenter opens documents, edits their selection and refreshes the preview.
type DocumentPresenter struct {
	Host   DocumentHost
	View   DocumentView
	Store  SelectionStore
	Grab   func() (*image.RGBA, error)
	logger *slog.Logger
}

func NewDocumentPresenter(h DocumentHost, view DocumentView, store SelectionStore, grab func() (*image.RGBA, error), logger *slog.Logger) *DocumentPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DocumentPresenter{Host: h, View: view, Store: store, Grab: grab, logger: logger}
}

// Open imports an image file as the active document.
func (p *DocumentPresenter) Open(path string) {
	if p == nil || p.Host == nil || p.View == nil || path == "" {
		return
	}
	if _, err := p.Host.Open(path); err != nil {
		p.logger.Error("open document", "path", path, "error", err)
		p.View.SetStatus(fmt.Sprintf("Cannot open %s", path))
		return
	}
	p.Refresh()
}

// CaptureScreen opens a screenshot as the active document.
func (p *DocumentPresenter) CaptureScreen() {
	if p == nil || p.Host == nil || p.View == nil || p.Grab == nil {
		return
	}
	img, err := p.Grab()
	if err != nil {
		p.logger.Error("screen capture", "error", err)
		p.View.SetStatus("Screen capture failed")
		return
	}
	p.Host.OpenImage("Screen Capture", img)
	p.Refresh()
}

// Select replaces the selection of the active document. An empty rectangle deselects.
func (p *DocumentPresenter) Select(r geometry.Rect) {
	if p == nil || p.Host == nil || p.View == nil {
		return
	}
	doc := p.Host.Active()
	if doc == nil {
		p.View.SetStatus(pipeline.Describe(pipeline.ErrNoDocument))
		return
	}
	name := CommandSelect
	if r.Width() <= 0 || r.Height() <= 0 {
		name = CommandDeselect
	}
	err := p.Host.ExecuteAsModal(context.Background(), name, func(context.Context) error {
		if name == CommandDeselect {
			return doc.Deselect()
		}
		return doc.SetSelection(r)
	})
	if err != nil {
		p.logger.Error("selection", "error", err)
		p.View.SetStatus(fmt.Sprintf("Selection failed: %v", err))
		return
	}
	if p.Store != nil {
		if err := p.Store.SaveSelection(r); err != nil {
			p.logger.Warn("selection not persisted", "error", err)
		}
	}
	p.Refresh()
}

// Refresh redraws the preview from the active document.
func (p *DocumentPresenter) Refresh() {
	if p == nil || p.Host == nil || p.View == nil {
		return
	}
	doc := p.Host.Active()
	if doc == nil {
		p.View.SetDocumentLabel("Document: <none>")
		return
	}
	p.View.UpdatePreview(doc.Flatten())
	label := fmt.Sprintf("Document: %s (%dx%d)", doc.Name(), doc.Width(), doc.Height())
	if sel, ok := doc.SelectionBounds().Get(); ok {
		label += " selection " + sel.String()
	}
	p.View.SetDocumentLabel(label)
}
