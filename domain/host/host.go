// Package host describes the document application surface the inpainting
// pipeline drives. Implementations wrap a concrete host (the in-memory raster
// host in this repository, or a bridge to an external editor).
package host

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/soocke/spice-go/domain/geometry"
)

// Checkpoint is an opaque restorable history state.
type Checkpoint string

var (
	// ErrNotModal is returned by mutating calls made outside ExecuteAsModal.
	ErrNotModal = errors.New("host: document edits require a modal scope")
	// ErrClosed is returned by calls on a closed document.
	ErrClosed = errors.New("host: document is closed")
	// ErrUnknownCheckpoint is returned when restoring a state the host no longer holds.
	ErrUnknownCheckpoint = errors.New("host: unknown history checkpoint")
)

// Host is the application entry point.
type Host interface {
	// ActiveDocument returns the front-most open document.
	ActiveDocument() (Document, bool)
	// Open imports a raster file as a new document.
	Open(path string) (Document, error)
	// ExecuteAsModal runs fn as one atomic, modal operation. Other document
	// edits are blocked while it runs.
	ExecuteAsModal(ctx context.Context, commandName string, fn func(ctx context.Context) error) error
}

// Document is a layered, history-tracked image.
type Document interface {
	ID() string
	Name() string
	Width() int
	Height() int

	// SelectionBounds reports the bounding box of the active selection.
	// Implementations report query failures as absent bounds.
	SelectionBounds() geometry.OptionalBounds
	SetSelection(r geometry.Rect) error
	Deselect() error
	InvertSelection() error
	FillSelection(c color.RGBA) error

	AddLayer(name string) (Layer, error)
	Layers() []Layer
	ActiveLayer() (Layer, bool)

	Duplicate(name string, flatten bool) (Document, error)
	Crop(r geometry.Rect) error
	ExportPNG(path string) error

	HistoryState() Checkpoint
	RestoreHistory(cp Checkpoint) error

	CloseWithoutSaving() error
}

// Layer is a single raster layer of a document.
type Layer interface {
	ID() string
	Name() string
	// Bounds reports the layer extent in document space.
	Bounds() (geometry.RectF, error)
	// Translate moves the layer by a whole-pixel delta.
	Translate(dx, dy int) error
	// DuplicateInto copies the layer into target; the copy becomes the
	// target's active layer at a host-chosen position.
	DuplicateInto(target Document) (Layer, error)
}

// WithCheckpoint captures doc's history state, runs fn and restores the state
// on every exit path, panics included, when fn left the history elsewhere.
func WithCheckpoint(doc Document, fn func(cp Checkpoint) error) (err error) {
	cp := doc.HistoryState()
	defer func() {
		if doc.HistoryState() == cp {
			return
		}
		if rerr := doc.RestoreHistory(cp); rerr != nil {
			rerr = fmt.Errorf("restore history: %w", rerr)
			if err == nil {
				err = rerr
			} else {
				err = errors.Join(err, rerr)
			}
		}
	}()
	return fn(cp)
}

// Rollback is WithCheckpoint for operations that keep their edits on success:
// the entry state is restored only when fn fails or panics.
func Rollback(doc Document, fn func() error) (err error) {
	cp := doc.HistoryState()
	committed := false
	defer func() {
		if committed || doc.HistoryState() == cp {
			return
		}
		if rerr := doc.RestoreHistory(cp); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore history: %w", rerr))
		}
	}()
	if err := fn(); err != nil {
		return err
	}
	committed = true
	return nil
}
