// Package raster is an in-memory layered document host. It implements the
// host interfaces with RGBA layers, alpha selection masks, bounded history and
// serialized modal execution, and backs the panel, the CLI and the tests.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/images"
)

// SpawnPolicy decides where a layer duplicated into a document lands.
type SpawnPolicy int

const (
	// SpawnOrigin places duplicated layers at (0,0).
	SpawnOrigin SpawnPolicy = iota
	// SpawnCentered centers duplicated layers, which may leave half-pixel offsets.
	SpawnCentered
)

func (p SpawnPolicy) String() string {
	switch p {
	case SpawnOrigin:
		return "origin"
	case SpawnCentered:
		return "centered"
	}
	return "unknown"
}

// DefaultHistoryLimit is the number of history states kept per document.
const DefaultHistoryLimit = 50

// Operation names accepted by FailNext.
const (
	OpOpen            = "open"
	OpSelect          = "select"
	OpDeselect        = "deselect"
	OpInvert          = "invert"
	OpFill            = "fill"
	OpAddLayer        = "add_layer"
	OpDuplicate       = "duplicate"
	OpCrop            = "crop"
	OpExport          = "export"
	OpRestore         = "restore"
	OpClose           = "close"
	OpSelectionBounds = "selection_bounds"
	OpLayerBounds     = "layer_bounds"
	OpTranslate       = "translate"
	OpDuplicateLayer  = "duplicate_layer"
)

var (
	ErrNoSelection   = errors.New("raster: no active selection")
	ErrNoActiveLayer = errors.New("raster: no active layer")
	ErrLayerGone     = errors.New("raster: layer no longer exists")
	ErrForeignTarget = errors.New("raster: target document belongs to another host")
)

// Options configures a Host.
type Options struct {
	Spawn        SpawnPolicy
	HistoryLimit int
}

// Host holds the open documents. The last opened document is the active one.
type Host struct {
	logger *slog.Logger
	opts   Options

	modal   sync.Mutex
	inModal atomic.Bool

	mu     sync.Mutex
	docs   []*Document
	faults map[string][]error
}

var _ host.Host = (*Host)(nil)

// New creates an empty host.
func New(logger *slog.Logger, opts Options) *Host {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Host{logger: logger, opts: opts, faults: make(map[string][]error)}
}

// SetSpawn changes the spawn policy for subsequent layer duplications.
func (h *Host) SetSpawn(p SpawnPolicy) {
	h.mu.Lock()
	h.opts.Spawn = p
	h.mu.Unlock()
}

func (h *Host) spawn() SpawnPolicy {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opts.Spawn
}

// FailNext makes the next call of op return err. Calls queue up.
func (h *Host) FailNext(op string, err error) {
	h.mu.Lock()
	h.faults[op] = append(h.faults[op], err)
	h.mu.Unlock()
}

func (h *Host) fault(op string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	q := h.faults[op]
	if len(q) == 0 {
		return nil
	}
	h.faults[op] = q[1:]
	return fmt.Errorf("%s: %w", op, q[0])
}

func (h *Host) checkModal() error {
	if !h.inModal.Load() {
		return host.ErrNotModal
	}
	return nil
}

// ActiveDocument returns the front-most open document.
func (h *Host) ActiveDocument() (host.Document, bool) {
	d := h.Active()
	if d == nil {
		return nil, false
	}
	return d, true
}

// Active returns the concrete front-most document or nil.
func (h *Host) Active() *Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.docs) == 0 {
		return nil
	}
	return h.docs[len(h.docs)-1]
}

// Documents returns the open documents, oldest first.
func (h *Host) Documents() []*Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Document(nil), h.docs...)
}

// Open decodes a raster file into a new active document.
func (h *Host) Open(path string) (host.Document, error) {
	if err := h.fault(OpOpen); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	img, format, err := images.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	h.logger.Debug("document opened", "path", path, "format", format)
	return h.OpenImage(filepath.Base(path), img), nil
}

// OpenImage creates a new active document with img as its single layer.
func (h *Host) OpenImage(name string, img image.Image) *Document {
	b := img.Bounds()
	l := &layer{id: uuid.NewString(), name: backgroundLayer, img: images.ToRGBA(img)}
	d := newDocument(h, name, state{w: b.Dx(), h: b.Dy(), layers: []*layer{l}, active: 0})
	h.push(d)
	return d
}

// OpenBlank creates a new active document filled with white.
func (h *Host) OpenBlank(name string, w, hgt int) *Document {
	return h.OpenImage(name, flattenLayers(w, hgt, nil))
}

// ExecuteAsModal runs fn while holding the modal lock. Document edits made
// outside such a scope fail with host.ErrNotModal. A panic inside fn is
// returned as an error. History limits are applied when the scope ends.
func (h *Host) ExecuteAsModal(ctx context.Context, commandName string, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.modal.Lock()
	h.inModal.Store(true)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", commandName, r)
		}
		for _, d := range h.Documents() {
			d.trimHistory(h.opts.HistoryLimit)
		}
		h.inModal.Store(false)
		h.modal.Unlock()
		h.logger.Debug("modal command finished", "command", commandName, "duration", time.Since(start), "error", err)
	}()
	return fn(ctx)
}

func (h *Host) push(d *Document) {
	h.mu.Lock()
	h.docs = append(h.docs, d)
	h.mu.Unlock()
}

func (h *Host) remove(d *Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, doc := range h.docs {
		if doc == d {
			h.docs = append(h.docs[:i], h.docs[i+1:]...)
			return
		}
	}
}
