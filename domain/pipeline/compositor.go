package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/images"
	"github.com/soocke/spice-go/domain/scratch"
)

// Compositor brings a generated image back into the document as a new layer
// aligned with the region.
type Compositor struct {
	host    host.Host
	scratch Scratch
	logger  *slog.Logger
}

func NewCompositor(h host.Host, s Scratch, logger *slog.Logger) *Compositor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compositor{host: h, scratch: s, logger: logger}
}

// Place imports result, duplicates its layer into doc and moves the copy so
// its top-left matches region. The host picks the spawn position, so the
// offset is measured, applied and measured again. On success the selection is
// cleared; on failure the document is restored to its entry state.
func (c *Compositor) Place(ctx context.Context, doc host.Document, result []byte, region geometry.Rect) error {
	if region.Empty() {
		return fmt.Errorf("place: empty region %v", region)
	}
	fitted, err := images.FitPNG(result, region.Width(), region.Height())
	if err != nil {
		return fmt.Errorf("place: %w", err)
	}
	if err := c.scratch.Write(scratch.ResultFile, fitted); err != nil {
		return fmt.Errorf("place: %w", err)
	}
	path, err := c.scratch.Path(scratch.ResultFile)
	if err != nil {
		return fmt.Errorf("place: %w", err)
	}
	err = c.host.ExecuteAsModal(ctx, CommandPlaceResult, func(ctx context.Context) error {
		return host.Rollback(doc, func() error {
			return c.place(doc, path, region)
		})
	})
	if err != nil {
		return fmt.Errorf("place: %w", err)
	}
	return nil
}

func (c *Compositor) place(doc host.Document, path string, region geometry.Rect) (err error) {
	src, err := c.host.Open(path)
	if err != nil {
		return fmt.Errorf("open result: %w", err)
	}
	closed := false
	closeSrc := func() error {
		if closed {
			return nil
		}
		closed = true
		return src.CloseWithoutSaving()
	}
	defer func() {
		if cerr := closeSrc(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close result document: %w", cerr))
		}
	}()

	layers := src.Layers()
	if len(layers) == 0 {
		return errors.New("result document has no layers")
	}
	layer, err := layers[0].DuplicateInto(doc)
	if err != nil {
		return fmt.Errorf("duplicate layer: %w", err)
	}
	if err := closeSrc(); err != nil {
		return fmt.Errorf("close result document: %w", err)
	}

	spawned, err := layer.Bounds()
	if err != nil {
		return fmt.Errorf("measure layer: %w", err)
	}
	off := geometry.PlacementOffset(region, spawned)
	// A zero move still snaps a layer spawned between pixels.
	if !off.Zero() || !spawned.OnGrid() {
		if err := layer.Translate(off.DX, off.DY); err != nil {
			return fmt.Errorf("move layer: %w", err)
		}
	}
	final, err := layer.Bounds()
	if err != nil {
		return fmt.Errorf("measure layer: %w", err)
	}
	if !final.TopLeftAt(region.TopLeft()) {
		return fmt.Errorf("%w: layer at (%g,%g), region at (%d,%d)", ErrMisplaced, final.Left, final.Top, region.Left, region.Top)
	}
	if err := doc.Deselect(); err != nil {
		return fmt.Errorf("deselect: %w", err)
	}
	c.logger.Debug("result placed", "layer", layer.ID(), "spawn_left", spawned.Left, "spawn_top", spawned.Top,
		"dx", off.DX, "dy", off.DY)
	return nil
}
