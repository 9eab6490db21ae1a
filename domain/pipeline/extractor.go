package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/scratch"
)

// Kind selects what Extract renders.
type Kind int

const (
	KindImage Kind = iota
	KindMask
)

func (k Kind) String() string {
	if k == KindMask {
		return "mask"
	}
	return "image"
}

func (k Kind) file() string {
	if k == KindMask {
		return scratch.MaskFile
	}
	return scratch.ImageFile
}

func (k Kind) command() string {
	if k == KindMask {
		return CommandPrepareMask
	}
	return CommandPrepareImage
}

var (
	maskWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	maskBlack = color.RGBA{A: 0xff}
)

// Extractor renders flattened region exports without leaving edits behind.
type Extractor struct {
	host    host.Host
	scratch Scratch
	logger  *slog.Logger
}

func NewExtractor(h host.Host, s Scratch, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{host: h, scratch: s, logger: logger}
}

// Extract returns a PNG of region. KindImage yields the composited pixels,
// KindMask a black/white mask of the current selection. The document's layers,
// selection and history position are the same afterwards, on every path.
func (e *Extractor) Extract(ctx context.Context, doc host.Document, region geometry.Rect, kind Kind) ([]byte, error) {
	path, err := e.scratch.Path(kind.file())
	if err != nil {
		return nil, err
	}
	err = e.host.ExecuteAsModal(ctx, kind.command(), func(ctx context.Context) error {
		return host.WithCheckpoint(doc, func(cp host.Checkpoint) error {
			return e.export(doc, cp, region, kind, path)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", kind, err)
	}
	data, err := e.scratch.Read(kind.file())
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", kind, err)
	}
	e.logger.Debug("region extracted", "kind", kind.String(), "region", region.String(), "bytes", len(data))
	return data, nil
}

func (e *Extractor) export(doc host.Document, cp host.Checkpoint, region geometry.Rect, kind Kind, path string) (err error) {
	if kind == KindMask {
		if err := paintMask(doc); err != nil {
			return err
		}
	}
	dup, err := doc.Duplicate(ExportDocName, true)
	if err != nil {
		return fmt.Errorf("duplicate document: %w", err)
	}
	defer func() {
		if cerr := dup.CloseWithoutSaving(); cerr != nil && err == nil {
			err = fmt.Errorf("close export document: %w", cerr)
		}
	}()
	if err := doc.RestoreHistory(cp); err != nil {
		return fmt.Errorf("restore history: %w", err)
	}
	if err := dup.Crop(region); err != nil {
		return fmt.Errorf("crop: %w", err)
	}
	if err := dup.ExportPNG(path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// paintMask adds a top layer that is white inside the selection and black
// outside, then drops the selection so the flattened copy is unmasked.
func paintMask(doc host.Document) error {
	if _, err := doc.AddLayer(MaskLayerName); err != nil {
		return fmt.Errorf("add mask layer: %w", err)
	}
	if err := doc.FillSelection(maskWhite); err != nil {
		return fmt.Errorf("fill selection: %w", err)
	}
	if err := doc.InvertSelection(); err != nil {
		return fmt.Errorf("invert selection: %w", err)
	}
	if err := doc.FillSelection(maskBlack); err != nil {
		return fmt.Errorf("fill background: %w", err)
	}
	if err := doc.Deselect(); err != nil {
		return fmt.Errorf("deselect: %w", err)
	}
	return nil
}
