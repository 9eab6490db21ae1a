package pipeline

import (
	"context"
	"log/slog"

	"github.com/soocke/spice-go/domain/host"
)

// Classifier detects selections that cover every pixel of the canvas.
type Classifier struct {
	host   host.Host
	logger *slog.Logger
}

func NewClassifier(h host.Host, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{host: h, logger: logger}
}

// IsWholeCanvas reports whether doc's selection covers the whole canvas.
// Selections whose bounding box differs from the canvas size are rejected
// without touching the document. Otherwise the selection is inverted inside a
// history-scoped probe: nothing left selected proves full coverage.
func (c *Classifier) IsWholeCanvas(ctx context.Context, doc host.Document) (bool, error) {
	b, ok := doc.SelectionBounds().Get()
	if !ok {
		return false, nil
	}
	if b.Width() != doc.Width() || b.Height() != doc.Height() {
		return false, nil
	}
	whole := false
	err := c.host.ExecuteAsModal(ctx, CommandCheckSelection, func(ctx context.Context) error {
		return host.WithCheckpoint(doc, func(host.Checkpoint) error {
			if err := doc.InvertSelection(); err != nil {
				c.logger.Warn("selection probe failed", "document", doc.Name(), "error", err)
				return nil
			}
			whole = !doc.SelectionBounds().Present()
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	return whole, nil
}
