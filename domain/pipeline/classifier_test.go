package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/raster"
)

func TestIsWholeCanvas_FullSelection(t *testing.T) {
	h := raster.New(nil, raster.Options{})
	doc := h.OpenBlank("doc", 512, 512)
	selectRect(t, h, doc, geometry.Rect{Bottom: 512, Right: 512})
	before := stateOf(h, doc)

	whole, err := NewClassifier(h, nil).IsWholeCanvas(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, whole)
	assert.Equal(t, before, stateOf(h, doc))
}

func TestIsWholeCanvas_PartialSelectionSkipsProbe(t *testing.T) {
	h := raster.New(nil, raster.Options{})
	doc := h.OpenBlank("doc", 512, 512)
	selectRect(t, h, doc, geometry.Rect{Top: 10, Left: 10, Bottom: 100, Right: 100})
	before := doc.HistoryLen()
	h.FailNext(raster.OpInvert, errors.New("probe must not run"))

	whole, err := NewClassifier(h, nil).IsWholeCanvas(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, whole)
	assert.Equal(t, before, doc.HistoryLen())
}

func TestIsWholeCanvas_NoSelection(t *testing.T) {
	h := raster.New(nil, raster.Options{})
	doc := h.OpenBlank("doc", 64, 64)
	whole, err := NewClassifier(h, nil).IsWholeCanvas(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, whole)
}

func TestIsWholeCanvas_FullBoundingBoxWithHole(t *testing.T) {
	h := raster.New(nil, raster.Options{})
	doc := h.OpenBlank("doc", 32, 32)
	mask := image.NewAlpha(image.Rect(0, 0, 32, 32))
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	mask.SetAlpha(10, 10, color.Alpha{})
	require.NoError(t, h.ExecuteAsModal(context.Background(), "lasso", func(context.Context) error {
		return doc.SelectMask(mask)
	}))
	before := stateOf(h, doc)

	whole, err := NewClassifier(h, nil).IsWholeCanvas(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, whole)
	assert.Equal(t, before, stateOf(h, doc))
}

func TestIsWholeCanvas_InvertFailureReadsAsPartial(t *testing.T) {
	h := raster.New(nil, raster.Options{})
	doc := h.OpenBlank("doc", 16, 16)
	selectRect(t, h, doc, geometry.Rect{Bottom: 16, Right: 16})
	h.FailNext(raster.OpInvert, errors.New("invert unavailable"))

	whole, err := NewClassifier(h, nil).IsWholeCanvas(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, whole)
}

// flakyBounds fails every selection query after the first.
type flakyBounds struct {
	*raster.Document
	calls int
}

func (d *flakyBounds) SelectionBounds() geometry.OptionalBounds {
	d.calls++
	if d.calls > 1 {
		return geometry.None()
	}
	return d.Document.SelectionBounds()
}

func TestIsWholeCanvas_ProbeQueryFailureMeansEmpty(t *testing.T) {
	h := raster.New(nil, raster.Options{})
	doc := h.OpenBlank("doc", 16, 16)
	selectRect(t, h, doc, geometry.Rect{Top: 0, Left: 0, Bottom: 16, Right: 16})
	cp := doc.HistoryState()

	whole, err := NewClassifier(h, nil).IsWholeCanvas(context.Background(), &flakyBounds{Document: doc})
	require.NoError(t, err)
	assert.True(t, whole)
	assert.Equal(t, cp, doc.HistoryState())
}
