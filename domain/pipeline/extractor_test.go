package pipeline

import (
	"context"
	"errors"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/images"
	"github.com/soocke/spice-go/domain/raster"
)

func extractFixture(t *testing.T) (*raster.Host, *raster.Document, *Extractor, geometry.Rect) {
	t.Helper()
	h := raster.New(nil, raster.Options{})
	doc := h.OpenImage("photo", gradient(256, 256))
	sel := geometry.Rect{Top: 100, Left: 120, Bottom: 140, Right: 150}
	selectRect(t, h, doc, sel)
	region := geometry.ComputeRegion(sel, doc.Width(), doc.Height())
	return h, doc, NewExtractor(h, newScratch(t), nil), region
}

func TestExtractMask_BinaryAndRegionSized(t *testing.T) {
	h, doc, ex, region := extractFixture(t)
	before := stateOf(h, doc)

	data, err := ex.Extract(context.Background(), doc, region, KindMask)
	require.NoError(t, err)
	img, format, err := images.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, region.Width(), img.Bounds().Dx())
	assert.Equal(t, region.Height(), img.Bounds().Dy())
	assert.True(t, images.Binary(img), "mask must contain only black and white")

	// selection pixels are white, context pixels black
	assert.True(t, images.Selected(img, 120-region.Left, 100-region.Top))
	assert.True(t, images.Selected(img, 149-region.Left, 139-region.Top))
	assert.False(t, images.Selected(img, 119-region.Left, 100-region.Top))
	assert.False(t, images.Selected(img, 0, 0))

	assert.Equal(t, before, stateOf(h, doc))
}

func TestExtractImage_MatchesDocumentPixels(t *testing.T) {
	h, doc, ex, region := extractFixture(t)
	before := stateOf(h, doc)

	data, err := ex.Extract(context.Background(), doc, region, KindImage)
	require.NoError(t, err)
	img, _, err := images.Decode(data)
	require.NoError(t, err)
	require.Equal(t, region.Width(), img.Bounds().Dx())

	want := color.RGBA{R: uint8(region.Left + 5), G: uint8(region.Top + 7), B: 40, A: 255}
	got := color.RGBAModel.Convert(img.At(5, 7)).(color.RGBA)
	assert.Equal(t, want, got)
	assert.Equal(t, before, stateOf(h, doc))
}

func TestExtract_ReusesScratchFiles(t *testing.T) {
	h, doc, _, region := extractFixture(t)
	s := newScratch(t)
	ex := NewExtractor(h, s, nil)
	for i := 0; i < 3; i++ {
		_, err := ex.Extract(context.Background(), doc, region, KindMask)
		require.NoError(t, err)
		_, err = ex.Extract(context.Background(), doc, region, KindImage)
		require.NoError(t, err)
	}
	entries, err := readDirNames(s.Dir())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"temp_img.png", "temp_mask.png"}, entries)
}

func TestExtract_HostFailureRestoresDocument(t *testing.T) {
	for _, op := range []string{raster.OpAddLayer, raster.OpFill, raster.OpInvert, raster.OpDuplicate, raster.OpCrop, raster.OpExport} {
		t.Run(op, func(t *testing.T) {
			h, doc, ex, region := extractFixture(t)
			before := stateOf(h, doc)
			boom := errors.New("host failure")
			h.FailNext(op, boom)

			_, err := ex.Extract(context.Background(), doc, region, KindMask)
			require.ErrorIs(t, err, boom)
			assert.Equal(t, before, stateOf(h, doc))
			active, ok := h.ActiveDocument()
			require.True(t, ok)
			assert.Equal(t, doc.ID(), active.ID())
		})
	}
}

func TestExtract_PanicRestoresDocument(t *testing.T) {
	h, doc, ex, region := extractFixture(t)
	before := stateOf(h, doc)
	_, err := ex.Extract(context.Background(), &panickyDuplicate{Document: doc}, region, KindMask)
	require.Error(t, err)
	assert.Equal(t, before, stateOf(h, doc))
}

// panickyDuplicate crashes once the mask layer has been painted.
type panickyDuplicate struct{ *raster.Document }

func (d *panickyDuplicate) Duplicate(string, bool) (host.Document, error) {
	panic("host crashed")
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func TestExtractMask_KeepsUndoHistoryAtLimit(t *testing.T) {
	h, doc, ex, region := extractFixture(t)
	sel := geometry.Rect{Top: 100, Left: 120, Bottom: 140, Right: 150}
	for i := 0; i < raster.DefaultHistoryLimit; i++ {
		selectRect(t, h, doc, sel.Translate(i%3, 0))
	}
	selectRect(t, h, doc, sel)
	require.Equal(t, raster.DefaultHistoryLimit, doc.HistoryLen())
	// 49 more edits leave this state as the oldest one retained.
	oldest := doc.HistoryState()
	for i := 0; i < raster.DefaultHistoryLimit-2; i++ {
		selectRect(t, h, doc, sel.Translate(0, i%3))
	}
	selectRect(t, h, doc, sel)
	before := stateOf(h, doc)

	_, err := ex.Extract(context.Background(), doc, region, KindMask)
	require.NoError(t, err)
	assert.Equal(t, before, stateOf(h, doc))
	assert.Equal(t, raster.DefaultHistoryLimit, doc.HistoryLen())
	require.NoError(t, h.ExecuteAsModal(context.Background(), "undo", func(context.Context) error {
		return doc.RestoreHistory(oldest)
	}))
}
