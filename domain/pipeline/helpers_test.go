package pipeline

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/images"
	"github.com/soocke/spice-go/domain/raster"
	"github.com/soocke/spice-go/domain/scratch"
)

// gradient returns a w x h image whose pixels encode their coordinates.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 40, A: 255})
		}
	}
	return img
}

func newScratch(t *testing.T) *scratch.Storage {
	t.Helper()
	s, err := scratch.New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func selectRect(t *testing.T, h *raster.Host, doc *raster.Document, r geometry.Rect) {
	t.Helper()
	require.NoError(t, h.ExecuteAsModal(context.Background(), "select", func(context.Context) error {
		return doc.SetSelection(r)
	}))
}

// docState captures what must survive a pipeline stage untouched.
type docState struct {
	history   host.Checkpoint
	layers    []string
	selection *image.Alpha
	docs      int
}

func stateOf(h *raster.Host, doc *raster.Document) docState {
	s := docState{history: doc.HistoryState(), selection: doc.Selection(), docs: len(h.Documents())}
	for _, l := range doc.Layers() {
		s.layers = append(s.layers, l.ID())
	}
	return s
}

// fakeInpainter returns a solid image of a fixed size and records requests.
type fakeInpainter struct {
	mu       sync.Mutex
	size     int
	color    color.RGBA
	pingErr  error
	err      error
	requests []InpaintRequest
	started  chan struct{}
	release  chan struct{}
}

func newFakeInpainter(size int) *fakeInpainter {
	return &fakeInpainter{size: size, color: color.RGBA{R: 10, G: 200, B: 30, A: 255}}
}

func (f *fakeInpainter) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeInpainter) Inpaint(ctx context.Context, req InpaintRequest) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.size, f.size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = f.color.R, f.color.G, f.color.B, f.color.A
	}
	return images.EncodePNG(img)
}

func (f *fakeInpainter) lastRequest() InpaintRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
