package openaiedit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/spice-go/domain/images"
	"github.com/soocke/spice-go/domain/pipeline"
)

func maskPNG(t *testing.T) []byte {
	t.Helper()
	m := image.NewGray(image.Rect(0, 0, 4, 4))
	m.SetGray(2, 2, color.Gray{Y: 255})
	data, err := images.EncodePNG(m)
	require.NoError(t, err)
	return data
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)
}

func TestInpaint_SendsMultipartEdit(t *testing.T) {
	var (
		prompt, model, format string
		maskAlpha             uint32 = 1
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/edits", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(8<<20)) {
			return
		}
		prompt = r.FormValue("prompt")
		model = r.FormValue("model")
		format = r.FormValue("response_format")
		if f, _, err := r.FormFile("mask"); assert.NoError(t, err) {
			raw, _ := io.ReadAll(f)
			if img, _, err := images.Decode(raw); assert.NoError(t, err) {
				_, _, _, maskAlpha = img.At(2, 2).RGBA()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString([]byte("edited"))}},
		})
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, srv.Client(), nil)
	require.NoError(t, err)
	out, err := c.Inpaint(context.Background(), pipeline.InpaintRequest{Prompt: "a boat", Image: []byte("png"), Mask: maskPNG(t)})
	require.NoError(t, err)
	assert.Equal(t, "edited", string(out))
	assert.Equal(t, "a boat", prompt)
	assert.Equal(t, "dall-e-2", model)
	assert.Equal(t, "b64_json", format)
	assert.Equal(t, uint32(0), maskAlpha, "selected mask pixels must be transparent")
}

func TestInpaint_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[]}`)
	}))
	defer srv.Close()
	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL}, srv.Client(), nil)
	require.NoError(t, err)
	_, err = c.Inpaint(context.Background(), pipeline.InpaintRequest{Prompt: "x", Image: []byte("png"), Mask: maskPNG(t)})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL}, srv.Client(), nil)
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}
