package sdapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/pipeline"
)

func testConfig(url string) Config {
	return Config{
		URL:            url,
		Width:          1024,
		Height:         1024,
		Steps:          30,
		CFGScale:       7,
		NegativePrompt: "bad quality, worst quality, worst detail, sketch, censor",
		Sampler:        "Euler a",
		ControlNet: ControlNet{
			Enabled:     true,
			Module:      "canny",
			Model:       "diffusers_xl_canny_mid",
			Weight:      1,
			ResizeMode:  "Crop and Resize",
			ControlMode: "My prompt is more important",
		},
		SoftInpainting: true,
	}
}

func testRequest() pipeline.InpaintRequest {
	return pipeline.InpaintRequest{
		Prompt:     "a lighthouse",
		Image:      []byte("image-bytes"),
		Mask:       []byte("mask-bytes"),
		Denoise:    0.75,
		ControlEnd: 0.5,
		Region:     geometry.Rect{Top: 36, Left: 36, Bottom: 264, Right: 264},
	}
}

func TestInpaint_SendsPayloadAndDecodesFirstImage(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sdapi/v1/img2img", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		_ = json.NewEncoder(w).Encode(Img2ImgResponse{Images: []string{
			base64.StdEncoding.EncodeToString([]byte("first")),
			base64.StdEncoding.EncodeToString([]byte("second")),
		}})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL+"/sdapi/v1/img2img"), srv.Client(), nil)
	out, err := c.Inpaint(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "first", string(out))

	assert.Equal(t, "a lighthouse", body["prompt"])
	assert.Equal(t, "bad quality, worst quality, worst detail, sketch, censor", body["negative_prompt"])
	assert.Equal(t, []any{"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("image-bytes"))}, body["init_images"])
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("mask-bytes")), body["mask"])
	assert.Equal(t, 0.75, body["denoising_strength"])
	assert.Equal(t, 1.0, body["inpaint_full_res"])
	assert.Equal(t, 32.0, body["inpaint_full_res_padding"])
	assert.Equal(t, 1.0, body["inpainting_fill"])
	assert.Equal(t, 1024.0, body["width"])
	assert.Equal(t, 30.0, body["steps"])
	assert.Equal(t, 7.0, body["cfg_scale"])
	assert.Equal(t, "Euler a", body["sampler_name"])

	scripts := body["alwayson_scripts"].(map[string]any)
	cn := scripts["ControlNet"].(map[string]any)["args"].([]any)[0].(map[string]any)
	assert.Equal(t, true, cn["enabled"])
	assert.Equal(t, "canny", cn["module"])
	assert.Equal(t, "diffusers_xl_canny_mid", cn["model"])
	assert.Equal(t, "Crop and Resize", cn["resize_mode"])
	assert.Equal(t, "My prompt is more important", cn["control_mode"])
	assert.Equal(t, 0.0, cn["guidance_start"])
	assert.Equal(t, 0.5, cn["guidance_end"])
	soft := scripts["Soft inpainting"].(map[string]any)["args"].([]any)[0].(map[string]any)
	assert.Equal(t, true, soft["enabled"])
}

func TestBuildRequest_OmitsDisabledScripts(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:7860/sdapi/v1/img2img")
	cfg.ControlNet.Enabled = false
	cfg.SoftInpainting = false
	body := New(cfg, nil, nil).BuildRequest(testRequest())
	assert.Empty(t, body.AlwaysOnScripts)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alwayson_scripts")
}

func TestInpaint_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), srv.Client(), nil).Inpaint(context.Background(), testRequest())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "API error: 500 (model not loaded)", se.Error())
}

func TestInpaint_NoImage(t *testing.T) {
	for name, reply := range map[string]string{
		"missing": `{}`,
		"empty":   `{"images":[]}`,
		"blank":   `{"images":[""]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, reply)
			}))
			defer srv.Close()
			_, err := New(testConfig(srv.URL), srv.Client(), nil).Inpaint(context.Background(), testRequest())
			assert.ErrorIs(t, err, ErrNoImage)
		})
	}
}

func TestInpaint_ResponseTooLarge(t *testing.T) {
	reply, err := json.Marshal(Img2ImgResponse{Images: []string{DataURI([]byte("png"))}})
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(reply)
	}))
	defer srv.Close()

	limit := maxResponseBytes
	t.Cleanup(func() { maxResponseBytes = limit })

	maxResponseBytes = int64(len(reply)) - 1
	_, err = New(testConfig(srv.URL), srv.Client(), nil).Inpaint(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	maxResponseBytes = int64(len(reply))
	out, err := New(testConfig(srv.URL), srv.Client(), nil).Inpaint(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "png", string(out))
}

func TestInpaint_AcceptsDataURIResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Img2ImgResponse{Images: []string{DataURI([]byte("png"))}})
	}))
	defer srv.Close()
	out, err := New(testConfig(srv.URL), srv.Client(), nil).Inpaint(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "png", string(out))
}

func TestPing(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	}))
	c := New(testConfig(srv.URL+"/sdapi/v1/img2img"), srv.Client(), nil)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, PingPath, path)

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestPing_InvalidURL(t *testing.T) {
	err := New(testConfig("not a url"), nil, nil).Ping(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid api url"))
}

func TestInpaint_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testConfig(srv.URL), srv.Client(), nil).Inpaint(ctx, testRequest())
	assert.True(t, errors.Is(err, context.Canceled))
}
