// Package sdstub is a local stand-in for the img2img endpoint. It returns the
// init image resized to the requested size, tinted inside the mask.
package sdstub

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soocke/spice-go/domain/images"
	"github.com/soocke/spice-go/domain/sdapi"
)

const (
	Img2ImgPath = "/sdapi/v1/img2img"
	defaultSize = 512
	maxBody     = 64 << 20
)

// Server serves the stub endpoints.
type Server struct {
	logger   *slog.Logger
	tint     color.RGBA
	router   *chi.Mux
	requests atomic.Int64
}

// New returns a stub that blends tint into masked pixels.
func New(logger *slog.Logger, tint color.RGBA) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{logger: logger, tint: tint}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get(sdapi.PingPath, s.handlePing)
	r.Post(Img2ImgPath, s.handleImg2Img)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Requests reports the number of img2img requests served successfully.
func (s *Server) Requests() int64 { return s.requests.Load() }

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleImg2Img(w http.ResponseWriter, r *http.Request) {
	var req sdapi.Img2ImgRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	out, err := s.render(req)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	s.requests.Add(1)
	s.logger.Info("img2img served", "request_id", middleware.GetReqID(r.Context()),
		"prompt", req.Prompt, "width", req.Width, "height", req.Height, "denoise", req.DenoisingStrength)
	writeJSON(w, http.StatusOK, sdapi.Img2ImgResponse{Images: []string{base64.StdEncoding.EncodeToString(out)}})
}

func (s *Server) render(req sdapi.Img2ImgRequest) ([]byte, error) {
	if len(req.InitImages) == 0 {
		return nil, errors.New("init_images is empty")
	}
	if req.Mask == "" {
		return nil, errors.New("mask is missing")
	}
	src, err := decode(req.InitImages[0])
	if err != nil {
		return nil, fmt.Errorf("init image: %w", err)
	}
	mask, err := decode(req.Mask)
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	if src.Bounds().Size() != mask.Bounds().Size() {
		return nil, fmt.Errorf("mask size %v differs from image size %v", mask.Bounds().Size(), src.Bounds().Size())
	}
	w, h := req.Width, req.Height
	if w <= 0 {
		w = defaultSize
	}
	if h <= 0 {
		h = defaultSize
	}
	strength := req.DenoisingStrength
	if strength <= 0 || strength > 1 {
		strength = 1
	}
	dst := images.Resample(src, w, h)
	m := images.Resample(mask, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !images.Selected(m, x, y) {
				continue
			}
			dst.SetRGBA(x, y, blend(dst.RGBAAt(x, y), s.tint, strength))
		}
	}
	return images.EncodePNG(dst)
}

func decode(s string) (image.Image, error) {
	raw, err := sdapi.DecodeImage(s)
	if err != nil {
		return nil, err
	}
	img, _, err := images.Decode(raw)
	return img, err
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x)*(1-t) + float64(y)*t + 0.5) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	s.logger.Warn("img2img rejected", "request_id", middleware.GetReqID(r.Context()), "status", code, "error", err)
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
