// Package sdapi is an inpainting backend for the Stable Diffusion WebUI
// img2img endpoint.
package sdapi

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed inpainting flags sent with every request.
const (
	InpaintFullRes        = 1
	InpaintFullResPadding = 32
	// InpaintingFillOriginal keeps the original pixels under the mask as the starting point.
	InpaintingFillOriginal = 1
)

// Script names understood by the WebUI alwayson_scripts map.
const (
	ScriptControlNet     = "ControlNet"
	ScriptSoftInpainting = "Soft inpainting"
)

// ErrNoImage is returned when a response carries no image.
var ErrNoImage = errors.New("no image returned from API")

// ErrResponseTooLarge is returned when a response body exceeds the read limit.
var ErrResponseTooLarge = errors.New("response too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API error: %d", e.Code)
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("API error: %d (%s)", e.Code, body)
}

// Img2ImgRequest is the JSON body of POST /sdapi/v1/img2img.
type Img2ImgRequest struct {
	Prompt                string            `json:"prompt"`
	NegativePrompt        string            `json:"negative_prompt"`
	InitImages            []string          `json:"init_images"`
	Mask                  string            `json:"mask"`
	DenoisingStrength     float64           `json:"denoising_strength"`
	InpaintFullRes        int               `json:"inpaint_full_res"`
	InpaintFullResPadding int               `json:"inpaint_full_res_padding"`
	InpaintingFill        int               `json:"inpainting_fill"`
	Width                 int               `json:"width"`
	Height                int               `json:"height"`
	Steps                 int               `json:"steps"`
	CFGScale              float64           `json:"cfg_scale"`
	SamplerName           string            `json:"sampler_name"`
	AlwaysOnScripts       map[string]Script `json:"alwayson_scripts,omitempty"`
}

// Script is one auxiliary pipeline stage. Args are script specific.
type Script struct {
	Args []any `json:"args"`
}

// ControlNetUnit is a single ControlNet conditioning unit.
type ControlNetUnit struct {
	Enabled       bool    `json:"enabled"`
	Module        string  `json:"module"`
	Model         string  `json:"model"`
	Weight        float64 `json:"weight"`
	ResizeMode    string  `json:"resize_mode"`
	ControlMode   string  `json:"control_mode"`
	GuidanceStart float64 `json:"guidance_start"`
	GuidanceEnd   float64 `json:"guidance_end"`
}

// SoftInpaintingArgs enables soft inpainting.
type SoftInpaintingArgs struct {
	Enabled bool `json:"enabled"`
}

// Img2ImgResponse is the JSON reply. Only Images is consumed.
type Img2ImgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info,omitempty"`
}
