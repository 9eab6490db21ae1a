package sdapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/soocke/spice-go/domain/pipeline"
)

// PingPath is requested on the endpoint origin by Ping.
const PingPath = "/internal/ping"

const dataURIPrefix = "data:image/png;base64,"

// maxResponseBytes caps the response body read by Inpaint.
var maxResponseBytes int64 = 64 << 20

// ControlNet configures the ControlNet unit attached to each request.
type ControlNet struct {
	Enabled     bool
	Module      string
	Model       string
	Weight      float64
	ResizeMode  string
	ControlMode string
}

// Config holds the generation parameters of the backend.
type Config struct {
	URL            string
	Width          int
	Height         int
	Steps          int
	CFGScale       float64
	NegativePrompt string
	Sampler        string
	ControlNet     ControlNet
	SoftInpainting bool
}

// Client talks to one img2img endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ pipeline.Inpainter = (*Client)(nil)

// New returns a client. A nil httpClient uses http.DefaultClient.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Ping succeeds when the endpoint's server answers at all.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.cfg.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.cfg.URL)
	}
	ping := url.URL{Scheme: u.Scheme, Host: u.Host, Path: PingPath}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ping.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	_ = resp.Body.Close()
	return nil
}

// BuildRequest assembles the JSON body for req.
func (c *Client) BuildRequest(req pipeline.InpaintRequest) Img2ImgRequest {
	body := Img2ImgRequest{
		Prompt:                req.Prompt,
		NegativePrompt:        c.cfg.NegativePrompt,
		InitImages:            []string{DataURI(req.Image)},
		Mask:                  DataURI(req.Mask),
		DenoisingStrength:     req.Denoise,
		InpaintFullRes:        InpaintFullRes,
		InpaintFullResPadding: InpaintFullResPadding,
		InpaintingFill:        InpaintingFillOriginal,
		Width:                 c.cfg.Width,
		Height:                c.cfg.Height,
		Steps:                 c.cfg.Steps,
		CFGScale:              c.cfg.CFGScale,
		SamplerName:           c.cfg.Sampler,
		AlwaysOnScripts:       map[string]Script{},
	}
	if cn := c.cfg.ControlNet; cn.Enabled {
		body.AlwaysOnScripts[ScriptControlNet] = Script{Args: []any{ControlNetUnit{
			Enabled:       true,
			Module:        cn.Module,
			Model:         cn.Model,
			Weight:        cn.Weight,
			ResizeMode:    cn.ResizeMode,
			ControlMode:   cn.ControlMode,
			GuidanceStart: 0,
			GuidanceEnd:   req.ControlEnd,
		}}}
	}
	if c.cfg.SoftInpainting {
		body.AlwaysOnScripts[ScriptSoftInpainting] = Script{Args: []any{SoftInpaintingArgs{Enabled: true}}}
	}
	return body
}

// Inpaint posts the region and returns the first generated image.
func (c *Client) Inpaint(ctx context.Context, req pipeline.InpaintRequest) ([]byte, error) {
	payload, err := json.Marshal(c.BuildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.logger.Info("sending inpaint request", "url", c.cfg.URL, "region", req.Region.String(), "payload_bytes", len(payload))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(raw)) > maxResponseBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}
	var out Img2ImgResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Images) == 0 || out.Images[0] == "" {
		return nil, ErrNoImage
	}
	img, err := DecodeImage(out.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DataURI wraps PNG bytes in a base64 data URI.
func DataURI(png []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeImage accepts bare base64 or a data URI.
func DecodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
