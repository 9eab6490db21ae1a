// Package openaiedit is an inpainting backend for the OpenAI image edit API.
package openaiedit

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/soocke/spice-go/domain/images"
	"github.com/soocke/spice-go/domain/pipeline"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// ErrNoImage is returned when the response carries no image.
var ErrNoImage = errors.New("no image returned from API")

// Config selects the account, endpoint and model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
}

// Client edits regions through the OpenAI Images API.
type Client struct {
	cfg    Config
	api    openai.Client
	http   *http.Client
	logger *slog.Logger
}

var _ pipeline.Inpainter = (*Client)(nil)

// New builds a client. An API key is required.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set openai.api_key or OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.ImageModelDallE2)
	}
	if cfg.Size == "" {
		cfg.Size = string(openai.ImageEditParamsSize1024x1024)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	return &Client{cfg: cfg, api: openai.NewClient(opts...), http: httpClient, logger: logger}, nil
}

// Ping succeeds when the API host answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	return resp.Body.Close()
}

// Inpaint sends the region with its mask converted to transparency and
// returns the first image.
func (c *Client) Inpaint(ctx context.Context, req pipeline.InpaintRequest) ([]byte, error) {
	mask, err := images.AlphaMask(req.Mask)
	if err != nil {
		return nil, err
	}
	params := openai.ImageEditParams{
		Image:  openai.ImageEditParamsImageUnion{OfFile: openai.File(bytes.NewReader(req.Image), "image.png", "image/png")},
		Mask:   openai.File(bytes.NewReader(mask), "mask.png", "image/png"),
		Prompt: req.Prompt,
		Model:  openai.ImageModel(c.cfg.Model),
		N:      openai.Int(1),
		Size:   openai.ImageEditParamsSize(c.cfg.Size),
	}
	if params.Model == openai.ImageModelDallE2 {
		params.ResponseFormat = openai.ImageEditParamsResponseFormatB64JSON
	}
	c.logger.Info("sending image edit request", "model", c.cfg.Model, "region", req.Region.String())
	resp, err := c.api.Images.Edit(ctx, params)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}
	out, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return out, nil
}
