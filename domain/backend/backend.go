// Package backend builds the configured inpainting backend.
package backend

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/domain/httpclient"
	"github.com/soocke/spice-go/domain/openaiedit"
	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/domain/sdapi"
)

// SDAPIConfig maps settings onto the img2img client configuration.
func SDAPIConfig(cfg *config.Config) sdapi.Config {
	return sdapi.Config{
		URL:            cfg.APIURL,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Steps:          cfg.Steps,
		CFGScale:       cfg.CFGScale,
		NegativePrompt: cfg.NegativePrompt,
		Sampler:        cfg.SamplerName,
		ControlNet: sdapi.ControlNet{
			Enabled:     cfg.ControlNet.Enabled,
			Module:      cfg.ControlNet.Module,
			Model:       cfg.ControlNet.Model,
			Weight:      cfg.ControlNet.Weight,
			ResizeMode:  cfg.ControlNet.ResizeMode,
			ControlMode: cfg.ControlNet.ControlMode,
		},
		SoftInpainting: cfg.SoftInpainting,
	}
}

// OpenAIConfig maps settings onto the image edit client configuration.
func OpenAIConfig(cfg *config.Config) openaiedit.Config {
	return openaiedit.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	}
}

// New returns the Inpainter selected by cfg.Backend. Generation requests
// carry no client-side timeout; callers bound them with a context.
func New(cfg *config.Config, logger *slog.Logger) (pipeline.Inpainter, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hc := httpclient.New(0, logger)
	logger.Info("building inpainting backend", "backend", cfg.Backend, "proxy", httpclient.IsProxyConfigured())
	switch cfg.Backend {
	case config.BackendSDAPI, "":
		return sdapi.New(SDAPIConfig(cfg), hc, logger), nil
	case config.BackendOpenAI:
		c, err := openaiedit.New(OpenAIConfig(cfg), hc, logger)
		if err != nil {
			return nil, fmt.Errorf("openai backend: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// ProbeTimeout returns the configured connectivity probe limit.
func ProbeTimeout(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.ProbeTimeoutMS <= 0 {
		return pipeline.DefaultProbeTimeout
	}
	return time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond
}
