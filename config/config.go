package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendSDAPI  = "sdapi"
	BackendOpenAI = "openai"
)

// Defaults for the img2img endpoint and generation parameters.
const (
	DefaultAPIURL         = "http://127.0.0.1:7860/sdapi/v1/img2img"
	DefaultNegativePrompt = "bad quality, worst quality, worst detail, sketch, censor"
	DefaultSampler        = "Euler a"
	DefaultSize           = 1024
	DefaultSteps          = 30
	DefaultCFGScale       = 7.0
	DefaultDenoise        = 0.75
	DefaultControlEnd     = 0.5
	DefaultProbeTimeoutMS = 3000
	DefaultHistoryItems   = 50
	DefaultDebounceMS     = 400
)

// ControlNet configures the ControlNet unit sent with img2img requests.
type ControlNet struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Module      string  `json:"module" yaml:"module"`
	Model       string  `json:"model" yaml:"model"`
	Weight      float64 `json:"weight" yaml:"weight"`
	ResizeMode  string  `json:"resize_mode" yaml:"resize_mode"`
	ControlMode string  `json:"control_mode" yaml:"control_mode"`
}

// History bounds the prompt undo stack.
type History struct {
	MaxItems   int `json:"max_items" yaml:"max_items"`
	DebounceMS int `json:"debounce_ms" yaml:"debounce_ms"`
}

// OpenAI configures the alternate image edit backend.
type OpenAI struct {
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Config holds runtime configuration for generation and app behavior.
// Fields may be loaded from a JSON or YAML file, then overridden by the
// environment and command-line flags.
type Config struct {
	Debug    bool `json:"debug" yaml:"debug"`
	DarkMode bool `json:"dark_mode" yaml:"dark_mode"`

	APIURL         string     `json:"api_url" yaml:"api_url"`
	Backend        string     `json:"backend" yaml:"backend"`
	Width          int        `json:"width" yaml:"width"`
	Height         int        `json:"height" yaml:"height"`
	Steps          int        `json:"steps" yaml:"steps"`
	CFGScale       float64    `json:"cfg_scale" yaml:"cfg_scale"`
	NegativePrompt string     `json:"negative_prompt" yaml:"negative_prompt"`
	SamplerName    string     `json:"sampler_name" yaml:"sampler_name"`
	Denoise        float64    `json:"denoise" yaml:"denoise"`
	ControlEnd     float64    `json:"control_end" yaml:"control_end"`
	ControlNet     ControlNet `json:"controlnet" yaml:"controlnet"`
	SoftInpainting bool       `json:"soft_inpainting" yaml:"soft_inpainting"`
	ProbeTimeoutMS int        `json:"probe_timeout_ms" yaml:"probe_timeout_ms"`
	History        History    `json:"history" yaml:"history"`
	OpenAI         OpenAI     `json:"openai" yaml:"openai"`
	ScratchDir     string     `json:"scratch_dir,omitempty" yaml:"scratch_dir,omitempty"`

	// Last selection entered in the panel
	SelectionX int `json:"selection_x" yaml:"selection_x"`
	SelectionY int `json:"selection_y" yaml:"selection_y"`
	SelectionW int `json:"selection_w" yaml:"selection_w"`
	SelectionH int `json:"selection_h" yaml:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		Backend:        BackendSDAPI,
		Width:          DefaultSize,
		Height:         DefaultSize,
		Steps:          DefaultSteps,
		CFGScale:       DefaultCFGScale,
		NegativePrompt: DefaultNegativePrompt,
		SamplerName:    DefaultSampler,
		Denoise:        DefaultDenoise,
		ControlEnd:     DefaultControlEnd,
		ControlNet: ControlNet{
			Enabled:     true,
			Module:      "canny",
			Model:       "diffusers_xl_canny_mid",
			Weight:      1.0,
			ResizeMode:  "Crop and Resize",
			ControlMode: "My prompt is more important",
		},
		SoftInpainting: true,
		ProbeTimeoutMS: DefaultProbeTimeoutMS,
		History:        History{MaxItems: DefaultHistoryItems, DebounceMS: DefaultDebounceMS},
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = DefaultAPIURL
	}
	switch c.Backend {
	case BackendSDAPI, BackendOpenAI:
	default:
		c.Backend = BackendSDAPI
	}
	if c.Width <= 0 {
		c.Width = DefaultSize
	}
	if c.Height <= 0 {
		c.Height = DefaultSize
	}
	if c.Steps <= 0 {
		c.Steps = DefaultSteps
	}
	if c.CFGScale <= 0 {
		c.CFGScale = DefaultCFGScale
	}
	if strings.TrimSpace(c.SamplerName) == "" {
		c.SamplerName = DefaultSampler
	}
	c.Denoise = clamp01(c.Denoise)
	c.ControlEnd = clamp01(c.ControlEnd)
	if c.ControlNet.Weight <= 0 {
		c.ControlNet.Weight = 1.0
	}
	if c.ProbeTimeoutMS <= 0 {
		c.ProbeTimeoutMS = DefaultProbeTimeoutMS
	}
	if c.History.MaxItems <= 0 {
		c.History.MaxItems = DefaultHistoryItems
	}
	if c.History.DebounceMS < 0 {
		c.History.DebounceMS = DefaultDebounceMS
	}
	if c.SelectionW < 0 {
		c.SelectionW = 0
	}
	if c.SelectionH < 0 {
		c.SelectionH = 0
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load attempts to read configuration from the given file path. Values found
// in the file override the defaults. If the file does not exist it returns
// DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, in YAML when the path
// ends in .yaml or .yml and JSON otherwise.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
