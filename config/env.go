package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvAPIURL      = "SPICE_API_URL"
	EnvBackend     = "SPICE_BACKEND"
	EnvScratchDir  = "SPICE_SCRATCH_DIR"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvOpenAIModel = "SPICE_OPENAI_MODEL"
	EnvOpenAIBase  = "OPENAI_BASE_URL"
)

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Variables already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from environment variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.APIURL, EnvAPIURL)
	set(&c.Backend, EnvBackend)
	set(&c.ScratchDir, EnvScratchDir)
	set(&c.OpenAI.APIKey, EnvOpenAIKey)
	set(&c.OpenAI.Model, EnvOpenAIModel)
	set(&c.OpenAI.BaseURL, EnvOpenAIBase)
	_ = c.Validate()
}
