package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LLM_ENDPOINT must point to the root of the OpenAI-compatible completion
// service (no /v1/chat/completions appended). The provider appends paths
// automatically.

type Config struct {
	// Endpoint is the base URL of the OpenAI-compatible completion API.
	Endpoint string

	// ApiKey authenticates against the completion API.
	ApiKey string

	// Model is the model identifier sent with every request.
	Model string

	// MaxTokens is the default completion token limit when the caller does
	// not request one.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// HTTPTimeoutS is the HTTP timeout in seconds (default 60).
	HTTPTimeoutS int

	// RetryBackoff is the pause before the single retry of a transient
	// backend failure.
	RetryBackoff time.Duration
}

// Defaults for the completion configuration.
const (
	DefaultModel        = "gpt-4o-mini"
	DefaultMaxTokens    = 1024
	DefaultTemperature  = 0.7
	DefaultTimeoutS     = 60
	DefaultRetryBackoff = 500 * time.Millisecond
)

// NewConfig reads from environment variables.
func NewConfig() *Config {
	cfg := &Config{
		Endpoint:     os.Getenv("LLM_ENDPOINT"),
		ApiKey:       os.Getenv("LLM_API_KEY"),
		Model:        DefaultModel,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		HTTPTimeoutS: DefaultTimeoutS,
		RetryBackoff: DefaultRetryBackoff,
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("LLM_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutS = n
		}
	}
	if v := os.Getenv("LLM_RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.RetryBackoff = d
		}
	}

	return cfg
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("llm: missing LLM_ENDPOINT")
	}
	if c.Model == "" {
		return fmt.Errorf("llm: missing LLM_MODEL")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("llm: max tokens must be positive")
	}
	return nil
}
