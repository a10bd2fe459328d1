package embedding

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EMBEDDING_ENDPOINT must point to the root of the OpenAI-compatible inference
// service (no /v1/embeddings appended). The provider appends paths
// automatically, so callers only need to supply the host base URL.

type Config struct {
	// Endpoint is the base URL of the OpenAI-compatible inference API.
	Endpoint string

	// ApiKey authenticates against the inference API.
	ApiKey string

	// Model is the embedding model identifier sent with every request.
	Model string

	// Dimension is the expected vector length. Responses with a different
	// dimension are rejected so the vector index never receives mixed sizes.
	Dimension int

	// BatchSize is the maximum number of texts per upstream request.
	// Larger inputs are split into sub-batches and embedded concurrently.
	BatchSize int

	// HTTPTimeoutS is the HTTP timeout in seconds (default 30).
	HTTPTimeoutS int

	// CacheTTL bounds how long cached vectors live. Zero disables expiry.
	CacheTTL time.Duration
}

// Defaults for the embedding configuration.
const (
	DefaultModel     = "text-embedding-3-small"
	DefaultDimension = 1536
	DefaultBatchSize = 64
	DefaultTimeoutS  = 30
	DefaultCacheTTL  = 24 * time.Hour
)

// NewConfig reads from environment variables.
func NewConfig() *Config {
	cfg := &Config{
		Endpoint:     os.Getenv("EMBEDDING_ENDPOINT"),
		ApiKey:       os.Getenv("EMBEDDING_API_KEY"),
		Model:        DefaultModel,
		Dimension:    DefaultDimension,
		BatchSize:    DefaultBatchSize,
		HTTPTimeoutS: DefaultTimeoutS,
		CacheTTL:     DefaultCacheTTL,
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dimension = n
		}
	}
	if v := os.Getenv("EMBEDDING_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("EMBEDDING_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutS = n
		}
	}
	if v := os.Getenv("EMBEDDING_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
	}

	return cfg
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_ENDPOINT")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_MODEL")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("embedding: dimension must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("embedding: batch size must be positive")
	}
	return nil
}
