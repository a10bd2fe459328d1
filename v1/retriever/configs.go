package retriever

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Collection is the vector collection searched for document chunks.
	Collection string `yaml:"collection" env:"RAG_COLLECTION"`

	// KDefault is the number of chunks retrieved when the caller does not
	// ask for a specific count.
	KDefault int `yaml:"k_default" env:"RAG_K_DEFAULT"`

	// KMax bounds the requested chunk count; out-of-range requests are
	// clamped to [1, KMax].
	KMax int `yaml:"k_max" env:"RAG_K_MAX"`

	// MinScore is the similarity floor. Results scoring below it are
	// dropped so weak matches never reach the prompt.
	MinScore float32 `yaml:"min_score" env:"RAG_MIN_SCORE"`
}

// Defaults for retrieval behavior.
const (
	DefaultCollection = "documents"
	DefaultKDefault   = 3
	DefaultKMax       = 20
	DefaultMinScore   = 0.6
)

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Collection: DefaultCollection,
		KDefault:   DefaultKDefault,
		KMax:       DefaultKMax,
		MinScore:   DefaultMinScore,
	}
}

// NewConfig reads the retrieval configuration from environment variables on
// top of the package defaults.
func NewConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RAG_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("RAG_K_DEFAULT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.KDefault = n
		}
	}
	if v := os.Getenv("RAG_K_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.KMax = n
		}
	}
	if v := os.Getenv("RAG_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 && f <= 1 {
			cfg.MinScore = float32(f)
		}
	}

	return cfg
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("retriever: collection cannot be empty")
	}
	if c.KDefault < 1 {
		return fmt.Errorf("retriever: k default must be at least 1")
	}
	if c.KMax < c.KDefault {
		return fmt.Errorf("retriever: k max must be >= k default")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("retriever: min score must be within [0, 1]")
	}
	return nil
}
