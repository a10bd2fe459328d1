package chunker

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultChunkSize = 1000
	defaultOverlap   = 200
)

// Config holds the splitting parameters. Chunk boundaries are fully
// determined by (text, ChunkSize, Overlap), which is what makes
// re-ingestion idempotent.
type Config struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int `yaml:"chunk_size" env:"RAG_CHUNK_SIZE"`

	// Overlap is how many runes each chunk shares with its predecessor.
	// Must be non-negative and strictly less than ChunkSize.
	Overlap int `yaml:"chunk_overlap" env:"RAG_CHUNK_OVERLAP"`
}

// NewConfig reads the chunker configuration from environment variables,
// falling back to the package defaults.
func NewConfig() Config {
	return Config{
		ChunkSize: envInt("RAG_CHUNK_SIZE", defaultChunkSize),
		Overlap:   envInt("RAG_CHUNK_OVERLAP", defaultOverlap),
	}
}

// Validate ensures the configuration allows splitting to make progress.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunker: chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("chunker: overlap must be non-negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("chunker: overlap %d must be smaller than chunk size %d", c.Overlap, c.ChunkSize)
	}
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
