package ingest

import (
	"os"
	"strconv"

	"github.com/contextra/ragcore/v1/faults"
)

// Defaults for the ingestion pipeline.
const (
	DefaultCollection       = "documents"
	DefaultMaxDocumentBytes = 10 << 20 // 10 MiB
	DefaultIndexBatchSize   = 64
)

// Config holds the configuration for the ingestion service.
type Config struct {
	// Collection is the vector collection chunks are indexed into. Must
	// match the retriever's collection.
	Collection string

	// MaxDocumentBytes caps the size of a single uploaded document.
	MaxDocumentBytes int64

	// IndexBatchSize is how many chunks are embedded and upserted per round
	// trip. Each completed batch stays indexed if a later one fails, so the
	// batch size also bounds how much work a retry repeats.
	IndexBatchSize int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Collection:       DefaultCollection,
		MaxDocumentBytes: DefaultMaxDocumentBytes,
		IndexBatchSize:   DefaultIndexBatchSize,
	}
}

// NewConfig creates a Config from environment variables, falling back to
// defaults for unset values:
//   - RAG_COLLECTION
//   - RAG_MAX_DOCUMENT_BYTES
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RAG_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("RAG_MAX_DOCUMENT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxDocumentBytes = n
		}
	}
	if v := os.Getenv("RAG_INDEX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IndexBatchSize = n
		}
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Collection == "" {
		return faults.NewValidationError("collection", "cannot be empty")
	}
	if c.MaxDocumentBytes <= 0 {
		return faults.NewValidationError("maxDocumentBytes", "must be positive")
	}
	if c.IndexBatchSize <= 0 {
		return faults.NewValidationError("indexBatchSize", "must be positive")
	}
	return nil
}
