package chat

import (
	"os"
	"strconv"

	"github.com/contextra/ragcore/v1/faults"
)

// DefaultHistoryWindow is the number of trailing session messages handed to
// the assembler for each turn.
const DefaultHistoryWindow = 10

// Config holds the configuration for the chat orchestrator.
type Config struct {
	// HistoryWindow bounds how many trailing messages of a session are
	// considered per turn. Older messages stay stored but are never sent to
	// the model.
	HistoryWindow int

	// MaxTokens caps the generated answer. Zero falls back to the LLM
	// client's configured default.
	MaxTokens int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		HistoryWindow: DefaultHistoryWindow,
	}
}

// NewConfig creates a Config from environment variables, falling back to
// defaults for unset values:
//   - RAG_HISTORY_WINDOW
//   - RAG_ANSWER_MAX_TOKENS
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RAG_HISTORY_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryWindow = n
		}
	}
	if v := os.Getenv("RAG_ANSWER_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.HistoryWindow <= 0 {
		return faults.NewValidationError("historyWindow", "must be positive")
	}
	if c.MaxTokens < 0 {
		return faults.NewValidationError("maxTokens", "cannot be negative")
	}
	return nil
}
