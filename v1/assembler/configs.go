package assembler

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultSystemPrompt instructs the model to ground its answers in the
// retrieved context. Prompt wording is deliberately plain; deployments
// override it via RAG_SYSTEM_PROMPT.
const DefaultSystemPrompt = "You are a helpful assistant. Use the provided context from the user's documents to answer. If the context does not contain the answer, say so instead of guessing."

// DefaultBudget is the character budget for the assembled prompt content.
const DefaultBudget = 6000

type Config struct {
	// Budget bounds the total character count of the assembled content
	// (system instructions, history and chunks combined).
	Budget int `yaml:"budget" env:"RAG_CONTEXT_BUDGET"`

	// SystemPrompt is prepended to every assembled context.
	SystemPrompt string `yaml:"system_prompt" env:"RAG_SYSTEM_PROMPT"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Budget:       DefaultBudget,
		SystemPrompt: DefaultSystemPrompt,
	}
}

// NewConfig reads the assembler configuration from environment variables on
// top of the package defaults.
func NewConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RAG_CONTEXT_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Budget = n
		}
	}
	if v := os.Getenv("RAG_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}

	return cfg
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.Budget <= 0 {
		return fmt.Errorf("assembler: budget must be positive")
	}
	if c.SystemPrompt == "" {
		return fmt.Errorf("assembler: system prompt cannot be empty")
	}
	return nil
}
