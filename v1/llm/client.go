package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/observability"
)

// Client is the public entrypoint for chat completions.
//
// It hides provider details from the orchestrator and applies the retry
// policy: a transient backend failure is retried exactly once after a short
// backoff; permanent failures surface immediately.
type Client struct {
	provider Provider
	cfg      *Config
	observer observability.Observer
}

// NewClient constructs a Client from Config.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("llm: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create provider: %w", err)
	}

	return &Client{provider: p, cfg: cfg}, nil
}

// WithObserver attaches an operation observer.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate produces an assistant reply for the given messages. maxTokens
// bounds the completion; zero falls back to the configured default.
//
// Transient failures (timeouts, 5xx, throttling) are retried once after
// Config.RetryBackoff. Permanent failures and context cancellation are not
// retried.
func (c *Client) Generate(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	start := time.Now()
	reply, err := c.provider.Complete(ctx, c.cfg.Model, messages, maxTokens)

	if err != nil && faults.IsRetryable(err) && ctx.Err() == nil {
		select {
		case <-time.After(c.cfg.RetryBackoff):
		case <-ctx.Done():
			c.observe(start, ctx.Err(), messages, 0)
			return "", fmt.Errorf("llm: generation canceled: %w", ctx.Err())
		}
		reply, err = c.provider.Complete(ctx, c.cfg.Model, messages, maxTokens)
	}

	c.observe(start, err, messages, int64(len(reply)))
	if err != nil {
		return "", fmt.Errorf("llm: generation failed: %w", err)
	}
	return reply, nil
}

// observe reports an operation to the configured observer, if any.
func (c *Client) observe(start time.Time, err error, messages []Message, size int64) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "llm",
		Operation: "generate",
		Resource:  c.cfg.Model,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
		Metadata: map[string]interface{}{
			"message_count": len(messages),
		},
	})
}

// Close releases provider resources, if the provider holds any.
func (c *Client) Close() error {
	if closer, ok := c.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
