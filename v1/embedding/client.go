package embedding

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contextra/ragcore/v1/observability"
)

// maxConcurrentBatches bounds how many sub-batch requests run in parallel
// against the inference API.
const maxConcurrentBatches = 4

// Client is the public entrypoint for computing embeddings.
//
// It hides all provider details (inference endpoints, HTTP, caching) from the
// application layer. Every vector it returns has the configured dimension.
type Client struct {
	provider Provider
	cache    *Cache
	cfg      *Config
	observer observability.Observer
}

// NewClient constructs a Client from Config.
// It validates the config and internally constructs the inference provider.
// Application code should depend on *Client, not on Provider or InferenceProvider.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
	}

	return &Client{provider: p, cfg: cfg}, nil
}

// WithCache attaches a read-through embedding cache.
func (c *Client) WithCache(cache *Cache) *Client {
	c.cache = cache
	return c
}

// WithObserver attaches an operation observer.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// Model returns the configured embedding model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Dimension returns the vector length this client produces.
func (c *Client) Dimension() int {
	return c.cfg.Dimension
}

// Embed computes the embedding for a single text. An empty string is a valid
// input and embeds like any other text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch computes embeddings for all texts, preserving input order.
// Cached texts are served from the cache; the rest are split into sub-batches
// of at most Config.BatchSize and embedded concurrently.
//
// The result has exactly one vector per input text, or the whole call fails.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	vectors := make([][]float32, len(texts))

	// Resolve cache hits first so only misses hit the provider.
	var missIdx []int
	for i, text := range texts {
		if v, ok := c.cache.Get(ctx, c.cfg.Model, text); ok {
			vectors[i] = v
			continue
		}
		missIdx = append(missIdx, i)
	}
	hits := len(texts) - len(missIdx)

	var opErr error
	if len(missIdx) > 0 {
		opErr = c.embedMisses(ctx, texts, missIdx, vectors)
	}

	c.observe("embed_batch", start, opErr, int64(len(texts)), map[string]interface{}{
		"cache_hits": hits,
		"model":      c.cfg.Model,
	})
	if opErr != nil {
		return nil, opErr
	}
	return vectors, nil
}

// embedMisses embeds the texts at missIdx in concurrent sub-batches and fills
// the corresponding slots of vectors.
func (c *Client) embedMisses(ctx context.Context, texts []string, missIdx []int, vectors [][]float32) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for lo := 0; lo < len(missIdx); lo += c.cfg.BatchSize {
		hi := min(lo+c.cfg.BatchSize, len(missIdx))
		batchIdx := missIdx[lo:hi]

		g.Go(func() error {
			batch := make([]string, len(batchIdx))
			for i, idx := range batchIdx {
				batch[i] = texts[idx]
			}

			out, err := c.provider.Create(gctx, c.cfg.Model, batch...)
			if err != nil {
				return err
			}
			if len(out) != len(batch) {
				return fmt.Errorf("embedding: provider returned %d vectors for %d texts", len(out), len(batch))
			}

			// Sub-batches write to disjoint index sets, so no locking needed.
			for i, idx := range batchIdx {
				vectors[idx] = out[i]
				c.cache.Put(gctx, c.cfg.Model, texts[idx], out[i])
			}
			return nil
		})
	}

	return g.Wait()
}

// observe reports an operation to the configured observer, if any.
func (c *Client) observe(operation string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "embedding",
		Operation: operation,
		Resource:  c.cfg.Model,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}

// Close allows the client to release any internal resources used by the provider.
// Currently this is a no-op unless the provider implements Close().
func (c *Client) Close() error {
	if closer, ok := c.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
