package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/contextra/ragcore/v1/redis"
)

const cacheKeyPrefix = "emb:"

// Cache is a read-through store for computed embeddings. Identical texts are
// embedded once per model; everything else is a cache miss and falls through
// to the provider.
//
// Cache failures are deliberately non-fatal: a broken cache degrades to
// recomputing embeddings, it never fails a request.
type Cache struct {
	client redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client as an embedding cache.
func NewCache(client redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// cacheKey derives a stable key from the model and the exact text. Hashing
// keeps keys bounded regardless of chunk length.
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached vector for (model, text), or ok=false on a miss.
func (c *Cache) Get(ctx context.Context, model, text string) ([]float32, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	var vector []float32
	if err := c.client.GetJSON(ctx, cacheKey(model, text), &vector); err != nil {
		return nil, false
	}
	if len(vector) == 0 {
		return nil, false
	}
	return vector, true
}

// Put stores a computed vector. Errors are swallowed; the next request will
// simply recompute.
func (c *Cache) Put(ctx context.Context, model, text string, vector []float32) {
	if c == nil || c.client == nil || len(vector) == 0 {
		return
	}
	_ = c.client.SetJSON(ctx, cacheKey(model, text), vector, c.ttl)
}
