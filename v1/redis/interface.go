package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides a high-level interface for the Redis operations used by
// the retrieval pipeline, mainly the embedding cache.
//
// This interface is implemented by the concrete *RedisClient type.
type Client interface {
	// Connection and lifecycle
	Ping(ctx context.Context) error
	PoolStats() *redis.PoolStats
	Client() redis.UniversalClient
	Close() error

	// String operations
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	MGet(ctx context.Context, keys ...string) ([]interface{}, error)

	// Key operations
	Delete(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Numeric operations
	Incr(ctx context.Context, key string) (int64, error)

	// JSON helpers
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
}
