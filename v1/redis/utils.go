package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ping checks if the Redis server is reachable and responsive.
func (r *RedisClient) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Ping(ctx).Err()
}

// PoolStats returns connection pool statistics.
// Useful for monitoring connection pool health.
func (r *RedisClient) PoolStats() *redis.PoolStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.PoolStats()
}

// Get retrieves the value associated with the given key.
// Returns Nil if the key does not exist.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Get(ctx, key).Result()
	r.observeOperation("get", key, "", time.Since(start), err, int64(len(result)), nil)
	return result, err
}

// Set sets the value for the given key with an optional TTL.
// If ttl is 0, the key will not expire.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	err := r.client.Set(ctx, key, value, ttl).Err()
	metadata := map[string]interface{}{}
	if ttl > 0 {
		metadata["ttl"] = ttl.String()
	}
	r.observeOperation("set", key, "", time.Since(start), err, 0, metadata)
	return err
}

// SetNX sets the value for the given key only if the key does not exist.
// Returns true if the key was set, false if it already existed.
func (r *RedisClient) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.SetNX(ctx, key, value, ttl).Result()
	metadata := map[string]interface{}{"was_set": result}
	if ttl > 0 {
		metadata["ttl"] = ttl.String()
	}
	r.observeOperation("setnx", key, "", time.Since(start), err, 0, metadata)
	return result, err
}

// MGet retrieves the values of multiple keys at once.
// Returns a slice of values in the same order as the keys.
// If a key doesn't exist, its value will be nil.
func (r *RedisClient) MGet(ctx context.Context, keys ...string) ([]interface{}, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.MGet(ctx, keys...).Result()
	resource := ""
	if len(keys) > 0 {
		resource = keys[0]
	}
	r.observeOperation("mget", resource, "", time.Since(start), err, int64(len(result)), map[string]interface{}{
		"key_count": len(keys),
	})
	return result, err
}

// Delete deletes one or more keys.
// Returns the number of keys that were deleted.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Del(ctx, keys...).Result()
	resource := ""
	if len(keys) > 0 {
		resource = keys[0]
	}
	r.observeOperation("delete", resource, "", time.Since(start), err, result, map[string]interface{}{
		"key_count": len(keys),
	})
	return result, err
}

// Exists checks if one or more keys exist.
// Returns the number of keys that exist.
func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Exists(ctx, keys...).Result()
}

// Expire sets a timeout on a key.
// After the timeout has expired, the key will be automatically deleted.
func (r *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Expire(ctx, key, ttl).Result()
}

// TTL returns the remaining time to live of a key that has a timeout.
// Returns -1 if the key exists but has no associated expire.
// Returns -2 if the key does not exist.
func (r *RedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.TTL(ctx, key).Result()
}

// Incr increments the integer value of a key by one.
// If the key does not exist, it is set to 0 before performing the operation.
func (r *RedisClient) Incr(ctx context.Context, key string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Incr(ctx, key).Result()
}

// --- JSON Helper Methods ---

// SetJSON serializes the value to JSON and stores it in Redis.
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return r.Set(ctx, key, data, ttl)
}

// GetJSON retrieves the value from Redis and deserializes it from JSON.
// Returns Nil if the key does not exist.
func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}
