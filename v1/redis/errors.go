package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// Common Redis errors
var (
	// Nil is returned when a key does not exist. It aliases the go-redis
	// sentinel so callers never need to import the driver to check it.
	Nil = redis.Nil

	// ErrClosed is returned when the client is closed.
	ErrClosed = redis.ErrClosed
)

// IsNilError checks if the error is a "key does not exist" error.
func IsNilError(err error) bool {
	return errors.Is(err, Nil)
}

// IsClosedError checks if the error is a "client is closed" error.
func IsClosedError(err error) bool {
	return errors.Is(err, ErrClosed)
}
