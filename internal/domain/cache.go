package domain

import (
	"context"
	"time"
)

// CacheError is a sentinel raised by Cache implementations.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss means no AI grading judgment is stored under the key yet.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache stores memoized AI grading judgments as JSON strings. The health check
// also pings it.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites any existing value. An expiration of 0 keeps the item indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete does not fail when the key is absent.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}
