// Package cache stores serialized pipeline results.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for deployments sharing results between processes, and [NullCache] to
// disable caching. Keys come from a [Keyer], which hashes the inputs and
// every option that changes the result.
package cache

import (
	"context"
	"time"
)

// TTLResult is how long a closure result stays cached.
const TTLResult = 7 * 24 * time.Hour

// Cache is a byte-oriented key-value store with expiry. Implementations are
// safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired or
	// unreadable entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
