// Package cache provides the byte cache used for computed reports. Server
// mode backs it with Redis; local mode and tests use the in-memory variant.
// Callers treat every cache failure as a miss and recompute, so a broken
// cache degrades performance, never correctness.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// ReportCache stores serialized report payloads under namespaced keys.
type ReportCache interface {
	// Get returns the cached value, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl stores without expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key under the prefix. Used to drop all
	// of a user's cached reports when their tasks change.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Close releases the backing store connection.
	Close() error
}
