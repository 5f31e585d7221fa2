// Package cache provides caching backends for HTTP responses and derived data.
//
// Three implementations are provided:
//   - FileCache: file-based storage for CLI usage
//   - RedisCache: Redis-backed storage for server deployments
//   - NullCache: no-op cache for testing or when caching is disabled
//
// All backends implement the Cache interface with context-aware operations
// and per-entry TTLs. Use Scoped to namespace keys by data source:
//
//	pypi := cache.NewScoped(c, "pypi:")
//	github := cache.NewScoped(c, "github:")
package cache

import (
	"context"
	"time"
)

// Cache is the interface for caching backends.
type Cache interface {
	// Get retrieves a value by key.
	// Returns (data, true, nil) on a hit and (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	// A TTL of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Scoped wraps a Cache with a key prefix so different data sources
// can share one backend without key collisions.
//
// Example usage:
//
//	// PyPI responses
//	pypiCache := NewScoped(fileCache, "pypi:")
//
//	// GitHub API responses for feedstock collection
//	githubCache := NewScoped(fileCache, "github:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view with a prefix.
// The prefix is prepended to all keys. If inner is nil, a NullCache is used.
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{
		inner:  inner,
		prefix: prefix,
	}
}

// Get retrieves a value using the prefixed key.
func (c *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a value using the prefixed key.
func (c *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a value using the prefixed key.
func (c *Scoped) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying cache.
func (c *Scoped) Close() error {
	return c.inner.Close()
}

// Ensure Scoped implements Cache.
var _ Cache = (*Scoped)(nil)
