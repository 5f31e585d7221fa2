// Package observability provides hooks for instrumenting registry traffic
// and cache behavior.
//
// The collectors talk to PyPI and GitHub through a shared HTTP client and a
// pluggable cache; this package lets the CLI watch that activity without the
// client packages importing any logging or metrics framework.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces per event category
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by library packages, so there are no
// import cycles and the registry clients stay free of observability concerns.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.HTTP().OnRequest(ctx, "GET", "pypi.org", "/pypi/sleap/json")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnHit records a cache hit.
	OnHit(ctx context.Context, key string)

	// OnMiss records a cache miss.
	OnMiss(ctx context.Context, key string)

	// OnSet records a cache write.
	OnSet(ctx context.Context, key string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnHit(context.Context, string)      {}
func (NoopCacheHooks) OnMiss(context.Context, string)     {}
func (NoopCacheHooks) OnSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any registry calls.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	httpHooks = NoopHTTPHooks{}
	cacheHooks = NoopCacheHooks{}
}
