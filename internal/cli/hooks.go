package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/observability"
)

// debugHTTPHooks routes registry traffic events into the CLI logger at
// debug level.
type debugHTTPHooks struct {
	logger *log.Logger
}

func (h debugHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h debugHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path,
		"status", status, "duration", d.Round(time.Millisecond))
}

func (h debugHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

// debugCacheHooks logs cache hits, misses, and writes at debug level.
type debugCacheHooks struct {
	logger *log.Logger
}

func (h debugCacheHooks) OnHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h debugCacheHooks) OnMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h debugCacheHooks) OnSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

// EnableDebugHooks registers hooks that surface every registry request
// and cache event through the CLI logger. main calls this when --verbose
// is set; library packages stay free of logging themselves.
func (c *CLI) EnableDebugHooks() {
	observability.SetHTTPHooks(debugHTTPHooks{logger: c.Logger})
	observability.SetCacheHooks(debugCacheHooks{logger: c.Logger})
}
