// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about pipeline
// stages, closure progress, cache operations, and API requests. Every hook
// category has a no-op default, so libraries can emit events unconditionally
// and no observability backend becomes a hard dependency.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetClosureHooks(&myClosureHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnClosureStart(ctx, pool.Len(), opts.Runs)
//	// ... close the pool ...
//	observability.Pipeline().OnClosureComplete(ctx, out.Len(), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the split-system pipeline.
type PipelineHooks interface {
	// Extract events
	OnExtractStart(ctx context.Context, trees int)
	OnExtractComplete(ctx context.Context, partials int, duration time.Duration, err error)

	// Closure events
	OnClosureStart(ctx context.Context, input, runs int)
	OnClosureComplete(ctx context.Context, output int, duration time.Duration, err error)

	// Synthesis events
	OnSynthesizeStart(ctx context.Context, weighting string)
	OnSynthesizeComplete(ctx context.Context, splits int, duration time.Duration, err error)

	// Least-squares events
	OnFitStart(ctx context.Context, splits int)
	OnFitComplete(ctx context.Context, residual float64, duration time.Duration, err error)
}

// =============================================================================
// Closure Hooks
// =============================================================================

// ClosureHooks receives per-round progress from the closure engine.
type ClosureHooks interface {
	// OnRound records a finished fixpoint round of one run.
	OnRound(ctx context.Context, run, round, pool, rewritten int)

	// OnRunComplete records the end of one closure run.
	OnRunComplete(ctx context.Context, run, pool int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnExtractStart(context.Context, int)                             {}
func (NoopPipelineHooks) OnExtractComplete(context.Context, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnClosureStart(context.Context, int, int)                        {}
func (NoopPipelineHooks) OnClosureComplete(context.Context, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnSynthesizeStart(context.Context, string)                       {}
func (NoopPipelineHooks) OnSynthesizeComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnFitStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnFitComplete(context.Context, float64, time.Duration, error)    {}

// NoopClosureHooks is a no-op implementation of ClosureHooks.
type NoopClosureHooks struct{}

func (NoopClosureHooks) OnRound(context.Context, int, int, int, int) {}
func (NoopClosureHooks) OnRunComplete(context.Context, int, int)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	closureHooks  ClosureHooks  = NoopClosureHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetClosureHooks registers custom closure hooks.
func SetClosureHooks(h ClosureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		closureHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Closure returns the registered closure hooks.
func Closure() ClosureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return closureHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	closureHooks = NoopClosureHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
