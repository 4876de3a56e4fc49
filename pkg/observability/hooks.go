// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about analysis execution, cache operations, and history
// store access.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalysisHooks(&myAnalysisHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnEnumerateStart(ctx, stateCount, transitionCount)
//	// ... enumerate ...
//	observability.Analysis().OnEnumerateComplete(ctx, pathCount, truncated, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from the analysis pipeline.
type AnalysisHooks interface {
	// Enumeration events
	OnEnumerateStart(ctx context.Context, stateCount, transitionCount int)
	OnEnumerateComplete(ctx context.Context, pathCount int, truncated bool, duration time.Duration, err error)

	// Clustering events
	OnClusterStart(ctx context.Context, pathCount int)
	OnClusterComplete(ctx context.Context, archetypeCount int, duration time.Duration, err error)

	// Prioritization events
	OnPrioritizeStart(ctx context.Context, pathCount int)
	OnPrioritizeComplete(ctx context.Context, p0, p1, p2, p3 int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
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
// History Hooks
// =============================================================================

// HistoryHooks receives events from run-history store operations.
type HistoryHooks interface {
	// OnSave records a persisted run.
	OnSave(ctx context.Context, backend string, duration time.Duration, err error)

	// OnLoad records a run lookup.
	OnLoad(ctx context.Context, backend string, found bool, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnEnumerateStart(context.Context, int, int) {}
func (NoopAnalysisHooks) OnEnumerateComplete(context.Context, int, bool, time.Duration, error) {
}
func (NoopAnalysisHooks) OnClusterStart(context.Context, int)                          {}
func (NoopAnalysisHooks) OnClusterComplete(context.Context, int, time.Duration, error) {}
func (NoopAnalysisHooks) OnPrioritizeStart(context.Context, int)                       {}
func (NoopAnalysisHooks) OnPrioritizeComplete(context.Context, int, int, int, int, time.Duration, error) {
}
func (NoopAnalysisHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopAnalysisHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHistoryHooks is a no-op implementation of HistoryHooks.
type NoopHistoryHooks struct{}

func (NoopHistoryHooks) OnSave(context.Context, string, time.Duration, error) {}
func (NoopHistoryHooks) OnLoad(context.Context, string, bool, time.Duration)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	historyHooks  HistoryHooks  = NoopHistoryHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers custom analysis hooks.
// This should be called once at application startup before any analysis runs.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
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

// SetHistoryHooks registers custom history hooks.
// This should be called once at application startup before any store access.
func SetHistoryHooks(h HistoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		historyHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// History returns the registered history hooks.
func History() HistoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return historyHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
	historyHooks = NoopHistoryHooks{}
}
