// Package observability lets an application watch districting runs, cache
// traffic and API requests without the libraries depending on a metrics
// backend.
//
// Every event category is an interface with a no-op default. Applications
// register their own implementation at startup; libraries only call the
// registered hooks. The CLI uses [DistrictingHooks] to label its progress
// spinner with the phase being worked on.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnDrawStart(ctx, units, districts)
//	// ... draw ...
//	observability.Pipeline().OnDrawComplete(ctx, DrawOutcome{...}, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// DrawOutcome summarizes a finished districting run for hooks.
type DrawOutcome struct {
	Reason    string // converged, cycle-detected, round-limit or deadlock
	Deviation int
	Rounds    int
	Issues    int
	CacheHit  bool
}

// PipelineHooks receives events from the districting pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, units int, duration time.Duration, err error)

	// Draw events
	OnDrawStart(ctx context.Context, units, districts int)
	OnDrawComplete(ctx context.Context, outcome DrawOutcome, duration time.Duration, err error)
}

// =============================================================================
// Districting Hooks
// =============================================================================

// Phase is a stage of a districting run.
type Phase string

const (
	PhaseGrowth  Phase = "growth"
	PhaseFill    Phase = "fill"
	PhaseBalance Phase = "balance"
)

// DistrictingHooks receives phase events from inside districting.Run. Fill
// is skipped when growth leaves no gaps; balance is skipped when the plan
// is incomplete.
type DistrictingHooks interface {
	OnPhaseStart(ctx context.Context, phase Phase)
	// rounds counts growth, fill or balance rounds; it is zero for a walk.
	OnPhaseComplete(ctx context.Context, phase Phase, rounds int, duration time.Duration)
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
// API Hooks
// =============================================================================

// APIHooks receives events from the HTTP API server.
type APIHooks interface {
	// OnRequest records an incoming request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDrawStart(context.Context, int, int)                             {}
func (NoopPipelineHooks) OnDrawComplete(context.Context, DrawOutcome, time.Duration, error) {}

// NoopDistrictingHooks is a no-op implementation of DistrictingHooks.
type NoopDistrictingHooks struct{}

func (NoopDistrictingHooks) OnPhaseStart(context.Context, Phase)                        {}
func (NoopDistrictingHooks) OnPhaseComplete(context.Context, Phase, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAPIHooks is a no-op implementation of APIHooks.
type NoopAPIHooks struct{}

func (NoopAPIHooks) OnRequest(context.Context, string, string)                      {}
func (NoopAPIHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks    PipelineHooks    = NoopPipelineHooks{}
	districtingHooks DistrictingHooks = NoopDistrictingHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	apiHooks         APIHooks         = NoopAPIHooks{}
	hooksMu          sync.RWMutex
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

// SetDistrictingHooks registers phase hooks and returns the previous ones,
// so a command can install hooks for the length of one run.
func SetDistrictingHooks(h DistrictingHooks) DistrictingHooks {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	prev := districtingHooks
	if h != nil {
		districtingHooks = h
	}
	return prev
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

// SetAPIHooks registers custom API hooks.
// This should be called once at application startup before the server starts.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Districting returns the registered phase hooks.
func Districting() DistrictingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return districtingHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// API returns the registered API hooks.
func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	districtingHooks = NoopDistrictingHooks{}
	cacheHooks = NoopCacheHooks{}
	apiHooks = NoopAPIHooks{}
}
