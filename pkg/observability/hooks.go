// Package observability lets applications watch lane edits, pipeline runs
// and cache traffic without the libraries depending on a metrics stack.
//
// Libraries report through the package-level hooks, which default to
// no-ops. An application installs its own implementations once at startup;
// [Metrics] is the Prometheus-backed one used by the CLI:
//
//	reg := prometheus.NewRegistry()
//	observability.NewMetrics(reg).Install()
//
// Emitting an event:
//
//	start := time.Now()
//	err := book.InsertScoreBackward(...)
//	observability.Layout().OnEdit("insert-backward", book.Len(), store.Len(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// LayoutHooks receives events from chart editing sessions.
type LayoutHooks interface {
	// OnEdit records a completed measure or note edit along with the lane
	// and measure counts it left behind.
	OnEdit(op string, lanes, measures int, duration time.Duration, err error)
	// OnInconsistency records that a session refused further edits.
	OnInconsistency(err error)
}

// PipelineHooks receives events from the script-to-artifact pipeline.
type PipelineHooks interface {
	OnBuildStart(ctx context.Context, script string)
	OnBuildComplete(ctx context.Context, script string, measures int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is "document" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnEdit(string, int, int, time.Duration, error) {}
func (NoopLayoutHooks) OnInconsistency(error)                         {}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// registry holds the installed hooks.
type registry struct {
	mu       sync.RWMutex
	layout   LayoutHooks
	pipeline PipelineHooks
	cache    CacheHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{layout: NoopLayoutHooks{}, pipeline: NoopPipelineHooks{}, cache: NoopCacheHooks{}}
}

func (r *registry) update(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// SetLayoutHooks installs h. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		hooks.update(func() { hooks.layout = h })
	}
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		hooks.update(func() { hooks.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		hooks.update(func() { hooks.cache = h })
	}
}

func Layout() LayoutHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.layout
}

func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// Reset restores the no-op hooks. Tests that install hooks defer it.
func Reset() {
	fresh := newRegistry()
	hooks.update(func() {
		hooks.layout, hooks.pipeline, hooks.cache = fresh.layout, fresh.pipeline, fresh.cache
	})
}
