// Package observability lets a host program watch perfroute at work.
//
// Three hook sets cover the places where time is spent: the pipeline (net
// resolution and routing runs), the result cache, and the HTTP API. Each
// defaults to a no-op. A program swaps in its own implementation at startup,
// before any routing starts:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// [Register] installs every hook set its argument implements, so one value
// can observe all three. The pipeline reports like this:
//
//	observability.Pipeline().OnRouteStart(ctx, len(edges))
//	observability.Pipeline().OnRouteComplete(ctx, res.RoutedNets, res.FailedNets, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// PipelineHooks receives net resolution and routing events. source is
// "schematic", "netfile" or "inline".
type PipelineHooks interface {
	OnResolveStart(ctx context.Context, source string)
	OnResolveComplete(ctx context.Context, source string, netCount int, duration time.Duration, err error)

	OnRouteStart(ctx context.Context, edgeCount int)
	OnRouteComplete(ctx context.Context, routedNets, failedNets int, duration time.Duration, err error)
}

// CacheHooks receives result cache events. keyType is "nets" or "route".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives API server events. OnError is called in addition to
// OnResponse for requests that fail.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, path string, err error)
}

type (
	NoopPipelineHooks struct{}
	NoopCacheHooks    struct{}
	NoopHTTPHooks     struct{}
)

func (NoopPipelineHooks) OnResolveStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRouteStart(context.Context, int)                                    {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, int, int, time.Duration, error)      {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// registry is replaced as a whole, so readers never lock.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks installs h. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks installs h. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Register installs h for every hook set it implements and reports whether
// it implemented any.
func Register(h any) bool {
	var ok bool
	update(func(r *registry) {
		if p, is := h.(PipelineHooks); is {
			r.pipeline, ok = p, true
		}
		if c, is := h.(CacheHooks); is {
			r.cache, ok = c, true
		}
		if s, is := h.(HTTPHooks); is {
			r.http, ok = s, true
		}
	})
	return ok
}

func Pipeline() PipelineHooks { return current.Load().pipeline }
func Cache() CacheHooks       { return current.Load().cache }
func HTTP() HTTPHooks         { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&registry{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}})
}

// LogHooks writes every event to a logger at debug level, errors at warn.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks logging to l, prefixed with the event family.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{Logger: l} }

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h *LogHooks) OnResolveStart(_ context.Context, source string) {
	h.Logger.Debug("resolve start", "source", source)
}

func (h *LogHooks) OnResolveComplete(_ context.Context, source string, nets int, d time.Duration, err error) {
	h.done("resolve done", err, "source", source, "nets", nets, "took", d)
}

func (h *LogHooks) OnRouteStart(_ context.Context, edges int) {
	h.Logger.Debug("route start", "edges", edges)
}

func (h *LogHooks) OnRouteComplete(_ context.Context, routed, failed int, d time.Duration, err error) {
	h.done("route done", err, "routed", routed, "failed", failed, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Warn("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
