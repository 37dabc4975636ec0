package observability

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogHooks writes events to Logger at debug level. Failed loads and
// renders are logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) Load(_ context.Context, e LoadEvent) {
	if e.Err != nil {
		h.Logger.Warn("load failed", "source", e.Source, "format", e.Format, "error", e.Err)
		return
	}
	h.Logger.Debug("loaded", "source", e.Source, "format", e.Format, "nodes", e.Nodes, "took", e.Duration)
}

func (h LogHooks) Layout(_ context.Context, e LayoutEvent) {
	h.Logger.Debug("layout", "strategy", e.Strategy, "items", e.Items, "edges", e.Edges, "took", e.Duration)
}

func (h LogHooks) Render(_ context.Context, e RenderEvent) {
	if e.Err != nil {
		h.Logger.Warn("render failed", "formats", e.Formats, "error", e.Err)
		return
	}
	h.Logger.Debug("render", "formats", e.Formats, "cached", e.Cached, "took", e.Duration)
}

func (h LogHooks) Cache(_ context.Context, e CacheEvent) {
	if e.Op == CacheSet {
		h.Logger.Debug("cache "+string(e.Op), "kind", e.Kind, "bytes", e.Size)
		return
	}
	h.Logger.Debug("cache "+string(e.Op), "kind", e.Kind)
}

func (h LogHooks) Request(_ context.Context, e RequestEvent) {
	h.Logger.Debug("request", "method", e.Method, "route", e.Route, "status", e.Status,
		"request_id", e.RequestID, "took", e.Duration, "rate_limited", e.RateLimited)
}
