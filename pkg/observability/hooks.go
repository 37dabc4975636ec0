// Package observability carries pipeline, engine, cache and HTTP events to
// whatever the host wants to do with them.
//
// Library packages report events through [Current]; hosts install a
// [Hooks] implementation at startup with [Set]. Nothing is reported until
// then, and no metrics backend is imported here. [LogHooks] writes every
// event to a charmbracelet/log logger at debug level and [Multi] fans one
// event out to several hooks.
//
//	observability.Set(observability.Multi(
//	    observability.LogHooks{Logger: logger},
//	    myMetrics,
//	))
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LoadEvent describes one document decode and validation.
type LoadEvent struct {
	Format   string
	Source   string
	Nodes    int
	Duration time.Duration
	Err      error
}

// LayoutEvent describes one layout pass of the engine. Items counts the
// layout units after wrappers were collapsed.
type LayoutEvent struct {
	Strategy string
	Items    int
	Edges    int
	Duration time.Duration
}

// RenderEvent describes one render of a snapshot into artifacts.
type RenderEvent struct {
	Formats  []string
	Cached   bool
	Duration time.Duration
	Err      error
}

// CacheOp is the kind of cache access.
type CacheOp string

const (
	CacheHit  CacheOp = "hit"
	CacheMiss CacheOp = "miss"
	CacheSet  CacheOp = "set"
)

// CacheEvent describes one cache access. Kind is the key kind, such as
// "layout" or "artifact". Size is only set for CacheSet.
type CacheEvent struct {
	Op   CacheOp
	Kind string
	Size int
}

// RequestEvent describes one served HTTP request. RateLimited requests
// carry status 429 and never reach a handler.
type RequestEvent struct {
	Method      string
	Route       string
	RequestID   string
	Status      int
	Duration    time.Duration
	RateLimited bool
}

// Hooks receives events. Implementations must be safe for concurrent use.
type Hooks interface {
	Load(ctx context.Context, e LoadEvent)
	Layout(ctx context.Context, e LayoutEvent)
	Render(ctx context.Context, e RenderEvent)
	Cache(ctx context.Context, e CacheEvent)
	Request(ctx context.Context, e RequestEvent)
}

// Nop ignores every event. Embed it to implement only some methods.
type Nop struct{}

func (Nop) Load(context.Context, LoadEvent)       {}
func (Nop) Layout(context.Context, LayoutEvent)   {}
func (Nop) Render(context.Context, RenderEvent)   {}
func (Nop) Cache(context.Context, CacheEvent)     {}
func (Nop) Request(context.Context, RequestEvent) {}

type multi []Hooks

// Multi returns hooks that forward each event to every h in order. Nil
// entries are skipped.
func Multi(hooks ...Hooks) Hooks {
	var m multi
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

func (m multi) Load(ctx context.Context, e LoadEvent) {
	for _, h := range m {
		h.Load(ctx, e)
	}
}

func (m multi) Layout(ctx context.Context, e LayoutEvent) {
	for _, h := range m {
		h.Layout(ctx, e)
	}
}

func (m multi) Render(ctx context.Context, e RenderEvent) {
	for _, h := range m {
		h.Render(ctx, e)
	}
}

func (m multi) Cache(ctx context.Context, e CacheEvent) {
	for _, h := range m {
		h.Cache(ctx, e)
	}
}

func (m multi) Request(ctx context.Context, e RequestEvent) {
	for _, h := range m {
		h.Request(ctx, e)
	}
}

type holder struct{ h Hooks }

var current atomic.Pointer[holder]

// Set installs h as the process-wide hooks. A nil h is ignored.
func Set(h Hooks) {
	if h != nil {
		current.Store(&holder{h})
	}
}

// Current returns the installed hooks, or Nop when none are installed.
func Current() Hooks {
	if p := current.Load(); p != nil {
		return p.h
	}
	return Nop{}
}

// Reset uninstalls any hooks.
func Reset() {
	current.Store(nil)
}
