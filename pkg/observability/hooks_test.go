package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

type recorder struct {
	Nop
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) Layout(_ context.Context, e LayoutEvent) { r.add("layout " + e.Strategy) }
func (r *recorder) Cache(_ context.Context, e CacheEvent)   { r.add("cache " + string(e.Op)) }

func TestCurrentDefaultsToNop(t *testing.T) {
	Reset()
	if _, ok := Current().(Nop); !ok {
		t.Errorf("Current() = %T, want Nop", Current())
	}
}

func TestSetAndReset(t *testing.T) {
	defer Reset()
	rec := &recorder{}
	Set(rec)
	Set(nil)
	if Current() != Hooks(rec) {
		t.Fatal("Set(nil) replaced the installed hooks")
	}

	Current().Layout(context.Background(), LayoutEvent{Strategy: "grid"})
	Current().Render(context.Background(), RenderEvent{})
	if len(rec.events) != 1 || rec.events[0] != "layout grid" {
		t.Errorf("events = %v", rec.events)
	}

	Reset()
	if _, ok := Current().(Nop); !ok {
		t.Error("Reset() left hooks installed")
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi(a, nil, b)
	m.Cache(context.Background(), CacheEvent{Op: CacheMiss, Kind: "layout"})
	m.Load(context.Background(), LoadEvent{})

	for name, r := range map[string]*recorder{"a": a, "b": b} {
		if len(r.events) != 1 || r.events[0] != "cache miss" {
			t.Errorf("%s saw %v", name, r.events)
		}
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
	h := LogHooks{Logger: l}
	ctx := context.Background()

	h.Layout(ctx, LayoutEvent{Strategy: "smart", Items: 3})
	h.Cache(ctx, CacheEvent{Op: CacheSet, Kind: "artifact", Size: 42})
	h.Load(ctx, LoadEvent{Source: "bad.json", Err: errors.New("boom")})
	h.Request(ctx, RequestEvent{Method: "POST", Route: "/v1/layout", Status: 429, RateLimited: true})

	out := buf.String()
	for _, want := range []string{"strategy=smart", "bytes=42", "level=warn", "error=boom", "rate_limited=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	h := LogHooks{Logger: log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})}
	h.Layout(context.Background(), LayoutEvent{Strategy: "grid"})
	if buf.Len() != 0 {
		t.Errorf("debug event logged at info level: %q", buf.String())
	}
}
