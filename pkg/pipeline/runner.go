package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zenui/zendiagram/pkg/cache"
	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/observability"
)

// Runner runs documents through layout and rendering, consulting Cache
// before each stage. Layout snapshots are keyed by document hash and layout
// options; artifacts by snapshot hash and render options, so a snapshot
// that comes back unchanged from a different document still hits.
//
// A Runner holds no per-run state and may be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. Nil arguments select a NullCache, the
// default keyer and log.Default respectively.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute lays out doc and renders every format in opts.
func (r *Runner) Execute(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{}
	if h, err := doc.Hash(); err == nil {
		res.DocHash = h
	}

	t0 := time.Now()
	snap, hit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Snapshot, res.CacheInfo.LayoutHit = snap, hit
	res.Stats = Stats{
		NodeCount:    len(snap.Nodes),
		WrapperCount: len(snap.Wrappers),
		EdgeCount:    len(snap.Edges),
		LayoutTime:   time.Since(t0),
	}
	r.Logger.Debug("layout stage", "strategy", snap.Strategy, "nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount, "cached", hit, "took", res.Stats.LayoutTime)

	t0 = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts, res.CacheInfo.RenderHit = artifacts, hit
	res.Stats.RenderTime = time.Since(t0)
	r.Logger.Debug("render stage", "formats", opts.Formats, "cached", hit, "took", res.Stats.RenderTime)

	return res, nil
}

// LayoutWithCacheInfo lays out doc with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *document.Document, opts Options) (document.Snapshot, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return document.Snapshot{}, false, err
	}

	docHash, err := doc.Hash()
	if err != nil {
		return document.Snapshot{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts(doc))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := document.UnmarshalSnapshot(data); err == nil {
				observability.Current().Cache(ctx, observability.CacheEvent{Op: observability.CacheHit, Kind: "layout"})
				return cached, true, nil
			}
			// undecodable entries are recomputed and overwritten
		}
		observability.Current().Cache(ctx, observability.CacheEvent{Op: observability.CacheMiss, Kind: "layout"})
	}

	snap, err := GenerateLayout(ctx, doc, opts)
	if err != nil {
		return document.Snapshot{}, false, err
	}

	if data, err := document.MarshalSnapshot(snap); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Current().Cache(ctx, observability.CacheEvent{Op: observability.CacheSet, Kind: "layout", Size: len(data)})
		}
	}
	return snap, false, nil
}

// Layout is LayoutWithCacheInfo without the hit flag.
func (r *Runner) Layout(ctx context.Context, doc *document.Document, opts Options) (document.Snapshot, error) {
	snap, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return snap, err
}

// RenderWithCacheInfo renders snap in every format of opts. The flag is
// true only when all formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap document.Snapshot, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	snapHash, err := snap.Hash()
	if err != nil {
		return nil, false, fmt.Errorf("hash snapshot for cache key: %w", err)
	}

	start := time.Now()

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Current().Cache(ctx, observability.CacheEvent{Op: observability.CacheHit, Kind: "artifact"})
			reportRender(ctx, opts.Formats, true, start, nil)
			return artifacts, true, nil
		}
		observability.Current().Cache(ctx, observability.CacheEvent{Op: observability.CacheMiss, Kind: "artifact"})
	}

	rendered, err := Render(snap, opts)
	reportRender(ctx, opts.Formats, false, start, err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
			continue
		}
		observability.Current().Cache(ctx, observability.CacheEvent{Op: observability.CacheSet, Kind: "artifact", Size: len(data)})
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, snap document.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, opts)
	return artifacts, err
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func reportRender(ctx context.Context, formats []string, cached bool, start time.Time, err error) {
	observability.Current().Render(ctx, observability.RenderEvent{
		Formats:  formats,
		Cached:   cached,
		Duration: time.Since(start),
		Err:      err,
	})
}
