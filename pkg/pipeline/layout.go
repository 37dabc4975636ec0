package pipeline

import (
	"context"
	"time"

	"github.com/zenui/zendiagram/pkg/canvas"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/engine"
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
)

// =============================================================================
// Layout Generation
// =============================================================================

// EngineConfig returns the engine configuration for doc with the layout
// overrides in opts applied. The scheduler is left for the caller.
func EngineConfig(doc *document.Document, opts Options) (engine.Config, error) {
	cfg := doc.Config()
	if opts.Strategy != "" {
		s, err := diagram.ParseStrategy(opts.Strategy)
		if err != nil {
			return engine.Config{}, err
		}
		cfg.Strategy = s
	}
	if opts.AutoLayout != nil {
		cfg.AutoLayout = *opts.AutoLayout
	}
	cfg.Options = opts.applyTo(doc)
	cfg.Container = geom.Size{Width: opts.Width, Height: opts.Height}
	cfg.Logger = opts.Logger
	return cfg, nil
}

// GenerateLayout lays out doc on a headless canvas and captures the result.
//
// The canvas runs on a manual scheduler that is flushed until the engine
// stops requesting frames, so the snapshot reflects a settled layout. When
// the document carries no viewport, the view is fitted into the
// Width×Height container. Layout hooks are emitted by the engine itself.
func GenerateLayout(ctx context.Context, doc *document.Document, opts Options) (document.Snapshot, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return document.Snapshot{}, err
	}

	cfg, err := EngineConfig(doc, opts)
	if err != nil {
		return document.Snapshot{}, err
	}

	sched := frame.NewManual()
	cfg.Scheduler = sched

	start := time.Now()
	c := canvas.New(cfg)
	defer c.Close()
	doc.Mount(c)
	frames := sched.Settle(DefaultMaxFrames)

	d := c.Diagram()
	if opts.ActiveID != "" {
		d.Select(opts.ActiveID)
		frames += sched.Settle(DefaultMaxFrames)
	}
	d.Fit()

	snap := document.Capture(d, doc.Labels())
	snap.Title = doc.Title

	if err := ctx.Err(); err != nil {
		return document.Snapshot{}, err
	}

	opts.Logger.Debug("layout settled",
		"strategy", cfg.Strategy,
		"frames", frames,
		"pending", sched.Pending(),
		"bounds", snap.Bounds,
		"took", time.Since(start))
	return snap, nil
}
