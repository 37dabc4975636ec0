// Package pipeline provides the load → layout → render pipeline for
// zendiagram documents.
//
// The CLI and the HTTP service both run diagrams through this package so
// that defaults, validation and caching behave the same at every entry
// point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode and validate a JSON or TOML document
//  2. Layout: Mount the document on a headless canvas, let the engine
//     settle and capture a [document.Snapshot]
//  3. Render: Generate output in various formats (SVG, PNG, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Strategy: "grid",
//	    Formats:  []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	doc, err := pipeline.LoadFile(ctx, "diagram.toml")
//
//	// Layout an existing document
//	snap, err := runner.Layout(ctx, doc, opts)
//
//	// Render an existing snapshot
//	artifacts, err := runner.Render(ctx, snap, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zenui/zendiagram/pkg/cache"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/document"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/render/nodelink"
	"github.com/zenui/zendiagram/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default container width used to fit the view.
	DefaultWidth = 1280.0

	// DefaultHeight is the default container height used to fit the view.
	DefaultHeight = 800.0

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// DefaultMaxFrames bounds how many scheduler frames a layout may take
	// to settle.
	DefaultMaxFrames = 64
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Renderer constants select who draws SVG and PNG output.
const (
	// RendererNative draws the engine's own geometry and edge paths.
	RendererNative = "native"
	// RendererGraphviz hands the diagram to Graphviz for drawing.
	RendererGraphviz = "graphviz"
)

// DefaultRenderer is the default renderer.
const DefaultRenderer = RendererNative

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// ValidRenderers lists the supported renderers.
var ValidRenderers = []string{RendererNative, RendererGraphviz}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests. Zero values
// keep whatever the document says.
type Options struct {
	// Layout options
	Strategy    string  `json:"strategy,omitempty"`
	AutoLayout  *bool   `json:"auto_layout,omitempty"`
	NodeSpacing float64 `json:"node_spacing,omitempty"`
	Iterations  int     `json:"iterations,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	ActiveID    string  `json:"active_id,omitempty"` // Select this item before capturing

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Renderer string   `json:"renderer,omitempty"`
	Graphviz string   `json:"graphviz_layout,omitempty"` // dot or neato
	Scale    float64  `json:"scale,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`
	Grid     float64  `json:"grid,omitempty"`
	Margin   *float64 `json:"margin,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"` // Skip cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// DocHash is the content hash of the input document.
	DocHash string

	// Snapshot is the laid out diagram.
	Snapshot document.Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	WrapperCount int
	EdgeCount    int
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the snapshot came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return zerrors.ValidateFormat(format, ValidFormats...)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRenderer checks that a renderer is valid.
func ValidateRenderer(r string) error {
	if !slices.Contains(ValidRenderers, r) {
		return zerrors.New(zerrors.ErrCodeInvalidInput, "invalid renderer: %q (must be one of: native, graphviz)", r)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Strategy != "" {
		if _, err := diagram.ParseStrategy(o.Strategy); err != nil {
			return err
		}
	}
	if o.Width < 0 || o.Height < 0 {
		return zerrors.New(zerrors.ErrCodeInvalidInput, "container size must not be negative, got %vx%v", o.Width, o.Height)
	}
	if o.ActiveID != "" {
		if err := zerrors.ValidateID(o.ActiveID); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Graphviz == "" {
		o.Graphviz = string(nodelink.LayoutNeato)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateRenderer(o.Renderer); err != nil {
		return err
	}
	if _, err := nodelink.ParseLayout(o.Graphviz); err != nil {
		return err
	}
	if o.Scale < 0 {
		return zerrors.New(zerrors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// ValidateAndSetDefaults checks and defaults the options for the full
// pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// UsesGraphviz reports whether SVG and PNG output is drawn by Graphviz.
func (o *Options) UsesGraphviz() bool {
	return o.Renderer == RendererGraphviz
}

// margin returns the render margin, defaulting to the sink's.
func (o *Options) margin() float64 {
	if o.Margin == nil {
		return sink.DefaultMargin
	}
	return *o.Margin
}

// applyTo overrides the document's layout settings with the options.
func (o *Options) applyTo(doc *document.Document) diagram.LayoutOptions {
	opts := doc.Options
	if o.NodeSpacing != 0 {
		opts.NodeSpacing = o.NodeSpacing
	}
	if o.Iterations != 0 {
		opts.Iterations = o.Iterations
	}
	return opts.WithDefaults().Sanitize()
}

// LayoutKeyOpts returns cache key options for laying out doc.
func (o *Options) LayoutKeyOpts(doc *document.Document) cache.LayoutKeyOpts {
	lo := o.applyTo(doc)
	strategy := o.Strategy
	if strategy == "" {
		strategy = string(doc.Strategy)
	}
	auto := doc.AutoLayoutEnabled()
	if o.AutoLayout != nil {
		auto = *o.AutoLayout
	}
	return cache.LayoutKeyOpts{
		Strategy:          strategy,
		AutoLayout:        auto,
		NodeSpacing:       lo.NodeSpacing,
		Iterations:        lo.Iterations,
		EdgeWeight:        lo.EdgeWeight,
		RepulsionStrength: lo.RepulsionStrength,
		Width:             o.Width,
		Height:            o.Height,
		ActiveID:          o.ActiveID,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:   format,
		Renderer: o.Renderer,
		Labels:   !o.NoLabels,
		Grid:     o.Grid,
		Margin:   o.margin(),
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.UsesGraphviz() && format != FormatJSON {
		k.Renderer += ":" + o.Graphviz
	}
	return k
}
