// Package diagram defines the data model of a node-link diagram: nodes,
// wrappers (groups), edges, layout strategies and layout options.
//
// The types here are plain values. They carry no behavior beyond defaulting
// and normalization, so they can be shared freely between the layout
// algorithms, the edge router and the serialization formats.
package diagram

import (
	"fmt"
	"math"

	"github.com/zenui/zendiagram/pkg/errors"
)

// Default node dimensions used whenever a node has not been measured.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 150.0
)

// DefaultWrapperPadding is the space kept between a fit wrapper's box and its children.
const DefaultWrapperPadding = 20.0

// Node is a positioned rectangular item taking part in layout and edges.
type Node struct {
	ID      string  `json:"id" toml:"id"`
	GroupID string  `json:"group,omitempty" toml:"group"`
	File    string  `json:"file,omitempty" toml:"file"`
	Width   float64 `json:"width,omitempty" toml:"width"`
	Height  float64 `json:"height,omitempty" toml:"height"`
	// Ignore leaves the node out of its wrapper's measured box.
	Ignore bool `json:"ignore,omitempty" toml:"ignore"`
}

// Inert reports whether the node lacks an id and must be ignored.
func (n Node) Inert() bool { return n.ID == "" }

// Size returns the measured size, substituting defaults for unmeasured or
// unusable dimensions.
func (n Node) Size() (w, h float64) {
	w, h = n.Width, n.Height
	if !(w > 0) || math.IsInf(w, 0) {
		w = DefaultNodeWidth
	}
	if !(h > 0) || math.IsInf(h, 0) {
		h = DefaultNodeHeight
	}
	return w, h
}

// Wrapper is a group anchor owning a derived box that encloses its children.
type Wrapper struct {
	ID string `json:"id" toml:"id"`
	// Fit shrinks the box to the children. When false, Width and Height give
	// a fixed minimum box that is still grown to contain every child.
	Fit     bool    `json:"fit,omitempty" toml:"fit"`
	Width   float64 `json:"width,omitempty" toml:"width"`
	Height  float64 `json:"height,omitempty" toml:"height"`
	Padding float64 `json:"padding,omitempty" toml:"padding"`
}

// EffectivePadding returns the padding, defaulting when unset or negative.
func (w Wrapper) EffectivePadding() float64 {
	if !(w.Padding > 0) || math.IsInf(w.Padding, 0) {
		return DefaultWrapperPadding
	}
	return w.Padding
}

// Dot names the side of an item an edge attaches to.
type Dot string

const (
	DotAuto   Dot = "auto"
	DotTop    Dot = "top"
	DotRight  Dot = "right"
	DotBottom Dot = "bottom"
	DotLeft   Dot = "left"
)

// Valid reports whether d is a known side (or auto).
func (d Dot) Valid() bool {
	switch d {
	case DotAuto, DotTop, DotRight, DotBottom, DotLeft:
		return true
	}
	return false
}

// Horizontal reports whether d is the left or right side.
func (d Dot) Horizontal() bool { return d == DotLeft || d == DotRight }

// EdgeType selects the path shape of an edge.
type EdgeType string

const (
	EdgeStraight EdgeType = "straight"
	EdgeStep     EdgeType = "step"
	EdgeBezier   EdgeType = "bezier"
)

// LineStyle is the stroke pattern of an edge.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// Edge defaults.
const (
	DefaultEdgeColor = "#94a3b8"
	DefaultEdgeWidth = 2.0
)

// Edge is a directed connection between two item ids.
type Edge struct {
	ID      string    `json:"id,omitempty" toml:"id"`
	From    string    `json:"from" toml:"from"`
	To      string    `json:"to" toml:"to"`
	FromDot Dot       `json:"from_dot,omitempty" toml:"from_dot"`
	ToDot   Dot       `json:"to_dot,omitempty" toml:"to_dot"`
	Type    EdgeType  `json:"type,omitempty" toml:"type"`
	Style   LineStyle `json:"style,omitempty" toml:"style"`
	Color   string    `json:"color,omitempty" toml:"color"`
	Width   float64   `json:"width,omitempty" toml:"width"`
	Label   string    `json:"label,omitempty" toml:"label"`
}

// Normalize returns e with every unset or unknown field replaced by its default.
func (e Edge) Normalize() Edge {
	if e.ID == "" {
		e.ID = e.From + "->" + e.To
	}
	if !e.FromDot.Valid() {
		e.FromDot = DotAuto
	}
	if !e.ToDot.Valid() {
		e.ToDot = DotAuto
	}
	switch e.Type {
	case EdgeStraight, EdgeStep, EdgeBezier:
	default:
		e.Type = EdgeBezier
	}
	switch e.Style {
	case LineSolid, LineDashed, LineDotted:
	default:
		e.Style = LineSolid
	}
	if e.Color == "" {
		e.Color = DefaultEdgeColor
	}
	if !(e.Width > 0) || math.IsInf(e.Width, 0) {
		e.Width = DefaultEdgeWidth
	}
	return e
}

// Touches reports whether id is either endpoint of e.
func (e Edge) Touches(id string) bool { return id != "" && (e.From == id || e.To == id) }

// Strategy selects a layout algorithm.
type Strategy string

const (
	StrategySmart    Strategy = "smart"
	StrategyVertical Strategy = "vertical"
	StrategyGrid     Strategy = "grid"
)

// DefaultStrategy is used when no strategy is given.
const DefaultStrategy = StrategySmart

// ParseStrategy resolves a strategy name. The empty string selects the default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return DefaultStrategy, nil
	case StrategySmart, StrategyVertical, StrategyGrid:
		return Strategy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidStrategy, "unknown layout strategy %q (must be smart, vertical or grid)", s)
}

// Layout option defaults.
const (
	DefaultNodeSpacing       = 80.0
	DefaultIterations        = 100
	DefaultEdgeWeight        = 0.5
	DefaultRepulsionStrength = 5000.0
)

// Upper bounds applied by [LayoutOptions.Sanitize].
const (
	MaxNodeSpacing       = 1000.0
	MaxIterations        = 10000
	MaxEdgeWeight        = 100.0
	MaxRepulsionStrength = 1e7
)

// Off disables a numeric layout option. Any negative value does the same:
// Sanitize clamps it to zero.
const Off = -1

// LayoutOptions parameterizes the smart strategy.
//
// A zero field means the default, so documents and flags only name what
// they change. To run with no attraction, no repulsion or no iterations,
// set the field to [Off].
type LayoutOptions struct {
	NodeSpacing       float64 `json:"node_spacing,omitempty" toml:"node_spacing"`
	Iterations        int     `json:"iterations,omitempty" toml:"iterations"`
	EdgeWeight        float64 `json:"edge_weight,omitempty" toml:"edge_weight"`
	RepulsionStrength float64 `json:"repulsion_strength,omitempty" toml:"repulsion_strength"`
}

// DefaultLayoutOptions returns the documented defaults.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		NodeSpacing:       DefaultNodeSpacing,
		Iterations:        DefaultIterations,
		EdgeWeight:        DefaultEdgeWeight,
		RepulsionStrength: DefaultRepulsionStrength,
	}
}

// WithDefaults fills zero-valued fields with defaults. Explicit values,
// including out-of-range ones and [Off], are kept for Sanitize to clamp.
func (o LayoutOptions) WithDefaults() LayoutOptions {
	d := DefaultLayoutOptions()
	if o.NodeSpacing == 0 {
		o.NodeSpacing = d.NodeSpacing
	}
	if o.Iterations == 0 {
		o.Iterations = d.Iterations
	}
	if o.EdgeWeight == 0 {
		o.EdgeWeight = d.EdgeWeight
	}
	if o.RepulsionStrength == 0 {
		o.RepulsionStrength = d.RepulsionStrength
	}
	return o
}

// Sanitize clamps every option into its valid range. Non-finite values are
// replaced by defaults so the simulation never produces NaN positions.
func (o LayoutOptions) Sanitize() LayoutOptions {
	d := DefaultLayoutOptions()
	o.NodeSpacing = clampOr(o.NodeSpacing, 0, MaxNodeSpacing, d.NodeSpacing)
	o.EdgeWeight = clampOr(o.EdgeWeight, 0, MaxEdgeWeight, d.EdgeWeight)
	o.RepulsionStrength = clampOr(o.RepulsionStrength, 0, MaxRepulsionStrength, d.RepulsionStrength)
	if o.Iterations < 0 {
		o.Iterations = 0
	}
	if o.Iterations > MaxIterations {
		o.Iterations = MaxIterations
	}
	return o
}

// String implements fmt.Stringer for log output.
func (o LayoutOptions) String() string {
	return fmt.Sprintf("spacing=%g iterations=%d edge_weight=%g repulsion=%g",
		o.NodeSpacing, o.Iterations, o.EdgeWeight, o.RepulsionStrength)
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}
