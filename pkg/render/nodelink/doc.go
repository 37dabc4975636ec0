// Package nodelink renders diagram snapshots through Graphviz.
//
// # Overview
//
// This package converts a [document.Snapshot] into Graphviz DOT source and
// renders it in process with go-graphviz. It is an alternative to the
// native sinks for users who want Graphviz output, or who want to compare
// the engine's layout against Graphviz's own.
//
// # Usage
//
// Convert a snapshot to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(dot, nodelink.LayoutNeato)
//
// # Options
//
// The [Options] struct controls DOT generation:
//
//   - Pinned: emit each node's engine-computed position ("pos" with "!")
//     and fixed size, so the neato engine reproduces the engine layout
//   - Detailed: append node sizes to labels
//
// Without Pinned, Graphviz computes its own placement; use [LayoutDot]
// for a layered drawing.
//
// # Groups
//
// Wrappers become "cluster_" subgraphs containing their children, so
// Graphviz draws a box around each group.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. No external Graphviz binaries are required.
package nodelink
