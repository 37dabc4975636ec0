// Package sink renders settled diagram snapshots into output formats.
//
// # Overview
//
// A "sink" transforms a [document.Snapshot] into a final output format:
//
//   - SVG: vector output with selection styling, labels and an optional grid
//   - PNG: raster output drawn natively with gg, no external tools needed
//   - JSON: the snapshot itself, for external tools and caching
//
// All sinks work in logical units. The output frame is the snapshot's
// content bounds grown by a margin ([DefaultMargin] unless overridden).
//
// # SVG Output
//
//	svg := sink.RenderSVG(snap,
//	    sink.WithGrid(20),
//	    sink.WithTitle("services"),
//	)
//
// # SVG Options
//
//   - [WithoutLabels]: omit node, wrapper and edge labels
//   - [WithGrid]: draw a background grid with the given spacing
//   - [WithMargin]: space around the content bounds
//   - [WithTitle]: set the document title element
//   - [WithoutArrows]: omit arrowheads at edge targets
//
// # PNG Output
//
// [RenderPNG] rasterizes the same picture at a scale factor (2x by default)
// using the embedded Go Mono font for text.
//
//	png, err := sink.RenderPNG(snap, sink.WithScale(3))
//
// # Styling
//
// Edges carry their final paint in the snapshot: color, width, opacity and
// dash pattern already reflect the selection. Nodes connected to the selected
// item are outlined in a lighter accent and the selected node itself in the
// primary accent.
package sink
