// Package render groups the output stages of the diagram pipeline.
//
// Rendering always starts from a settled [document.Snapshot], never from a
// live engine, so every renderer sees the same positions, wrapper boxes and
// routed edge paths. Two families of renderers exist:
//
//   - [sink]: native SVG, PNG and JSON output drawn from the snapshot's
//     geometry as computed by the engine
//   - [nodelink]: Graphviz DOT output, optionally laid out and rendered in
//     process by go-graphviz
//
// The pipeline picks between them per format; see the pipeline package's
// Render and Options.Renderer.
//
// [document.Snapshot]: github.com/zenui/zendiagram/pkg/document#Snapshot
// [sink]: github.com/zenui/zendiagram/pkg/render/sink
// [nodelink]: github.com/zenui/zendiagram/pkg/render/nodelink
package render
