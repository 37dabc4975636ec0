// Package document reads and writes diagram documents and layout snapshots.
//
// # Documents
//
// A [Document] is the authored description of a diagram: nodes with their
// authored positions and sizes, wrappers (groups), edges, and the layout
// settings the diagram starts with. Documents are stored as JSON or TOML:
//
//	{
//	  "strategy": "smart",
//	  "nodes": [
//	    {"id": "api", "label": "API", "width": 200, "height": 80},
//	    {"id": "db", "x": 300, "y": 0}
//	  ],
//	  "edges": [{"from": "api", "to": "db", "type": "step"}]
//	}
//
// The same document in TOML:
//
//	strategy = "smart"
//
//	[[nodes]]
//	id = "api"
//	label = "API"
//
//	[[edges]]
//	from = "api"
//	to = "db"
//
// [Read] and [ReadFile] validate what they decode; [Document.Mount] places
// the document on a [canvas.Canvas].
//
// # Snapshots
//
// A [Snapshot] is a settled diagram: the logical rectangle of every item,
// the routed path of every edge, the viewport and the content bounds. It is
// what the exporters draw and what the pipeline caches. [Capture] builds one
// from a live diagram; [MarshalSnapshot] and [UnmarshalSnapshot] convert it
// to and from JSON.
package document
