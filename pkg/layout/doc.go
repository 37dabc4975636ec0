// Package layout computes positions for diagram nodes.
//
// # Overview
//
// [Calculate] is the single entry point. It takes the nodes and edges of a
// diagram together with a [diagram.Strategy] and [diagram.LayoutOptions] and
// returns the top-left corner of every participating node in logical units:
//
//	res := layout.Calculate(diagram.StrategySmart, nodes, edges, diagram.LayoutOptions{})
//	p := res.Positions["api"]
//
// # Strategies
//
//   - grid: a near-square grid with ceil(sqrt(n)) columns and a fixed
//     400×300 cell pitch. Nodes fill cells row-major in input order.
//   - vertical: nodes grouped by their File key, groups stacked top to
//     bottom and members placed left to right.
//   - smart (default): a layered seed refined by a force simulation, followed
//     by an overlap-removal pass. See [Smart] for the details.
//
// # Determinism
//
// No strategy uses randomness. Identical inputs always produce identical
// outputs, and no strategy ever emits NaN or infinite coordinates.
//
// # Groups
//
// The engine lays out wrappers as single items. [Collapse] replaces every
// grouped node by its wrapper, lifts edges touching grouped nodes onto the
// wrapper and drops edges that stay inside one wrapper.
package layout
