package layout

import (
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Grid and vertical strategy constants.
const (
	GridCellWidth  = 400.0
	GridCellHeight = 300.0

	VerticalNodeGap  = 50.0
	VerticalGroupGap = 100.0
)

// Result holds the output of a layout pass.
type Result struct {
	// Positions maps node ids to top-left corners in logical units.
	Positions map[string]geom.Point
}

// Bounds returns the union of every positioned node's box. ok is false
// when the result is empty. Sizes come from nodes; ids without a node use
// the default size.
func (r Result) Bounds(nodes []diagram.Node) (geom.Rect, bool) {
	sizes := make(map[string]geom.Size, len(nodes))
	for _, n := range nodes {
		w, h := n.Size()
		sizes[n.ID] = geom.Size{Width: w, Height: h}
	}
	rects := make([]geom.Rect, 0, len(r.Positions))
	for id, p := range r.Positions {
		s, ok := sizes[id]
		if !ok {
			s = geom.Size{Width: diagram.DefaultNodeWidth, Height: diagram.DefaultNodeHeight}
		}
		rects = append(rects, geom.R(p.X, p.Y, s.Width, s.Height))
	}
	return geom.Bounds(rects)
}

// Calculate positions nodes using strategy. Unknown strategies fall back to
// the default. Inert nodes and repeated ids (after the first) are skipped,
// and edges referencing nodes outside the set are ignored. Options are
// defaulted and clamped before use.
func Calculate(strategy diagram.Strategy, nodes []diagram.Node, edges []diagram.Edge, opts diagram.LayoutOptions) Result {
	items := prepare(nodes)
	res := Result{Positions: make(map[string]geom.Point, len(items))}
	if len(items) == 0 {
		return res
	}

	var pos []geom.Point
	switch strategy {
	case diagram.StrategyGrid:
		pos = Grid(items)
	case diagram.StrategyVertical:
		pos = Vertical(items)
	default:
		pos = Smart(items, edges, opts.WithDefaults().Sanitize())
	}

	for i, n := range items {
		if !pos[i].IsFinite() {
			continue
		}
		res.Positions[n.ID] = pos[i]
	}
	return res
}

// prepare drops inert nodes and duplicate ids, keeping input order.
func prepare(nodes []diagram.Node) []diagram.Node {
	seen := make(map[string]bool, len(nodes))
	out := make([]diagram.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Inert() || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

// Grid places nodes in a near-square grid with ceil(sqrt(n)) columns.
func Grid(nodes []diagram.Node) []geom.Point {
	cols := GridColumns(len(nodes))
	out := make([]geom.Point, len(nodes))
	for i := range nodes {
		col, row := i%cols, i/cols
		out[i] = geom.Pt(float64(col)*GridCellWidth, float64(row)*GridCellHeight)
	}
	return out
}

// GridColumns returns the number of grid columns used for n nodes.
func GridColumns(n int) int {
	if n <= 0 {
		return 0
	}
	cols := 1
	for cols*cols < n {
		cols++
	}
	return cols
}

// Vertical stacks file groups top to bottom. Groups appear in order of the
// first node carrying their File key; a node without a File forms its own
// group. Within a group nodes run left to right.
func Vertical(nodes []diagram.Node) []geom.Point {
	type group struct{ members []int }
	var groups []*group
	byFile := make(map[string]*group)
	for i, n := range nodes {
		if n.File == "" {
			groups = append(groups, &group{members: []int{i}})
			continue
		}
		g, ok := byFile[n.File]
		if !ok {
			g = &group{}
			byFile[n.File] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, i)
	}

	out := make([]geom.Point, len(nodes))
	y := 0.0
	for _, g := range groups {
		x, rowHeight := 0.0, 0.0
		for _, i := range g.members {
			w, h := nodes[i].Size()
			out[i] = geom.Pt(x, y)
			x += w + VerticalNodeGap
			if h > rowHeight {
				rowHeight = h
			}
		}
		y += rowHeight + VerticalGroupGap
	}
	return out
}
