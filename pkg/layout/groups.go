package layout

import (
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Group is a wrapper taking part in layout as a single item.
type Group struct {
	ID string
	// Box is the wrapper's measured size. An empty box means the wrapper has
	// no sized children yet and the default node size is used.
	Box geom.Size
}

// Collapse folds grouped nodes into their group items.
//
// Each node whose GroupID names a known group is replaced by that group, at
// the position of the group's first member. Edges touching a grouped node
// are lifted onto the group item; edges that start and end in the same item
// are dropped. Nodes naming an unknown group stay as they are.
func Collapse(nodes []diagram.Node, groups []Group, edges []diagram.Edge) ([]diagram.Node, []diagram.Edge) {
	known := make(map[string]Group, len(groups))
	for _, g := range groups {
		if g.ID != "" {
			known[g.ID] = g
		}
	}

	owner := make(map[string]string, len(nodes))
	placed := make(map[string]bool, len(groups))
	items := make([]diagram.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Inert() {
			continue
		}
		g, ok := known[n.GroupID]
		if !ok {
			owner[n.ID] = n.ID
			items = append(items, n)
			continue
		}
		owner[n.ID] = g.ID
		if placed[g.ID] {
			continue
		}
		placed[g.ID] = true
		items = append(items, groupItem(g))
	}

	// Wrappers without registered children still take part so that they get
	// a position of their own.
	for _, g := range groups {
		if g.ID == "" || placed[g.ID] {
			continue
		}
		placed[g.ID] = true
		owner[g.ID] = g.ID
		items = append(items, groupItem(g))
	}
	for id := range known {
		owner[id] = id
	}

	lifted := make([]diagram.Edge, 0, len(edges))
	for _, e := range edges {
		from, okF := owner[e.From]
		to, okT := owner[e.To]
		if !okF || !okT || from == to {
			continue
		}
		e.From, e.To = from, to
		lifted = append(lifted, e)
	}
	return items, lifted
}

func groupItem(g Group) diagram.Node {
	n := diagram.Node{ID: g.ID}
	if !g.Box.IsZero() {
		n.Width, n.Height = g.Box.Width, g.Box.Height
	}
	return n
}
