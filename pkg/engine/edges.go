package engine

import (
	"github.com/zenui/zendiagram/pkg/edge"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/registry"
)

// Locate returns the logical rectangle of a registered item.
//
// Items with a laid out handle are located from its screen bounds through
// the viewport transform. A wrapper's rectangle is its box placed at the
// handle's origin. Items without a usable handle fall back to their layout
// position.
func (d *Diagram) Locate(id string) (geom.Rect, bool) {
	it, ok := d.store.Item(id)
	if !ok {
		return geom.Rect{}, false
	}
	tr := d.store.Transform()
	if it.Handle != nil {
		if sr, ok := it.Handle.Bounds(); ok && sr.IsFinite() {
			if it.Kind == registry.KindNode {
				return tr.RectToLogical(sr), true
			}
			box, ok := wrapperBox(it)
			if !ok {
				return geom.Rect{}, false
			}
			return box.Translate(tr.ToLogical(sr.Min())), true
		}
	}

	pos, ok := d.store.LayoutPosition(id)
	if !ok {
		return geom.Rect{}, false
	}
	if it.Kind == registry.KindNode {
		w, h := it.Node.Size()
		return geom.R(pos.X, pos.Y, w, h), true
	}
	box, ok := wrapperBox(it)
	if !ok {
		return geom.Rect{}, false
	}
	return geom.R(pos.X, pos.Y, box.Width, box.Height), true
}

func wrapperBox(it registry.Item) (geom.Rect, bool) {
	if it.HasBox {
		return it.Box, true
	}
	fixed := geom.R(0, 0, it.Wrapper.Width, it.Wrapper.Height)
	return fixed, !it.Wrapper.Fit && !fixed.Empty()
}

// Edges routes the current edge set with selection highlighting. Edges
// referencing unregistered or unplaced items are skipped.
func (d *Diagram) Edges() []edge.Rendered {
	return edge.Render(d.store.Edges(), d.Locate, d.store.ActiveID())
}

// ContentBounds returns the union of every top-level item's logical
// rectangle. Grouped nodes are covered by their wrapper.
func (d *Diagram) ContentBounds() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, it := range d.store.Items() {
		if gid := it.GroupID(); gid != "" && d.store.Has(gid) {
			continue
		}
		if r, ok := d.Locate(it.ID); ok {
			rects = append(rects, r)
		}
	}
	return geom.Bounds(rects)
}
