package engine

import (
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/input"
	"github.com/zenui/zendiagram/pkg/interact"
)

// Pointer input is routed by path: the ids of the registered items
// enclosing the event target, innermost first. An empty path means the
// event hit the diagram background.

// Click handles a left click. Clicking an item selects the innermost item
// on path; clicking the background clears the selection. It reports
// whether the event should stop propagating.
func (d *Diagram) Click(path []string) (stop bool) {
	if d.closed {
		return false
	}
	if dr := d.target(path); dr != nil {
		return dr.Click(path)
	}
	d.store.SetActive("")
	return false
}

// PointerDown starts a drag of the innermost item on path that accepts the
// button, or a viewport pan when the background was hit. It reports
// whether either started.
func (d *Diagram) PointerDown(e input.Pointer, path []string) bool {
	if d.closed || d.active != nil {
		return false
	}
	if d.target(path) == nil {
		return d.view.PointerDown(e, true)
	}
	for _, id := range path {
		dr, ok := d.drags[id]
		if !ok || !dr.CanStart(e.Button) {
			continue
		}
		if dr.PointerDown(e) {
			d.active = dr
			return true
		}
		return false
	}
	return false
}

// PointerMove continues the current drag or pan.
func (d *Diagram) PointerMove(p geom.Point) {
	if d.active != nil {
		d.active.PointerMove(p)
		return
	}
	d.view.PointerMove(p)
}

// PointerUp ends the current drag or pan. Hosts forward releases from
// anywhere in the document.
func (d *Diagram) PointerUp() {
	if d.active != nil {
		d.active.PointerUp()
		d.active = nil
	}
	d.view.PointerUp()
}

// Wheel zooms or pans the viewport.
func (d *Diagram) Wheel(e input.Wheel) {
	if !d.closed {
		d.view.Wheel(e)
	}
}

// Offset returns the drag offset of an item.
func (d *Diagram) Offset(id string) (geom.Point, bool) {
	dr, ok := d.drags[id]
	if !ok {
		return geom.Point{}, false
	}
	return dr.Offset(), true
}

// SetOffset restores an item's drag offset.
func (d *Diagram) SetOffset(id string, p geom.Point) {
	if dr, ok := d.drags[id]; ok {
		dr.SetOffset(p)
	}
}

func (d *Diagram) target(path []string) *interact.Drag {
	for _, id := range path {
		if dr, ok := d.drags[id]; ok {
			return dr
		}
	}
	return nil
}
