// Package canvas is an in-memory host for the diagram engine.
//
// It plays the part a rendering surface plays in an interactive host: it
// owns one element per item, positions elements from host-authored
// coordinates, layout output and drag offsets, and reports their screen
// rectangles back to the engine. The CLI viewer, the HTTP service and the
// exporters drive diagrams through a Canvas.
//
// An element's screen position is its parent's screen position (the pan
// offset for top-level items) plus its logical position and drag offset,
// both times the zoom. The logical position is the layout position when
// one has been assigned and the authored position otherwise. Children of a
// wrapper are positioned relative to the wrapper's origin.
package canvas

import (
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/engine"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Element is the host element of one item.
type Element struct {
	c        *Canvas
	id       string
	parent   string
	wrapper  bool
	authored geom.Point
	size     geom.Size
	layout   geom.Point
	laid     bool
	offset   geom.Point
}

// ID returns the item id.
func (e *Element) ID() string { return e.id }

// Position returns the element's logical position relative to its parent.
func (e *Element) Position() geom.Point {
	if e.laid {
		return e.layout
	}
	return e.authored
}

// Offset returns the element's drag offset in logical units.
func (e *Element) Offset() geom.Point { return e.offset }

// Bounds returns the element's screen rectangle.
func (e *Element) Bounds() (geom.Rect, bool) {
	p, ok := e.c.screenOrigin(e.id, 0)
	if !ok {
		return geom.Rect{}, false
	}
	s := e.c.scale()
	return geom.R(p.X, p.Y, e.size.Width*s, e.size.Height*s), true
}

// Canvas hosts one diagram instance.
type Canvas struct {
	diagram *engine.Diagram
	elems   map[string]*Element
}

// New creates a canvas and the diagram it hosts. The canvas installs
// itself as the diagram's position setter and scale prober.
func New(cfg engine.Config) *Canvas {
	c := &Canvas{elems: make(map[string]*Element)}
	cfg.Positions = c
	cfg.Prober = c
	c.diagram = engine.New(cfg)
	return c
}

// Diagram returns the hosted diagram.
func (c *Canvas) Diagram() *engine.Diagram { return c.diagram }

// Close closes the hosted diagram.
func (c *Canvas) Close() { c.diagram.Close() }

// AddNode mounts a node at an authored position. Grouped nodes are
// positioned relative to their wrapper.
func (c *Canvas) AddNode(n diagram.Node, at geom.Point) bool {
	if n.Inert() {
		return false
	}
	w, h := n.Size()
	e := c.mount(n.ID, n.GroupID, false, at, geom.Size{Width: w, Height: h})
	return c.diagram.RegisterNode(n, e)
}

// AddWrapper mounts a wrapper at an authored position.
func (c *Canvas) AddWrapper(w diagram.Wrapper, at geom.Point) bool {
	if w.ID == "" {
		return false
	}
	e := c.mount(w.ID, "", true, at, geom.Size{Width: w.Width, Height: w.Height})
	return c.diagram.RegisterWrapper(w, e)
}

func (c *Canvas) mount(id, parent string, wrapper bool, at geom.Point, size geom.Size) *Element {
	e, ok := c.elems[id]
	if !ok {
		e = &Element{c: c, id: id}
		c.elems[id] = e
	}
	e.parent, e.wrapper, e.authored, e.size = parent, wrapper, at, size
	return e
}

// Remove unmounts an item.
func (c *Canvas) Remove(id string) {
	delete(c.elems, id)
	c.diagram.Unregister(id)
}

// Element returns the element of an item.
func (c *Canvas) Element(id string) (*Element, bool) {
	e, ok := c.elems[id]
	return e, ok
}

// Move changes an element's authored position, as host styling would.
func (c *Canvas) Move(id string, at geom.Point) {
	e, ok := c.elems[id]
	if !ok || !at.IsFinite() {
		return
	}
	e.authored = at
	c.notifyTree(id)
}

// Resize changes a node element's logical size.
func (c *Canvas) Resize(id string, size geom.Size) {
	e, ok := c.elems[id]
	if !ok || e.wrapper {
		return
	}
	e.size = size
	c.diagram.NotifyResized(id)
}

// ==== engine.PositionSetter ====

// SetOffset applies a drag offset.
func (c *Canvas) SetOffset(id string, offset geom.Point) {
	if e, ok := c.elems[id]; ok {
		e.offset = offset
		if e.wrapper {
			c.notifyChildren(id)
		}
	}
}

// SetLayoutPosition applies a computed position.
func (c *Canvas) SetLayoutPosition(id string, pos geom.Point) {
	if e, ok := c.elems[id]; ok {
		e.layout, e.laid = pos, true
	}
}

// ClearLayoutPositions returns every element to its authored position.
func (c *Canvas) ClearLayoutPositions() {
	for _, e := range c.elems {
		e.laid = false
	}
}

// ProbeWidth reports the on-screen width of a probe element, which is
// the probe's logical width times the current zoom.
func (c *Canvas) ProbeWidth() float64 { return geom.ProbeWidth * c.diagram.Viewport().Scale }

func (c *Canvas) scale() float64 { return geom.ProbeScale(c.ProbeWidth()) }

// screenOrigin resolves an element's screen position through its parents.
// depth guards against parent cycles.
func (c *Canvas) screenOrigin(id string, depth int) (geom.Point, bool) {
	e, ok := c.elems[id]
	if !ok || depth > len(c.elems) {
		return geom.Point{}, false
	}
	base := c.diagram.Viewport().Pan
	if e.parent != "" {
		if _, ok := c.elems[e.parent]; ok {
			p, ok := c.screenOrigin(e.parent, depth+1)
			if !ok {
				return geom.Point{}, false
			}
			base = p
		}
	}
	return base.Add(e.Position().Add(e.offset).Mul(c.scale())), true
}

func (c *Canvas) notifyTree(id string) {
	c.diagram.NotifyMoved(id)
	if e := c.elems[id]; e.wrapper {
		c.notifyChildren(id)
	}
}

func (c *Canvas) notifyChildren(wrapperID string) {
	for _, it := range c.diagram.Store().Children(wrapperID) {
		c.diagram.NotifyMoved(it.ID)
	}
}
