// Package registry holds the shared mutable state of one diagram instance.
//
// A [Store] maps node and wrapper ids to their host element handles and
// carries the interaction state every controller reads: the active
// selection, the dragging flag, computed layout positions, the viewport
// transform and the current edge set. All writes go through the store; each
// one bumps [Store.Version] and notifies subscribers synchronously, so a
// position write is visible before the next edge pass.
//
// A Store belongs to exactly one diagram instance and is not safe for
// concurrent use.
package registry

import (
	"maps"
	"slices"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Handle is the host element backing a registered item.
type Handle interface {
	// Bounds returns the element's current rectangle in screen pixels.
	// ok is false while the element is not laid out.
	Bounds() (r geom.Rect, ok bool)
}

// Kind distinguishes nodes from wrappers.
type Kind int

const (
	KindNode Kind = iota
	KindWrapper
)

func (k Kind) String() string {
	if k == KindWrapper {
		return "wrapper"
	}
	return "node"
}

// Item is a registered node or wrapper.
type Item struct {
	ID     string
	Kind   Kind
	Handle Handle

	// Node is set for KindNode items.
	Node diagram.Node
	// Wrapper is set for KindWrapper items.
	Wrapper diagram.Wrapper

	// Box is a wrapper's derived visual box in its local logical space.
	// HasBox is false until the first successful measurement.
	Box    geom.Rect
	HasBox bool
}

// GroupID returns the enclosing wrapper id of a node.
func (it Item) GroupID() string {
	if it.Kind == KindNode {
		return it.Node.GroupID
	}
	return ""
}

// EventKind classifies store changes.
type EventKind int

const (
	EventRegistered EventKind = iota
	EventUnregistered
	EventMoved
	EventResized
	EventEdges
	EventLayout
	EventViewport
	EventSelection
	EventDrag
)

var eventNames = [...]string{"registered", "unregistered", "moved", "resized", "edges", "layout", "viewport", "selection", "drag"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event describes one store change.
type Event struct {
	Kind    EventKind
	ID      string
	Version uint64
}

// Store is the per-instance registry.
type Store struct {
	items map[string]*Item
	order []string

	edges     []diagram.Edge
	activeID  string
	dragging  bool
	layout    map[string]geom.Point
	transform geom.Transform

	version uint64
	subs    map[int]func(Event)
	nextSub int
}

// New returns an empty store with an identity viewport.
func New() *Store {
	return &Store{
		items:     make(map[string]*Item),
		layout:    make(map[string]geom.Point),
		transform: geom.Identity,
		subs:      make(map[int]func(Event)),
	}
}

// ===== Notification =====

// Version returns a counter incremented on every change.
func (s *Store) Version() uint64 { return s.version }

// Subscribe registers fn for change notifications and returns a function
// that removes it. Subscribers run synchronously in subscription order.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Store) emit(kind EventKind, id string) {
	s.version++
	ev := Event{Kind: kind, ID: id, Version: s.version}
	for _, k := range slices.Sorted(maps.Keys(s.subs)) {
		if fn, ok := s.subs[k]; ok {
			fn(ev)
		}
	}
}

// ===== Items =====

// RegisterNode adds or replaces a node. Inert nodes are ignored and report
// false.
func (s *Store) RegisterNode(n diagram.Node, h Handle) bool {
	if n.Inert() {
		return false
	}
	s.put(&Item{ID: n.ID, Kind: KindNode, Handle: h, Node: n})
	return true
}

// RegisterWrapper adds or replaces a wrapper. A previously measured box is
// kept across re-registration.
func (s *Store) RegisterWrapper(w diagram.Wrapper, h Handle) bool {
	if w.ID == "" {
		return false
	}
	it := &Item{ID: w.ID, Kind: KindWrapper, Handle: h, Wrapper: w}
	if old, ok := s.items[w.ID]; ok && old.Kind == KindWrapper {
		it.Box, it.HasBox = old.Box, old.HasBox
	}
	s.put(it)
	return true
}

func (s *Store) put(it *Item) {
	if _, ok := s.items[it.ID]; !ok {
		s.order = append(s.order, it.ID)
	}
	s.items[it.ID] = it
	s.emit(EventRegistered, it.ID)
}

// Unregister removes an item. Its layout position is dropped and, if it was
// active, the selection is cleared.
func (s *Store) Unregister(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	delete(s.layout, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	if s.activeID == id {
		s.activeID = ""
	}
	s.emit(EventUnregistered, id)
	return true
}

// Item returns a copy of the item registered under id.
func (s *Store) Item(id string) (Item, bool) {
	it, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Has reports whether id is registered.
func (s *Store) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Items returns every item in registration order.
func (s *Store) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Nodes returns every registered node in registration order.
func (s *Store) Nodes() []diagram.Node {
	var out []diagram.Node
	for _, id := range s.order {
		if it := s.items[id]; it.Kind == KindNode {
			out = append(out, it.Node)
		}
	}
	return out
}

// Wrappers returns every registered wrapper item in registration order.
func (s *Store) Wrappers() []Item {
	var out []Item
	for _, id := range s.order {
		if it := s.items[id]; it.Kind == KindWrapper {
			out = append(out, *it)
		}
	}
	return out
}

// Children returns the nodes grouped under wrapperID in registration order.
func (s *Store) Children(wrapperID string) []Item {
	var out []Item
	for _, id := range s.order {
		if it := s.items[id]; it.Kind == KindNode && it.Node.GroupID == wrapperID {
			out = append(out, *it)
		}
	}
	return out
}

// SetNodeSize records a node's measured logical size. Non-positive or
// non-finite dimensions are stored as zero so defaults apply.
func (s *Store) SetNodeSize(id string, size geom.Size) {
	it, ok := s.items[id]
	if !ok || it.Kind != KindNode {
		return
	}
	w, h := size.Width, size.Height
	if !(w > 0) || !geom.Finite(w) {
		w = 0
	}
	if !(h > 0) || !geom.Finite(h) {
		h = 0
	}
	if it.Node.Width == w && it.Node.Height == h {
		return
	}
	it.Node.Width, it.Node.Height = w, h
	s.emit(EventResized, id)
}

// SetBox records a wrapper's derived box. Non-finite boxes are rejected.
func (s *Store) SetBox(id string, box geom.Rect) bool {
	it, ok := s.items[id]
	if !ok || it.Kind != KindWrapper || !box.IsFinite() {
		return false
	}
	if it.HasBox && it.Box == box {
		return true
	}
	it.Box, it.HasBox = box, true
	s.emit(EventResized, id)
	return true
}

// NotifyMoved records that an item's on-screen position may have changed.
func (s *Store) NotifyMoved(id string) {
	if s.Has(id) {
		s.emit(EventMoved, id)
	}
}

// NotifyResized records that an item's size may have changed.
func (s *Store) NotifyResized(id string) {
	if s.Has(id) {
		s.emit(EventResized, id)
	}
}

// ===== Edges and selection =====

// SetEdges replaces the edge set. Edges are stored normalized.
func (s *Store) SetEdges(edges []diagram.Edge) {
	s.edges = make([]diagram.Edge, len(edges))
	for i, e := range edges {
		s.edges[i] = e.Normalize()
	}
	s.emit(EventEdges, "")
}

// Edges returns the current edge set.
func (s *Store) Edges() []diagram.Edge { return slices.Clone(s.edges) }

// SetActive selects id. An empty id clears the selection; unregistered ids
// are ignored.
func (s *Store) SetActive(id string) {
	if id != "" && !s.Has(id) {
		return
	}
	if s.activeID == id {
		return
	}
	s.activeID = id
	s.emit(EventSelection, id)
}

// ActiveID returns the selected item id, or "".
func (s *Store) ActiveID() string { return s.activeID }

// ActiveNodeIDs returns, sorted, the registered items connected to the
// active item by an edge. The active item itself is not included.
func (s *Store) ActiveNodeIDs() []string {
	if s.activeID == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, e := range s.edges {
		if !e.Touches(s.activeID) || !s.Has(e.From) || !s.Has(e.To) {
			continue
		}
		other := e.To
		if e.To == s.activeID {
			other = e.From
		}
		if other != s.activeID {
			set[other] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// ActiveEdgeIDs returns, in edge order, the ids of non-dangling edges
// touching the active item.
func (s *Store) ActiveEdgeIDs() []string {
	if s.activeID == "" {
		return nil
	}
	var out []string
	for _, e := range s.edges {
		if e.Touches(s.activeID) && s.Has(e.From) && s.Has(e.To) {
			out = append(out, e.ID)
		}
	}
	return out
}

// ===== Dragging, layout and viewport =====

// SetDragging sets the global dragging flag.
func (s *Store) SetDragging(on bool) {
	if s.dragging == on {
		return
	}
	s.dragging = on
	s.emit(EventDrag, "")
}

// Dragging reports whether a manual drag is in progress.
func (s *Store) Dragging() bool { return s.dragging }

// SetLayoutPositions replaces the computed layout positions. Entries for
// unregistered ids or with non-finite coordinates are dropped.
func (s *Store) SetLayoutPositions(pos map[string]geom.Point) {
	s.layout = make(map[string]geom.Point, len(pos))
	for id, p := range pos {
		if s.Has(id) && p.IsFinite() {
			s.layout[id] = p
		}
	}
	s.emit(EventLayout, "")
}

// ClearLayoutPositions removes every computed position.
func (s *Store) ClearLayoutPositions() {
	if len(s.layout) == 0 {
		return
	}
	s.layout = make(map[string]geom.Point)
	s.emit(EventLayout, "")
}

// LayoutPosition returns the computed position of id.
func (s *Store) LayoutPosition(id string) (geom.Point, bool) {
	p, ok := s.layout[id]
	return p, ok
}

// LayoutPositions returns a copy of every computed position.
func (s *Store) LayoutPositions() map[string]geom.Point { return maps.Clone(s.layout) }

// SetTransform records the viewport transform.
func (s *Store) SetTransform(t geom.Transform) {
	if s.transform == t {
		return
	}
	s.transform = t
	s.emit(EventViewport, "")
}

// Transform returns the current viewport transform.
func (s *Store) Transform() geom.Transform { return s.transform }
