package interact

import (
	"slices"

	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/input"
	"github.com/zenui/zendiagram/pkg/registry"
)

// PositionSetter applies drag offsets to host elements. Offsets are in
// logical units, so hosts apply them before the zoom.
type PositionSetter interface {
	SetOffset(id string, offset geom.Point)
}

// State is a drag controller's state.
type State int

const (
	// Idle means no drag is in progress.
	Idle State = iota
	// Dragging means a pointer drag owns the item.
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Drag is the interaction controller of one node or wrapper.
type Drag struct {
	id     string
	kind   registry.Kind
	store  *registry.Store
	setter PositionSetter
	commit *frame.Throttle
	scale  func() float64

	state       State
	offset      geom.Point
	startOffset geom.Point
	startScreen geom.Point
	committed   geom.Point
	closed      bool
}

// NewDrag returns an idle controller for the item id of the given kind.
// setter may be nil when the host reads offsets itself.
func NewDrag(id string, kind registry.Kind, store *registry.Store, setter PositionSetter, sched frame.Scheduler) *Drag {
	return &Drag{
		id:     id,
		kind:   kind,
		store:  store,
		setter: setter,
		commit: frame.NewThrottle(sched),
	}
}

// ID returns the controlled item id.
func (d *Drag) ID() string { return d.id }

// Kind returns whether the item is a node or a wrapper.
func (d *Drag) Kind() registry.Kind { return d.kind }

// State returns the current state.
func (d *Drag) State() State { return d.state }

// SetScale sets the source of the render scale used to turn pointer deltas
// into logical offsets. By default the store's viewport scale is used.
func (d *Drag) SetScale(fn func() float64) { d.scale = fn }

// Offset returns the current drag offset in logical units.
func (d *Drag) Offset() geom.Point { return d.offset }

// SetOffset replaces the offset without a drag, for example when restoring
// a saved arrangement. It is ignored while dragging or after Close.
func (d *Drag) SetOffset(p geom.Point) {
	if d.closed || d.state == Dragging || !p.IsFinite() {
		return
	}
	d.offset = p
	d.flush()
}

// CanStart reports whether button starts a drag of this item. Nodes drag
// with the right button; wrappers with the right or middle button.
func (d *Drag) CanStart(b input.Button) bool {
	if b == input.ButtonRight {
		return true
	}
	return d.kind == registry.KindWrapper && b == input.ButtonMiddle
}

// Click handles a left click that reached this item. path lists the
// registered items enclosing the clicked element, innermost first. The item
// is selected; the returned value reports whether the event should stop
// propagating, which is only the case when the click landed on this item
// or one of its descendants.
func (d *Drag) Click(path []string) (stop bool) {
	if d.closed {
		return false
	}
	d.store.SetActive(d.id)
	return slices.Contains(path, d.id)
}

// PointerDown starts a drag when e's button is allowed. It reports whether
// the drag started.
func (d *Drag) PointerDown(e input.Pointer) bool {
	if d.closed || d.state == Dragging || !d.CanStart(e.Button) || !e.Pos.IsFinite() {
		return false
	}
	d.state = Dragging
	d.startOffset = d.offset
	d.startScreen = e.Pos
	d.store.SetDragging(true)
	return true
}

// PointerMove updates the offset and schedules a commit for the next frame.
func (d *Drag) PointerMove(p geom.Point) {
	if d.state != Dragging || !p.IsFinite() {
		return
	}
	next := d.startOffset.Add(p.Sub(d.startScreen).Mul(1 / d.currentScale()))
	if !next.IsFinite() {
		return
	}
	d.offset = next
	d.commit.Request(d.flush)
}

// PointerUp ends the drag and commits the final offset right away.
func (d *Drag) PointerUp() {
	if d.state != Dragging {
		return
	}
	d.state = Idle
	d.commit.Cancel()
	d.flush()
	d.store.SetDragging(false)
}

// Close cancels pending commits and freezes the offset. A drag in progress
// is abandoned without a final commit.
func (d *Drag) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.commit.Close()
	if d.state == Dragging {
		d.state = Idle
		d.store.SetDragging(false)
	}
}

func (d *Drag) currentScale() float64 {
	s := d.store.Transform().Scale
	if d.scale != nil {
		s = d.scale()
	}
	if s > 0 && geom.Finite(s) {
		return s
	}
	return 1
}

func (d *Drag) flush() {
	if d.offset == d.committed {
		return
	}
	d.committed = d.offset
	if d.setter != nil {
		d.setter.SetOffset(d.id, d.offset)
	}
	d.store.NotifyMoved(d.id)
}
