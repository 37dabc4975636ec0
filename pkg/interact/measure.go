package interact

import (
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/registry"
)

// Prober reports the on-screen width of a probe element that is
// geom.ProbeWidth logical units wide, from which the effective render scale
// is derived.
type Prober interface {
	ProbeWidth() float64
}

// GroupMeasurer keeps one wrapper's box in sync with its children.
//
// The wrapper handle's Bounds().Min is taken as the screen position of the
// wrapper's local origin.
type GroupMeasurer struct {
	id       string
	store    *registry.Store
	prober   Prober
	throttle *frame.Throttle
}

// NewGroupMeasurer returns a measurer for wrapper id. prober may be nil, in
// which case the viewport scale recorded in the store is used.
func NewGroupMeasurer(id string, store *registry.Store, sched frame.Scheduler, prober Prober) *GroupMeasurer {
	return &GroupMeasurer{id: id, store: store, prober: prober, throttle: frame.NewThrottle(sched)}
}

// Invalidate schedules a measurement on the next frame. Calls made while
// one is pending are coalesced. It reports whether a frame was requested.
func (m *GroupMeasurer) Invalidate() bool {
	return m.throttle.Request(func() { m.Measure() })
}

// Pending reports whether a measurement is waiting for its frame.
func (m *GroupMeasurer) Pending() bool { return m.throttle.Pending() }

// Close cancels any pending measurement.
func (m *GroupMeasurer) Close() { m.throttle.Close() }

// Scale returns the detected render scale.
func (m *GroupMeasurer) Scale() float64 {
	if m.prober != nil {
		return geom.ProbeScale(m.prober.ProbeWidth())
	}
	if s := m.store.Transform().Scale; s > 0 && geom.Finite(s) {
		return s
	}
	return 1
}

// Measure computes the wrapper's box now and stores it. It reports the box
// and whether one was stored. When the wrapper is unknown or not laid out,
// or a fit wrapper has no measurable children, the previous box is kept.
func (m *GroupMeasurer) Measure() (geom.Rect, bool) {
	it, ok := m.store.Item(m.id)
	if !ok || it.Kind != registry.KindWrapper || it.Handle == nil {
		return geom.Rect{}, false
	}
	anchor, ok := it.Handle.Bounds()
	if !ok || !anchor.IsFinite() {
		return geom.Rect{}, false
	}

	var rects []geom.Rect
	for _, child := range m.store.Children(m.id) {
		if child.Node.Ignore || child.Handle == nil {
			continue
		}
		r, ok := child.Handle.Bounds()
		if !ok || !r.IsFinite() {
			continue
		}
		rects = append(rects, r)
	}

	box, ok := childBox(it, anchor.Min(), rects, m.Scale())
	if !ok || !m.store.SetBox(m.id, box) {
		return it.Box, false
	}
	return box, true
}

func childBox(it registry.Item, origin geom.Point, rects []geom.Rect, scale float64) (geom.Rect, bool) {
	w := it.Wrapper
	fixed := geom.R(0, 0, w.Width, w.Height)
	hasFixed := !w.Fit && !fixed.Empty()

	cb, ok := geom.ChildBounds(origin, rects, scale)
	switch {
	case ok && hasFixed:
		return fixed.Union(cb.Inset(w.EffectivePadding())), true
	case ok:
		return cb.Inset(w.EffectivePadding()), true
	case hasFixed:
		return fixed, true
	}
	return geom.Rect{}, false
}
