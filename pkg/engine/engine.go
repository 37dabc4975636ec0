package engine

import (
	"context"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/interact"
	"github.com/zenui/zendiagram/pkg/layout"
	"github.com/zenui/zendiagram/pkg/observability"
	"github.com/zenui/zendiagram/pkg/registry"
	"github.com/zenui/zendiagram/pkg/viewport"
)

type (
	// NodeSpec describes a node at registration.
	NodeSpec = diagram.Node
	// WrapperSpec describes a wrapper at registration.
	WrapperSpec = diagram.Wrapper
	// Handle is the host element of a registered item.
	Handle = registry.Handle
	// Prober measures the effective render scale.
	Prober = interact.Prober
)

// PositionSetter applies engine output to host elements.
type PositionSetter interface {
	// SetOffset moves an item by its drag offset in logical units.
	SetOffset(id string, offset geom.Point)
	// SetLayoutPosition places an item's local origin at a logical position.
	SetLayoutPosition(id string, pos geom.Point)
}

// LayoutClearer is implemented by setters that need to know when computed
// positions are withdrawn, for example when auto-layout is turned off.
type LayoutClearer interface {
	ClearLayoutPositions()
}

// Config configures a Diagram.
type Config struct {
	// Scheduler runs per-frame work. Defaults to a synchronous scheduler.
	Scheduler frame.Scheduler
	// Positions receives layout positions and drag offsets. Optional.
	Positions PositionSetter
	// Prober detects the render scale for measurement. Optional.
	Prober Prober
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger

	AutoLayout bool
	Strategy   diagram.Strategy
	Options    diagram.LayoutOptions
	// Container is the visible area used by the automatic fit.
	Container geom.Size
}

// DefaultConfig returns a configuration with auto-layout enabled and the
// default strategy.
func DefaultConfig() Config {
	return Config{
		AutoLayout: true,
		Strategy:   diagram.DefaultStrategy,
		Options:    diagram.DefaultLayoutOptions(),
	}
}

// Diagram is one diagram instance.
type Diagram struct {
	store     *registry.Store
	view      *viewport.Controller
	sched     frame.Scheduler
	positions PositionSetter
	prober    Prober
	logger    *log.Logger

	drags     map[string]*interact.Drag
	measurers map[string]*interact.GroupMeasurer
	active    *interact.Drag
	layout    *frame.Throttle

	autoLayout bool
	strategy   diagram.Strategy
	options    diagram.LayoutOptions
	container  geom.Size
	deferred   bool
	closed     bool
	unsub      func()
}

// New creates a diagram instance.
func New(cfg Config) *Diagram {
	if cfg.Scheduler == nil {
		cfg.Scheduler = &frame.Immediate{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = diagram.DefaultStrategy
	}

	store := registry.New()
	d := &Diagram{
		store:      store,
		sched:      cfg.Scheduler,
		positions:  cfg.Positions,
		prober:     cfg.Prober,
		logger:     cfg.Logger,
		drags:      make(map[string]*interact.Drag),
		measurers:  make(map[string]*interact.GroupMeasurer),
		layout:     frame.NewThrottle(cfg.Scheduler),
		autoLayout: cfg.AutoLayout,
		strategy:   cfg.Strategy,
		options:    cfg.Options,
		container:  cfg.Container,
	}
	d.view = viewport.New(store.SetTransform)
	d.unsub = store.Subscribe(d.onEvent)
	return d
}

func (d *Diagram) onEvent(ev registry.Event) {
	switch ev.Kind {
	case registry.EventDrag:
		if !d.store.Dragging() && d.deferred {
			d.deferred = false
			d.requestLayout()
		}
	case registry.EventMoved:
		if it, ok := d.store.Item(ev.ID); ok {
			d.invalidateGroup(it.GroupID())
		}
	case registry.EventResized:
		if it, ok := d.store.Item(ev.ID); ok && it.Kind == registry.KindWrapper {
			d.requestLayout()
		}
	}
}

// Store exposes the instance registry for reading.
func (d *Diagram) Store() *registry.Store { return d.store }

// Subscribe registers fn for change notifications.
func (d *Diagram) Subscribe(fn func(registry.Event)) (unsubscribe func()) {
	return d.store.Subscribe(fn)
}

// Close cancels all pending frames and detaches every controller.
func (d *Diagram) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.layout.Close()
	for _, id := range slices.Sorted(maps.Keys(d.drags)) {
		d.drags[id].Close()
	}
	for _, id := range slices.Sorted(maps.Keys(d.measurers)) {
		d.measurers[id].Close()
	}
	d.active = nil
	d.unsub()
}

// ==== Registration ====

// RegisterNode adds or replaces a node. Inert nodes are ignored and report
// false. The node's size is measured from h right away.
func (d *Diagram) RegisterNode(spec NodeSpec, h Handle) bool {
	if d.closed {
		return false
	}
	old, existed := d.store.Item(spec.ID)
	if !d.store.RegisterNode(spec, h) {
		return false
	}
	d.ensureDrag(spec.ID, registry.KindNode)
	d.measureNode(spec.ID)
	if existed && old.GroupID() != spec.GroupID {
		d.invalidateGroup(old.GroupID())
	}
	d.invalidateGroup(spec.GroupID)
	d.requestLayout()
	return true
}

// RegisterWrapper adds or replaces a wrapper and schedules its first
// measurement.
func (d *Diagram) RegisterWrapper(spec WrapperSpec, h Handle) bool {
	if d.closed || !d.store.RegisterWrapper(spec, h) {
		return false
	}
	d.ensureDrag(spec.ID, registry.KindWrapper)
	m, ok := d.measurers[spec.ID]
	if !ok {
		m = interact.NewGroupMeasurer(spec.ID, d.store, d.sched, d.prober)
		d.measurers[spec.ID] = m
	}
	m.Invalidate()
	d.requestLayout()
	return true
}

// Unregister removes an item and its controllers.
func (d *Diagram) Unregister(id string) bool {
	it, ok := d.store.Item(id)
	if !ok {
		return false
	}
	if dr, ok := d.drags[id]; ok {
		if d.active == dr {
			d.active = nil
		}
		dr.Close()
		delete(d.drags, id)
	}
	if m, ok := d.measurers[id]; ok {
		m.Close()
		delete(d.measurers, id)
	}
	d.store.Unregister(id)
	d.invalidateGroup(it.GroupID())
	d.requestLayout()
	return true
}

func (d *Diagram) ensureDrag(id string, kind registry.Kind) {
	if dr, ok := d.drags[id]; ok {
		if dr.Kind() == kind {
			return
		}
		dr.Close()
	}
	dr := interact.NewDrag(id, kind, d.store, d.positions, d.sched)
	dr.SetScale(d.scale)
	d.drags[id] = dr
}

// ==== Notifications ====

// NotifyMoved records that an item's on-screen position may have changed.
// A moved child makes its wrapper re-measure.
func (d *Diagram) NotifyMoved(id string) { d.store.NotifyMoved(id) }

// NotifyResized records that an item's size may have changed. Nodes are
// re-measured from their handle; wrappers schedule a box measurement.
func (d *Diagram) NotifyResized(id string) {
	it, ok := d.store.Item(id)
	if !ok {
		return
	}
	if it.Kind == registry.KindWrapper {
		d.invalidateGroup(id)
		return
	}
	if !d.measureNode(id) {
		d.store.NotifyResized(id)
		return
	}
	d.invalidateGroup(it.GroupID())
	d.requestLayout()
}

// measureNode stores the node's logical size and reports whether it
// changed.
func (d *Diagram) measureNode(id string) bool {
	it, ok := d.store.Item(id)
	if !ok || it.Handle == nil {
		return false
	}
	r, ok := it.Handle.Bounds()
	if !ok || !r.IsFinite() {
		return false
	}
	s := d.scale()
	before := d.store.Version()
	d.store.SetNodeSize(id, geom.Size{Width: r.Width / s, Height: r.Height / s})
	return d.store.Version() != before
}

func (d *Diagram) invalidateGroup(id string) {
	if m, ok := d.measurers[id]; ok {
		m.Invalidate()
	}
}

func (d *Diagram) scale() float64 {
	if d.prober != nil {
		return geom.ProbeScale(d.prober.ProbeWidth())
	}
	if s := d.store.Transform().Scale; s > 0 && geom.Finite(s) {
		return s
	}
	return 1
}

// ==== Layout ====

// SetEdges replaces the edge set.
func (d *Diagram) SetEdges(edges []diagram.Edge) {
	d.store.SetEdges(edges)
	d.requestLayout()
}

// SetAutoLayout turns automatic layout on or off. Turning it off withdraws
// every computed position.
func (d *Diagram) SetAutoLayout(on bool) {
	if d.autoLayout == on {
		return
	}
	d.autoLayout = on
	if on {
		d.requestLayout()
		return
	}
	d.layout.Cancel()
	d.deferred = false
	d.store.ClearLayoutPositions()
	if c, ok := d.positions.(LayoutClearer); ok {
		c.ClearLayoutPositions()
	}
}

// AutoLayout reports whether automatic layout is enabled.
func (d *Diagram) AutoLayout() bool { return d.autoLayout }

// SetStrategy selects the layout strategy.
func (d *Diagram) SetStrategy(s diagram.Strategy) {
	if s == "" {
		s = diagram.DefaultStrategy
	}
	if d.strategy == s {
		return
	}
	d.strategy = s
	d.requestLayout()
}

// Strategy returns the layout strategy in use.
func (d *Diagram) Strategy() diagram.Strategy { return d.strategy }

// LayoutOptions returns the layout parameters in use.
func (d *Diagram) LayoutOptions() diagram.LayoutOptions { return d.options }

// SetLayoutOptions replaces the layout parameters.
func (d *Diagram) SetLayoutOptions(o diagram.LayoutOptions) {
	if d.options == o {
		return
	}
	d.options = o
	d.requestLayout()
}

// LayoutPositions returns the computed top-left corners of laid out items.
func (d *Diagram) LayoutPositions() map[string]geom.Point { return d.store.LayoutPositions() }

func (d *Diagram) requestLayout() {
	if d.closed || !d.autoLayout {
		return
	}
	if d.store.Dragging() {
		d.deferred = true
		return
	}
	d.layout.Request(d.runLayout)
}

// Relayout runs a layout pass now, bypassing the frame throttle. It does
// nothing while auto-layout is off or a drag is in progress.
func (d *Diagram) Relayout() {
	if d.closed || !d.autoLayout {
		return
	}
	d.layout.Cancel()
	d.runLayout()
}

func (d *Diagram) runLayout() {
	if !d.autoLayout || d.closed {
		return
	}
	if d.store.Dragging() {
		d.deferred = true
		return
	}

	var groups []layout.Group
	for _, w := range d.store.Wrappers() {
		g := layout.Group{ID: w.ID}
		if w.HasBox {
			g.Box = w.Box.Size()
		}
		groups = append(groups, g)
	}
	items, edges := layout.Collapse(d.store.Nodes(), groups, d.store.Edges())

	start := time.Now()
	res := layout.Calculate(d.strategy, items, edges, d.options)
	observability.Current().Layout(context.Background(), observability.LayoutEvent{
		Strategy: string(d.strategy),
		Items:    len(items),
		Edges:    len(edges),
		Duration: time.Since(start),
	})

	d.store.SetLayoutPositions(res.Positions)
	if d.positions != nil {
		for _, id := range slices.Sorted(maps.Keys(res.Positions)) {
			d.positions.SetLayoutPosition(id, d.origin(id, res.Positions[id]))
		}
	}
	d.logger.Debug("layout applied", "strategy", d.strategy, "items", len(items), "edges", len(edges), "took", time.Since(start))

	if b, ok := res.Bounds(items); ok {
		d.view.AutoFit(b, d.container)
	}
}

// origin converts a laid out top-left corner into the item's local origin.
// A wrapper's box may start before its origin, by its padding.
func (d *Diagram) origin(id string, topLeft geom.Point) geom.Point {
	it, ok := d.store.Item(id)
	if ok && it.Kind == registry.KindWrapper && it.HasBox {
		return topLeft.Sub(it.Box.Min())
	}
	return topLeft
}

// ==== Viewport ====

// SetViewport moves the camera. It disables the automatic fit.
func (d *Diagram) SetViewport(x, y, zoom float64) { d.view.Set(x, y, zoom) }

// Viewport returns the current pan and zoom.
func (d *Diagram) Viewport() geom.Transform { return d.view.Transform() }

// HasFittedView reports whether the automatic fit has been consumed.
func (d *Diagram) HasFittedView() bool { return d.view.HasFittedView() }

// SetContainer records the visible area and fits content into it if the
// automatic fit has not run yet.
func (d *Diagram) SetContainer(size geom.Size) {
	d.container = size
	d.Fit()
}

// Fit centers the current content once. It reports whether the view moved.
func (d *Diagram) Fit() bool {
	b, ok := d.ContentBounds()
	if !ok {
		return false
	}
	return d.view.AutoFit(b, d.container)
}

// ScreenToLogical maps a screen point into diagram space.
func (d *Diagram) ScreenToLogical(p geom.Point) geom.Point { return d.view.ScreenToLogical(p) }

// LogicalToScreen maps a diagram point onto the screen.
func (d *Diagram) LogicalToScreen(p geom.Point) geom.Point { return d.view.LogicalToScreen(p) }

// ==== Selection ====

// ActiveID returns the selected item id, or "".
func (d *Diagram) ActiveID() string { return d.store.ActiveID() }

// ActiveNodeIDs returns the items directly connected to the selection.
func (d *Diagram) ActiveNodeIDs() []string { return d.store.ActiveNodeIDs() }

// ActiveEdgeIDs returns the edges touching the selection.
func (d *Diagram) ActiveEdgeIDs() []string { return d.store.ActiveEdgeIDs() }

// Select sets the selection directly. Unregistered ids are ignored.
func (d *Diagram) Select(id string) { d.store.SetActive(id) }
