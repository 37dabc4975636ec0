package engine_test

import (
	"reflect"
	"testing"

	"github.com/zenui/zendiagram/pkg/canvas"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/edge"
	"github.com/zenui/zendiagram/pkg/engine"
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/input"
	"github.com/zenui/zendiagram/pkg/registry"
)

func newCanvas(t *testing.T, cfg engine.Config) (*canvas.Canvas, *frame.Manual) {
	t.Helper()
	sched := frame.NewManual()
	cfg.Scheduler = sched
	c := canvas.New(cfg)
	t.Cleanup(c.Close)
	return c, sched
}

func TestThreeNodeScenario(t *testing.T) {
	c, sched := newCanvas(t, engine.Config{AutoLayout: false})
	d := c.Diagram()

	c.AddNode(diagram.Node{ID: "a", Width: 100, Height: 50}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "b", Width: 100, Height: 50}, geom.Pt(400, 0))
	c.AddNode(diagram.Node{ID: "c", Width: 100, Height: 50}, geom.Pt(0, 300))
	d.SetEdges([]diagram.Edge{{From: "a", To: "b", Type: diagram.EdgeStraight}})
	sched.Settle(10)

	if got := d.LayoutPositions(); len(got) != 0 {
		t.Errorf("layout positions = %v, want none", got)
	}

	edges := d.Edges()
	if len(edges) != 1 {
		t.Fatalf("rendered %d edges, want 1", len(edges))
	}
	if got, want := edges[0].Path.D(), "M 100 25 L 400 25"; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}

	if !d.Click([]string{"a"}) {
		t.Error("click on a should stop propagation")
	}
	if d.ActiveID() != "a" {
		t.Errorf("ActiveID = %q, want a", d.ActiveID())
	}
	if got := d.ActiveNodeIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("ActiveNodeIDs = %v, want [b]", got)
	}

	d.SetEdges([]diagram.Edge{
		{From: "a", To: "b", Type: diagram.EdgeStraight},
		{From: "b", To: "c"},
	})
	edges = d.Edges()
	if !edges[0].Active || edges[0].Opacity != 1 {
		t.Errorf("a->b = %+v, want active at full opacity", edges[0])
	}
	if edges[1].Opacity != edge.DimOpacity {
		t.Errorf("b->c opacity = %v, want dimmed", edges[1].Opacity)
	}

	d.Click(nil)
	if d.ActiveID() != "" {
		t.Error("background click should clear the selection")
	}
}

func TestDanglingEdgeSafety(t *testing.T) {
	c, _ := newCanvas(t, engine.Config{})
	c.AddNode(diagram.Node{ID: "a"}, geom.Pt(0, 0))
	c.Diagram().SetEdges([]diagram.Edge{{From: "a", To: "never"}, {From: "nope", To: "a"}})
	if got := c.Diagram().Edges(); len(got) != 0 {
		t.Errorf("dangling edges rendered %d paths", len(got))
	}
}

func TestAutoLayoutPlacesElements(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Strategy = diagram.StrategyGrid
	c, sched := newCanvas(t, cfg)
	for _, id := range []string{"a", "b", "c"} {
		c.AddNode(diagram.Node{ID: id}, geom.Pt(-1000, -1000))
	}
	sched.Settle(10)

	want := map[string]geom.Point{"a": geom.Pt(0, 0), "b": geom.Pt(400, 0), "c": geom.Pt(0, 300)}
	if got := c.Diagram().LayoutPositions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("LayoutPositions = %v, want %v", got, want)
	}
	for id, p := range want {
		e, _ := c.Element(id)
		if e.Position() != p {
			t.Errorf("element %s at %v, want %v", id, e.Position(), p)
		}
	}
}

func TestDragUnderZoomThroughCanvas(t *testing.T) {
	c, sched := newCanvas(t, engine.Config{})
	d := c.Diagram()
	c.AddNode(diagram.Node{ID: "a", Width: 100, Height: 100}, geom.Pt(10, 10))
	d.SetViewport(0, 0, 2)

	e, _ := c.Element("a")
	before, _ := e.Bounds()

	if !d.PointerDown(input.Pointer{Pos: geom.Pt(30, 30), Button: input.ButtonRight}, []string{"a"}) {
		t.Fatal("right button on a node should start a drag")
	}
	d.PointerMove(geom.Pt(80, 50))
	sched.Flush()
	d.PointerUp()

	after, _ := e.Bounds()
	if got := after.Min().Sub(before.Min()); got != geom.Pt(50, 20) {
		t.Errorf("element moved by %v on screen, want the pointer delta (50,20)", got)
	}
	if off, _ := d.Offset("a"); off != geom.Pt(25, 10) {
		t.Errorf("offset = %v, want the delta in logical units (25,10)", off)
	}
}

func TestZoomAfterDragKeepsGeometry(t *testing.T) {
	c, sched := newCanvas(t, engine.Config{})
	d := c.Diagram()
	c.AddWrapper(diagram.Wrapper{ID: "g", Fit: true}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "a", GroupID: "g", Width: 100, Height: 100}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "b", GroupID: "g", Width: 100, Height: 100}, geom.Pt(200, 0))
	sched.Settle(10)

	if !d.PointerDown(input.Pointer{Pos: geom.Pt(250, 50), Button: input.ButtonRight}, []string{"b", "g"}) {
		t.Fatal("right button on b should start a drag")
	}
	d.PointerMove(geom.Pt(350, 50))
	d.PointerUp()
	sched.Settle(10)

	type geometry struct{ a, b, box geom.Rect }
	capture := func() geometry {
		t.Helper()
		a, okA := d.Locate("a")
		b, okB := d.Locate("b")
		it, okG := d.Store().Item("g")
		if !okA || !okB || !okG || !it.HasBox {
			t.Fatal("items not located")
		}
		return geometry{a, b, it.Box}
	}

	before := capture()
	if want := geom.R(300, 0, 100, 100); before.b != want {
		t.Errorf("dragged b at %v, want %v", before.b, want)
	}
	if want := geom.R(-20, -20, 440, 140); before.box != want {
		t.Errorf("wrapper box at zoom 1 = %v, want %v", before.box, want)
	}

	for _, zoom := range []float64{2, 0.5} {
		d.SetViewport(0, 0, zoom)
		d.NotifyResized("g")
		sched.Settle(10)
		if got := capture(); got != before {
			t.Errorf("zoom %v: geometry = %+v, want %+v", zoom, got, before)
		}
	}
}

func TestDragVetoesLayout(t *testing.T) {
	c, sched := newCanvas(t, engine.DefaultConfig())
	d := c.Diagram()
	c.AddNode(diagram.Node{ID: "a"}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "b"}, geom.Pt(0, 0))
	sched.Settle(10)

	var layouts int
	d.Subscribe(func(ev registry.Event) {
		if ev.Kind == registry.EventLayout {
			layouts++
		}
	})

	d.PointerDown(input.Pointer{Button: input.ButtonRight}, []string{"a"})
	d.SetEdges([]diagram.Edge{{From: "a", To: "b"}})
	d.PointerMove(geom.Pt(20, 20))
	sched.Settle(10)
	if layouts != 0 {
		t.Fatalf("layout ran %d times during a drag", layouts)
	}

	d.PointerUp()
	sched.Settle(10)
	if layouts != 1 {
		t.Errorf("deferred layout ran %d times after the drag, want 1", layouts)
	}
}

func TestWrapperMiddleButtonDrag(t *testing.T) {
	c, sched := newCanvas(t, engine.Config{})
	d := c.Diagram()
	c.AddWrapper(diagram.Wrapper{ID: "w", Fit: true}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "a", GroupID: "w"}, geom.Pt(0, 0))
	sched.Settle(10)

	// The node ignores the middle button, so the event reaches the wrapper.
	if !d.PointerDown(input.Pointer{Button: input.ButtonMiddle}, []string{"a", "w"}) {
		t.Fatal("middle button inside a wrapper should drag the wrapper")
	}
	d.PointerMove(geom.Pt(30, 40))
	d.PointerUp()

	child, _ := c.Element("a")
	b, _ := child.Bounds()
	if b.Min() != geom.Pt(30, 40) {
		t.Errorf("child at %v, want it to follow the wrapper to (30,40)", b.Min())
	}
}

func TestGroupedLayout(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Strategy = diagram.StrategyGrid
	c, sched := newCanvas(t, cfg)
	d := c.Diagram()

	c.AddWrapper(diagram.Wrapper{ID: "w", Fit: true}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "a", GroupID: "w"}, geom.Pt(0, 0))
	c.AddNode(diagram.Node{ID: "b", GroupID: "w"}, geom.Pt(250, 0))
	c.AddNode(diagram.Node{ID: "x"}, geom.Pt(0, 0))
	sched.Settle(10)

	it, _ := d.Store().Item("w")
	if want := geom.R(-20, -20, 490, 190); it.Box != want {
		t.Fatalf("wrapper box = %+v, want %+v", it.Box, want)
	}

	got := d.LayoutPositions()
	want := map[string]geom.Point{"w": geom.Pt(0, 0), "x": geom.Pt(400, 0)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LayoutPositions = %v, want %v", got, want)
	}

	// The wrapper origin sits inside its padded box.
	w, _ := c.Element("w")
	if w.Position() != geom.Pt(20, 20) {
		t.Errorf("wrapper origin = %v, want (20,20)", w.Position())
	}
	if r, _ := d.Locate("w"); r != geom.R(0, 0, 490, 190) {
		t.Errorf("Locate(w) = %+v", r)
	}
}

func TestAutoFitOnce(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Strategy = diagram.StrategyGrid
	cfg.Container = geom.Size{Width: 800, Height: 600}
	c, sched := newCanvas(t, cfg)
	d := c.Diagram()
	for _, id := range []string{"a", "b", "c", "d"} {
		c.AddNode(diagram.Node{ID: id}, geom.Point{})
	}
	sched.Settle(10)
	if !d.HasFittedView() {
		t.Fatal("first layout should fit the view")
	}
	fitted := d.Viewport()

	c.AddNode(diagram.Node{ID: "e"}, geom.Point{})
	sched.Settle(10)
	if d.Viewport() != fitted {
		t.Errorf("viewport changed after later layout: %+v -> %+v", fitted, d.Viewport())
	}
}

func TestWheelAndPan(t *testing.T) {
	c, _ := newCanvas(t, engine.Config{})
	d := c.Diagram()
	d.Wheel(input.Wheel{Pos: geom.Pt(100, 100), Delta: geom.Pt(0, -1000), Mods: input.ModCtrl})
	if d.Viewport().Scale != 2 {
		t.Errorf("scale = %v, want 2", d.Viewport().Scale)
	}
	if !d.PointerDown(input.Pointer{Pos: geom.Pt(0, 0), Button: input.ButtonMiddle}, nil) {
		t.Fatal("middle button on the background should pan")
	}
	d.PointerMove(geom.Pt(10, 0))
	d.PointerUp()
	if got := d.Viewport().Pan; got != geom.Pt(-90, -100) {
		t.Errorf("pan = %v, want (-90,-100)", got)
	}
}
