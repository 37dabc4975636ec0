package canvas_test

import (
	"testing"

	"github.com/zenui/zendiagram/pkg/canvas"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/engine"
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
)

func newCanvas(t *testing.T) (*canvas.Canvas, *frame.Manual) {
	t.Helper()
	sched := frame.NewManual()
	c := canvas.New(engine.Config{Scheduler: sched})
	t.Cleanup(c.Close)
	return c, sched
}

func bounds(t *testing.T, c *canvas.Canvas, id string) geom.Rect {
	t.Helper()
	e, ok := c.Element(id)
	if !ok {
		t.Fatalf("no element %q", id)
	}
	r, ok := e.Bounds()
	if !ok {
		t.Fatalf("element %q has no bounds", id)
	}
	return r
}

func TestBoundsFollowViewport(t *testing.T) {
	c, _ := newCanvas(t)
	if !c.AddNode(diagram.Node{ID: "a", Width: 100, Height: 50}, geom.Pt(10, 20)) {
		t.Fatal("AddNode rejected a valid node")
	}

	if got, want := bounds(t, c, "a"), geom.R(10, 20, 100, 50); got != want {
		t.Errorf("bounds at identity = %v, want %v", got, want)
	}

	c.Diagram().SetViewport(5, 5, 2)
	if got, want := bounds(t, c, "a"), geom.R(25, 45, 200, 100); got != want {
		t.Errorf("bounds at pan (5,5) zoom 2 = %v, want %v", got, want)
	}
	if got := c.ProbeWidth(); got != 2*geom.ProbeWidth {
		t.Errorf("ProbeWidth = %v, want %v", got, 2*geom.ProbeWidth)
	}
}

func TestRejectsItemsWithoutID(t *testing.T) {
	c, _ := newCanvas(t)
	if c.AddNode(diagram.Node{Width: 10, Height: 10}, geom.Pt(0, 0)) {
		t.Error("AddNode accepted a node without id")
	}
	if c.AddWrapper(diagram.Wrapper{}, geom.Pt(0, 0)) {
		t.Error("AddWrapper accepted a wrapper without id")
	}
}

func TestGroupedNodeFollowsWrapper(t *testing.T) {
	c, sched := newCanvas(t)
	c.AddWrapper(diagram.Wrapper{ID: "g", Fit: true}, geom.Pt(100, 100))
	c.AddNode(diagram.Node{ID: "a", GroupID: "g", Width: 40, Height: 40}, geom.Pt(10, 10))
	sched.Settle(10)

	if got := bounds(t, c, "a").Min(); got != geom.Pt(110, 110) {
		t.Errorf("child at %v, want (110,110)", got)
	}

	c.SetOffset("g", geom.Pt(30, -20))
	if got := bounds(t, c, "a").Min(); got != geom.Pt(140, 90) {
		t.Errorf("child after wrapper offset at %v, want (140,90)", got)
	}

	c.Move("g", geom.Pt(0, 0))
	if got := bounds(t, c, "a").Min(); got != geom.Pt(40, -10) {
		t.Errorf("child after wrapper move at %v, want (40,-10)", got)
	}
}

func TestLayoutPositionOverridesAuthored(t *testing.T) {
	c, _ := newCanvas(t)
	c.AddNode(diagram.Node{ID: "a", Width: 10, Height: 10}, geom.Pt(5, 5))
	e, _ := c.Element("a")

	c.SetLayoutPosition("a", geom.Pt(200, 300))
	if got := e.Position(); got != geom.Pt(200, 300) {
		t.Errorf("Position with layout = %v", got)
	}
	c.ClearLayoutPositions()
	if got := e.Position(); got != geom.Pt(5, 5) {
		t.Errorf("Position after clear = %v, want authored (5,5)", got)
	}
}

func TestMoveResizeRemove(t *testing.T) {
	c, _ := newCanvas(t)
	c.AddNode(diagram.Node{ID: "a", Width: 10, Height: 10}, geom.Pt(0, 0))

	c.Move("a", geom.Pt(50, 60))
	c.Resize("a", geom.Size{Width: 30, Height: 40})
	if got, want := bounds(t, c, "a"), geom.R(50, 60, 30, 40); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}

	c.Remove("a")
	if _, ok := c.Element("a"); ok {
		t.Error("element still mounted after Remove")
	}
	if _, ok := c.Diagram().Locate("a"); ok {
		t.Error("diagram still locates a removed item")
	}
}

func TestCanvasIsEngineHost(t *testing.T) {
	var _ engine.PositionSetter = (*canvas.Canvas)(nil)
}

func TestOffsetScalesWithZoom(t *testing.T) {
	c, _ := newCanvas(t)
	c.AddNode(diagram.Node{ID: "a", Width: 10, Height: 10}, geom.Pt(10, 20))
	c.SetOffset("a", geom.Pt(5, -5))

	for _, tt := range []struct {
		zoom float64
		want geom.Point
	}{
		{1, geom.Pt(15, 15)},
		{2, geom.Pt(30, 30)},
		{0.5, geom.Pt(7.5, 7.5)},
	} {
		c.Diagram().SetViewport(0, 0, tt.zoom)
		if got := bounds(t, c, "a").Min(); got != tt.want {
			t.Errorf("zoom %v: origin = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}
