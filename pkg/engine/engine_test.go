package engine

import (
	"testing"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/frame"
	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/registry"
)

func headless(t *testing.T, cfg Config) (*Diagram, *frame.Manual) {
	t.Helper()
	sched := frame.NewManual()
	cfg.Scheduler = sched
	d := New(cfg)
	t.Cleanup(d.Close)
	return d, sched
}

func TestInertNodeIgnored(t *testing.T) {
	d, sched := headless(t, DefaultConfig())
	if d.RegisterNode(NodeSpec{}, nil) {
		t.Error("inert node should not register")
	}
	if sched.Pending() != 0 {
		t.Error("inert node should not schedule layout")
	}
}

func TestLayoutCoalescedPerFrame(t *testing.T) {
	d, sched := headless(t, DefaultConfig())
	var layouts int
	d.Subscribe(func(ev registry.Event) {
		if ev.Kind == registry.EventLayout {
			layouts++
		}
	})

	for _, id := range []string{"a", "b", "c"} {
		d.RegisterNode(NodeSpec{ID: id}, nil)
	}
	d.SetEdges([]diagram.Edge{{From: "a", To: "b"}})
	sched.Settle(10)

	if layouts != 1 {
		t.Errorf("layout ran %d times, want 1", layouts)
	}
	if got := len(d.LayoutPositions()); got != 3 {
		t.Errorf("got %d positions, want 3", got)
	}
}

func TestLocateWithoutHandles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = diagram.StrategyGrid
	d, _ := headless(t, cfg)
	d.RegisterNode(NodeSpec{ID: "a", Width: 120, Height: 80}, nil)
	d.RegisterNode(NodeSpec{ID: "b"}, nil)
	d.Relayout()

	if r, ok := d.Locate("b"); !ok || r != geom.R(400, 0, 200, 150) {
		t.Errorf("Locate(b) = %+v, %v", r, ok)
	}
	if r, ok := d.Locate("a"); !ok || r != geom.R(0, 0, 120, 80) {
		t.Errorf("Locate(a) = %+v, %v", r, ok)
	}
	if _, ok := d.Locate("ghost"); ok {
		t.Error("unregistered item should not be located")
	}
}

func TestSetAutoLayoutOff(t *testing.T) {
	d, sched := headless(t, DefaultConfig())
	d.RegisterNode(NodeSpec{ID: "a"}, nil)
	sched.Settle(10)
	if len(d.LayoutPositions()) != 1 {
		t.Fatal("expected a layout position")
	}

	d.SetAutoLayout(false)
	if len(d.LayoutPositions()) != 0 {
		t.Error("disabling auto-layout should clear positions")
	}
	d.RegisterNode(NodeSpec{ID: "b"}, nil)
	if sched.Pending() != 0 {
		t.Error("no layout should be scheduled with auto-layout off")
	}

	d.SetAutoLayout(true)
	sched.Settle(10)
	if len(d.LayoutPositions()) != 2 {
		t.Errorf("re-enabling should lay out every node, got %v", d.LayoutPositions())
	}
}

func TestCloseCancelsFrames(t *testing.T) {
	sched := frame.NewManual()
	cfg := DefaultConfig()
	cfg.Scheduler = sched
	d := New(cfg)
	d.RegisterWrapper(WrapperSpec{ID: "w", Fit: true}, nil)
	d.RegisterNode(NodeSpec{ID: "a", GroupID: "w"}, nil)

	d.Close()
	if sched.Pending() != 0 {
		t.Errorf("pending frames after Close = %d", sched.Pending())
	}
	if d.RegisterNode(NodeSpec{ID: "b"}, nil) {
		t.Error("closed diagram should reject registration")
	}
	d.Close()
}

func TestStrategyAndOptionsReschedule(t *testing.T) {
	d, sched := headless(t, DefaultConfig())
	d.RegisterNode(NodeSpec{ID: "a"}, nil)
	sched.Settle(10)

	d.SetStrategy(diagram.DefaultStrategy)
	if sched.Pending() != 0 {
		t.Error("unchanged strategy should not reschedule")
	}
	d.SetStrategy(diagram.StrategyGrid)
	if sched.Pending() != 1 {
		t.Error("changed strategy should reschedule")
	}
	sched.Settle(10)
	d.SetLayoutOptions(diagram.LayoutOptions{NodeSpacing: 10})
	if sched.Pending() != 1 {
		t.Error("changed options should reschedule")
	}
}
