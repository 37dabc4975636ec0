package layout

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

func makeNodes(n int) []diagram.Node {
	nodes := make([]diagram.Node, n)
	for i := range nodes {
		nodes[i] = diagram.Node{ID: fmt.Sprintf("n%02d", i)}
	}
	return nodes
}

func TestCalculateEmpty(t *testing.T) {
	for _, s := range []diagram.Strategy{diagram.StrategySmart, diagram.StrategyGrid, diagram.StrategyVertical} {
		res := Calculate(s, nil, nil, diagram.LayoutOptions{})
		if res.Positions == nil {
			t.Fatalf("%s: Positions should be an empty map, not nil", s)
		}
		if len(res.Positions) != 0 {
			t.Errorf("%s: got %d positions, want 0", s, len(res.Positions))
		}
	}
}

func TestCalculateSkipsInertAndDuplicates(t *testing.T) {
	nodes := []diagram.Node{{ID: "a"}, {ID: ""}, {ID: "b"}, {ID: "a", Width: 999}}
	res := Calculate(diagram.StrategyGrid, nodes, nil, diagram.LayoutOptions{})
	if len(res.Positions) != 2 {
		t.Fatalf("got %d positions, want 2: %v", len(res.Positions), res.Positions)
	}
	if _, ok := res.Positions[""]; ok {
		t.Error("inert node should not be positioned")
	}
}

func TestGridCompleteness(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 9, 10, 17} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			nodes := makeNodes(n)
			res := Calculate(diagram.StrategyGrid, nodes, nil, diagram.LayoutOptions{})

			cols := int(math.Ceil(math.Sqrt(float64(n))))
			if got := GridColumns(n); got != cols {
				t.Fatalf("GridColumns(%d) = %d, want %d", n, got, cols)
			}

			slots := make(map[[2]int]string)
			for i, nd := range nodes {
				p, ok := res.Positions[nd.ID]
				if !ok {
					t.Fatalf("node %s missing", nd.ID)
				}
				col, row := int(p.X/GridCellWidth), int(p.Y/GridCellHeight)
				if col >= cols {
					t.Errorf("node %s in column %d, only %d columns", nd.ID, col, cols)
				}
				if want := [2]int{i % cols, i / cols}; [2]int{col, row} != want {
					t.Errorf("node %s at slot %v, want %v", nd.ID, [2]int{col, row}, want)
				}
				if other, dup := slots[[2]int{col, row}]; dup {
					t.Errorf("nodes %s and %s share a slot", other, nd.ID)
				}
				slots[[2]int{col, row}] = nd.ID
			}
		})
	}
}

func TestVertical(t *testing.T) {
	nodes := []diagram.Node{
		{ID: "a", File: "x.go", Width: 100, Height: 40},
		{ID: "b", File: "y.go", Width: 120, Height: 60},
		{ID: "c", File: "x.go", Width: 80, Height: 90},
		{ID: "d", Width: 70, Height: 30},
	}
	res := Calculate(diagram.StrategyVertical, nodes, nil, diagram.LayoutOptions{})

	want := map[string]geom.Point{
		"a": geom.Pt(0, 0),
		"c": geom.Pt(150, 0),
		"b": geom.Pt(0, 190),
		"d": geom.Pt(0, 350),
	}
	if !reflect.DeepEqual(res.Positions, want) {
		t.Errorf("Positions = %v, want %v", res.Positions, want)
	}
}

func TestVerticalDefaultSizes(t *testing.T) {
	nodes := []diagram.Node{{ID: "a", File: "f"}, {ID: "b", File: "f"}}
	res := Calculate(diagram.StrategyVertical, nodes, nil, diagram.LayoutOptions{})
	if got := res.Positions["b"]; got != geom.Pt(diagram.DefaultNodeWidth+VerticalNodeGap, 0) {
		t.Errorf("b = %v, want default width plus gap", got)
	}
}

func TestUnknownStrategyFallsBackToSmart(t *testing.T) {
	nodes := makeNodes(4)
	edges := []diagram.Edge{{From: "n00", To: "n01"}}
	got := Calculate("spiral", nodes, edges, diagram.LayoutOptions{})
	want := Calculate(diagram.StrategySmart, nodes, edges, diagram.LayoutOptions{})
	if !reflect.DeepEqual(got, want) {
		t.Error("unknown strategy should behave like smart")
	}
}

func TestResultBounds(t *testing.T) {
	nodes := []diagram.Node{{ID: "a", Width: 100, Height: 50}, {ID: "b"}}
	res := Result{Positions: map[string]geom.Point{"a": geom.Pt(0, 0), "b": geom.Pt(300, 100)}}
	b, ok := res.Bounds(nodes)
	if !ok {
		t.Fatal("Bounds should report ok")
	}
	if b != geom.R(0, 0, 500, 250) {
		t.Errorf("Bounds = %+v", b)
	}
	if _, ok := (Result{}).Bounds(nil); ok {
		t.Error("empty result should report !ok")
	}
}

func TestCollapse(t *testing.T) {
	nodes := []diagram.Node{
		{ID: "a"},
		{ID: "g1", GroupID: "w"},
		{ID: "g2", GroupID: "w"},
		{ID: "b", GroupID: "missing"},
	}
	groups := []Group{{ID: "w", Box: geom.Size{Width: 500, Height: 300}}, {ID: "empty"}}
	edges := []diagram.Edge{
		{From: "a", To: "g1"},
		{From: "g1", To: "g2"},
		{From: "g2", To: "b"},
		{From: "a", To: "ghost"},
	}

	items, lifted := Collapse(nodes, groups, edges)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if want := []string{"a", "w", "b", "empty"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("items = %v, want %v", ids, want)
	}
	if items[1].Width != 500 || items[1].Height != 300 {
		t.Errorf("group item size = %vx%v, want 500x300", items[1].Width, items[1].Height)
	}
	if w, h := items[3].Size(); w != diagram.DefaultNodeWidth || h != diagram.DefaultNodeHeight {
		t.Errorf("empty group size = %vx%v, want defaults", w, h)
	}

	var pairs []string
	for _, e := range lifted {
		pairs = append(pairs, e.From+"->"+e.To)
	}
	if want := []string{"a->w", "w->b"}; !reflect.DeepEqual(pairs, want) {
		t.Errorf("lifted edges = %v, want %v", pairs, want)
	}
}
