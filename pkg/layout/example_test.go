package layout_test

import (
	"fmt"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/layout"
)

func ExampleCalculate_grid() {
	nodes := []diagram.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	res := layout.Calculate(diagram.StrategyGrid, nodes, nil, diagram.LayoutOptions{})
	for _, n := range nodes {
		p := res.Positions[n.ID]
		fmt.Printf("%s: (%g, %g)\n", n.ID, p.X, p.Y)
	}
	// Output:
	// a: (0, 0)
	// b: (400, 0)
	// c: (800, 0)
	// d: (0, 300)
	// e: (400, 300)
}

func ExampleCalculate_vertical() {
	nodes := []diagram.Node{
		{ID: "handler", File: "api.go", Width: 120, Height: 60},
		{ID: "store", File: "db.go", Width: 100, Height: 80},
		{ID: "router", File: "api.go", Width: 90, Height: 40},
	}
	res := layout.Calculate(diagram.StrategyVertical, nodes, nil, diagram.LayoutOptions{})
	for _, n := range nodes {
		p := res.Positions[n.ID]
		fmt.Printf("%s: (%g, %g)\n", n.ID, p.X, p.Y)
	}
	// Output:
	// handler: (0, 0)
	// store: (0, 160)
	// router: (170, 0)
}
