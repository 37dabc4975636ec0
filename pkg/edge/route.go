package edge

import (
	"math"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Routing constants in logical units.
const (
	StepMargin   = 20.0
	LeadRatio    = 0.15
	MaxLead      = 50.0
	ControlRatio = 0.5
	MaxControl   = 150.0
)

// Route builds the path of the given shape between two anchors. Unknown
// shapes route as bezier.
func Route(kind diagram.EdgeType, from, to Anchor) Path {
	switch kind {
	case diagram.EdgeStraight:
		return straight(from, to)
	case diagram.EdgeStep:
		return step(from, to)
	}
	return bezier(from, to)
}

func straight(from, to Anchor) Path {
	var p Path
	p.move(from.Pos)
	p.line(to.Pos)
	if len(p.Segments) == 1 {
		// Coincident anchors still draw a zero-length segment.
		p.Segments = append(p.Segments, Segment{Op: LineTo, Pts: [3]geom.Point{to.Pos}})
	}
	p.Label = midpoint([]geom.Point{from.Pos, to.Pos})
	return p
}

func step(from, to Anchor) Path {
	a := from.Pos.Add(from.Dir.Mul(StepMargin))
	b := to.Pos.Add(to.Dir.Mul(StepMargin))
	fromH, toH := from.Side.Horizontal(), to.Side.Horizontal()

	pts := []geom.Point{from.Pos, a}
	switch {
	case fromH && toH:
		mx := (a.X + b.X) / 2
		pts = append(pts, geom.Pt(mx, a.Y), geom.Pt(mx, b.Y))
	case !fromH && !toH:
		my := (a.Y + b.Y) / 2
		pts = append(pts, geom.Pt(a.X, my), geom.Pt(b.X, my))
	case fromH:
		pts = append(pts, geom.Pt(b.X, a.Y))
	default:
		pts = append(pts, geom.Pt(a.X, b.Y))
	}
	pts = append(pts, b, to.Pos)

	var p Path
	p.move(pts[0])
	for _, q := range pts[1:] {
		p.line(q)
	}
	p.Label = midpoint(pts)
	return p
}

func bezier(from, to Anchor) Path {
	d := from.Pos.Dist(to.Pos)
	lead := math.Min(LeadRatio*d, MaxLead)
	ctrl := math.Min(ControlRatio*d, MaxControl)

	p1 := from.Pos.Add(from.Dir.Mul(lead))
	p2 := to.Pos.Add(to.Dir.Mul(lead))
	c1 := p1.Add(from.Dir.Mul(ctrl))
	c2 := p2.Add(to.Dir.Mul(ctrl))

	var p Path
	p.move(from.Pos)
	p.Segments = append(p.Segments, Segment{Op: LineTo, Pts: [3]geom.Point{p1}})
	p.cubic(c1, c2, p2)
	p.Segments = append(p.Segments, Segment{Op: LineTo, Pts: [3]geom.Point{to.Pos}})
	p.Label = cubicAt(p1, c1, c2, p2, 0.5)
	return p
}
