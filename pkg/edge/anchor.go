package edge

import (
	"math"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Anchor is an edge endpoint on the boundary of an item.
type Anchor struct {
	Pos  geom.Point
	Dir  geom.Point
	Side diagram.Dot
}

var sideDirs = map[diagram.Dot]geom.Point{
	diagram.DotTop:    {X: 0, Y: -1},
	diagram.DotRight:  {X: 1, Y: 0},
	diagram.DotBottom: {X: 0, Y: 1},
	diagram.DotLeft:   {X: -1, Y: 0},
}

// AnchorOn returns the anchor at the midpoint of side of r. Anything other
// than a concrete side is treated as right.
func AnchorOn(r geom.Rect, side diagram.Dot) Anchor {
	c := r.Center()
	switch side {
	case diagram.DotTop:
		return Anchor{Pos: geom.Pt(c.X, r.Y), Dir: sideDirs[side], Side: side}
	case diagram.DotBottom:
		return Anchor{Pos: geom.Pt(c.X, r.Y+r.Height), Dir: sideDirs[side], Side: side}
	case diagram.DotLeft:
		return Anchor{Pos: geom.Pt(r.X, c.Y), Dir: sideDirs[side], Side: side}
	}
	return Anchor{Pos: geom.Pt(r.X+r.Width, c.Y), Dir: sideDirs[diagram.DotRight], Side: diagram.DotRight}
}

// ResolveDot picks the side of self facing other. Concrete sides are
// returned unchanged. When the horizontal distance between the centers
// dominates, right or left is chosen by its sign; otherwise bottom or top.
// Without a usable other rectangle the result is right.
func ResolveDot(dot diagram.Dot, self, other geom.Rect, hasOther bool) diagram.Dot {
	if dot != diagram.DotAuto && dot.Valid() {
		return dot
	}
	if !hasOther || !other.IsFinite() || !self.IsFinite() {
		return diagram.DotRight
	}
	d := other.Center().Sub(self.Center())
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X < 0 {
			return diagram.DotLeft
		}
		return diagram.DotRight
	}
	if d.Y < 0 {
		return diagram.DotTop
	}
	return diagram.DotBottom
}

// Anchors resolves both endpoints of e between the rectangles from and to.
func Anchors(e diagram.Edge, from, to geom.Rect) (Anchor, Anchor) {
	fs := ResolveDot(e.FromDot, from, to, true)
	ts := ResolveDot(e.ToDot, to, from, true)
	return AnchorOn(from, fs), AnchorOn(to, ts)
}
