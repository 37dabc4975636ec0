package edge

import (
	"math"
	"strconv"
	"strings"

	"github.com/zenui/zendiagram/pkg/geom"
)

// Op is a path drawing operation.
type Op int

const (
	MoveTo Op = iota
	LineTo
	CubicTo
)

// Segment is one path operation. MoveTo and LineTo use Pts[0]; CubicTo
// uses two control points followed by the end point.
type Segment struct {
	Op  Op
	Pts [3]geom.Point
}

// End returns the point the segment finishes at.
func (s Segment) End() geom.Point {
	if s.Op == CubicTo {
		return s.Pts[2]
	}
	return s.Pts[0]
}

// Path is a routed edge shape in logical units.
type Path struct {
	Segments []Segment
	// Label is where the edge label is centered.
	Label geom.Point
}

func (p *Path) move(q geom.Point) { p.Segments = append(p.Segments, Segment{Op: MoveTo, Pts: [3]geom.Point{q}}) }

func (p *Path) line(q geom.Point) {
	if n := len(p.Segments); n > 0 && p.Segments[n-1].End() == q {
		return
	}
	p.Segments = append(p.Segments, Segment{Op: LineTo, Pts: [3]geom.Point{q}})
}

func (p *Path) cubic(c1, c2, q geom.Point) {
	p.Segments = append(p.Segments, Segment{Op: CubicTo, Pts: [3]geom.Point{c1, c2, q}})
}

// Start returns the first point of the path.
func (p Path) Start() geom.Point {
	if len(p.Segments) == 0 {
		return geom.Point{}
	}
	return p.Segments[0].Pts[0]
}

// End returns the last point of the path.
func (p Path) End() geom.Point {
	if len(p.Segments) == 0 {
		return geom.Point{}
	}
	return p.Segments[len(p.Segments)-1].End()
}

// Empty reports whether the path has nothing to draw.
func (p Path) Empty() bool { return len(p.Segments) < 2 }

// D returns the path in SVG path data syntax.
func (p Path) D() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch s.Op {
		case MoveTo:
			b.WriteString("M ")
			writePoint(&b, s.Pts[0])
		case LineTo:
			b.WriteString("L ")
			writePoint(&b, s.Pts[0])
		case CubicTo:
			b.WriteString("C ")
			writePoint(&b, s.Pts[0])
			b.WriteByte(' ')
			writePoint(&b, s.Pts[1])
			b.WriteByte(' ')
			writePoint(&b, s.Pts[2])
		}
	}
	return b.String()
}

// Bounds returns the smallest rectangle containing every point of the path,
// control points included.
func (p Path) Bounds() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, s := range p.Segments {
		n := 1
		if s.Op == CubicTo {
			n = 3
		}
		for _, q := range s.Pts[:n] {
			rects = append(rects, geom.R(q.X, q.Y, 0, 0))
		}
	}
	return geom.Bounds(rects)
}

func writePoint(b *strings.Builder, q geom.Point) {
	b.WriteString(formatCoord(q.X))
	b.WriteByte(' ')
	b.WriteString(formatCoord(q.Y))
}

func formatCoord(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// midpoint returns the point halfway along a polyline.
func midpoint(pts []geom.Point) geom.Point {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Dist(pts[i-1])
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Dist(pts[i-1])
		if seg > 0 && half <= seg {
			return pts[i-1].Add(pts[i].Sub(pts[i-1]).Mul(half / seg))
		}
		half -= seg
	}
	if len(pts) == 0 {
		return geom.Point{}
	}
	return pts[0]
}

func cubicAt(p0, c1, c2, p3 geom.Point, t float64) geom.Point {
	u := 1 - t
	return p0.Mul(u * u * u).
		Add(c1.Mul(3 * u * u * t)).
		Add(c2.Mul(3 * u * t * t)).
		Add(p3.Mul(t * t * t))
}
