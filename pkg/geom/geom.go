package geom

import "math"

// ProbeWidth is the authored width of the scale probe element in logical units.
const ProbeWidth = 100.0

// Point is a position or displacement in 2D space.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// Div returns p divided by k. Division by zero returns p unchanged.
func (p Point) Div(k float64) Point {
	if k == 0 {
		return p
	}
	return Point{p.X / k, p.Y / k}
}

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (p Point) IsFinite() bool { return finite(p.X) && finite(p.Y) }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// IsZero reports whether either dimension is not positive.
func (s Size) IsZero() bool { return !(s.Width > 0) || !(s.Height > 0) }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.Width, r.Y + r.Height} }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{r.X + r.Width/2, r.Y + r.Height/2} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return !(r.Width > 0) || !(r.Height > 0) }

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{r.X + d.X, r.Y + d.Y, r.Width, r.Height}
}

// Scale returns r with origin and size multiplied by k.
func (r Rect) Scale(k float64) Rect {
	return Rect{r.X * k, r.Y * k, r.Width * k, r.Height * k}
}

// Inset returns r grown by d on every side (shrunk when d is negative).
func (r Rect) Inset(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.Width + 2*d, r.Height + 2*d}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Contains reports whether o lies within r, allowing eps of slack.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.X+o.Width <= r.X+r.Width+eps && o.Y+o.Height <= r.Y+r.Height+eps
}

// ContainsPoint reports whether p lies within r (edges inclusive).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlap returns the penetration depth of r and o along each axis.
// Both values are positive only when the interiors intersect; touching
// rectangles do not overlap.
func (r Rect) Overlap(o Rect) (dx, dy float64) {
	dx = math.Min(r.X+r.Width, o.X+o.Width) - math.Max(r.X, o.X)
	dy = math.Min(r.Y+r.Height, o.Y+o.Height) - math.Max(r.Y, o.Y)
	return dx, dy
}

// Overlaps reports whether r and o intersect by more than eps on both axes.
func (r Rect) Overlaps(o Rect, eps float64) bool {
	dx, dy := r.Overlap(o)
	return dx > eps && dy > eps
}

// IsFinite reports whether every field is finite.
func (r Rect) IsFinite() bool {
	return finite(r.X) && finite(r.Y) && finite(r.Width) && finite(r.Height)
}

// Bounds returns the union of rects. ok is false when rects is empty.
func Bounds(rects []Rect) (b Rect, ok bool) {
	for i, r := range rects {
		if i == 0 {
			b = r
			continue
		}
		b = b.Union(r)
	}
	return b, len(rects) > 0
}

// ProbeScale converts the measured width of the probe element into the
// effective render scale. Unusable measurements yield 1.
func ProbeScale(measured float64) float64 {
	if !finite(measured) || measured <= 0 {
		return 1
	}
	return measured / ProbeWidth
}

// ChildBounds computes the union of children, given in screen pixels, in the
// local logical space of a parent whose screen origin is origin. Pixel deltas
// are divided by scale. ok is false when there are no children.
func ChildBounds(origin Point, children []Rect, scale float64) (Rect, bool) {
	b, ok := Bounds(children)
	if !ok {
		return Rect{}, false
	}
	if !finite(scale) || scale <= 0 {
		scale = 1
	}
	return b.Translate(origin.Mul(-1)).Scale(1 / scale), true
}

// Transform is the pan/zoom map between logical and screen space.
type Transform struct {
	Pan   Point
	Scale float64
}

// Identity is the transform with no pan and unit scale.
var Identity = Transform{Scale: 1}

func (t Transform) scale() float64 {
	if !finite(t.Scale) || t.Scale <= 0 {
		return 1
	}
	return t.Scale
}

// ToScreen maps a logical point to screen space.
func (t Transform) ToScreen(p Point) Point { return p.Mul(t.scale()).Add(t.Pan) }

// ToLogical maps a screen point to logical space.
func (t Transform) ToLogical(p Point) Point { return p.Sub(t.Pan).Div(t.scale()) }

// RectToScreen maps a logical rectangle to screen space.
func (t Transform) RectToScreen(r Rect) Rect {
	return r.Scale(t.scale()).Translate(t.Pan)
}

// RectToLogical maps a screen rectangle to logical space.
func (t Transform) RectToLogical(r Rect) Rect {
	return r.Translate(t.Pan.Mul(-1)).Scale(1 / t.scale())
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool { return finite(v) }
