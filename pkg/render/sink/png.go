package sink

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/geom"
)

// MaxPNGSize bounds either side of a rendered image, in pixels.
const MaxPNGSize = 16384

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	labels bool
	grid   float64
	margin float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithoutPNGLabels omits all text.
func WithoutPNGLabels() PNGOption {
	return func(r *pngRenderer) { r.labels = false }
}

// WithPNGGrid draws a background grid with the given logical spacing.
func WithPNGGrid(spacing float64) PNGOption {
	return func(r *pngRenderer) { r.grid = spacing }
}

// WithPNGMargin sets the space around the content bounds.
func WithPNGMargin(m float64) PNGOption {
	return func(r *pngRenderer) { r.margin = m }
}

var (
	monoFont     *truetype.Font
	monoFontErr  error
	monoFontOnce sync.Once
)

func loadFont() (*truetype.Font, error) {
	monoFontOnce.Do(func() {
		monoFont, monoFontErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoFontErr
}

// RenderPNG rasterizes the snapshot.
func RenderPNG(s document.Snapshot, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, labels: true, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) || math.IsInf(r.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}
	if !(r.margin >= 0) {
		r.margin = DefaultMargin
	}

	frame := s.Frame(r.margin)
	w := int(math.Ceil(frame.Width * r.scale))
	h := int(math.Ceil(frame.Height * r.scale))
	if w > MaxPNGSize || h > MaxPNGSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png of %dx%d px exceeds the %d px limit", w, h, MaxPNGSize)
	}

	ttf, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	c := &pngCanvas{dc: gg.NewContext(max(w, 1), max(h, 1)), frame: frame, scale: r.scale, font: ttf}
	c.dc.SetColor(paint(backgroundColor, backgroundColor, 1))
	c.dc.Clear()
	if r.grid > 0 {
		c.drawGrid(r.grid)
	}
	for _, wr := range s.Wrappers {
		c.drawWrapper(wr, r.labels)
	}
	for _, e := range s.Edges {
		if !e.Active {
			c.drawEdge(e)
		}
	}
	for _, e := range s.Edges {
		if e.Active {
			c.drawEdge(e)
		}
	}
	for _, n := range s.Nodes {
		c.drawNode(s, n, r.labels)
	}
	if r.labels {
		for _, e := range s.Edges {
			if e.Label != "" {
				c.text(e.Label, e.LabelPos, edgeLabelSize, mutedText)
			}
		}
	}

	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// pngCanvas maps logical coordinates into image pixels.
type pngCanvas struct {
	dc    *gg.Context
	frame geom.Rect
	scale float64
	font  *truetype.Font
}

func (c *pngCanvas) pt(p geom.Point) (float64, float64) {
	return (p.X - c.frame.X) * c.scale, (p.Y - c.frame.Y) * c.scale
}

func (c *pngCanvas) rect(r geom.Rect, radius float64) {
	x, y := c.pt(r.Min())
	c.dc.DrawRoundedRectangle(x, y, r.Width*c.scale, r.Height*c.scale, radius*c.scale)
}

func (c *pngCanvas) dashes(ds []float64) {
	scaled := make([]float64, len(ds))
	for i, d := range ds {
		scaled[i] = d * c.scale
	}
	c.dc.SetDash(scaled...)
}

func (c *pngCanvas) drawGrid(spacing float64) {
	c.dc.SetColor(paint(gridColor, gridColor, 1))
	c.dc.SetLineWidth(1)
	start := math.Floor(c.frame.X/spacing) * spacing
	for x := start; x <= c.frame.X+c.frame.Width; x += spacing {
		px, _ := c.pt(geom.Pt(x, 0))
		c.dc.DrawLine(px, 0, px, float64(c.dc.Height()))
	}
	start = math.Floor(c.frame.Y/spacing) * spacing
	for y := start; y <= c.frame.Y+c.frame.Height; y += spacing {
		_, py := c.pt(geom.Pt(0, y))
		c.dc.DrawLine(0, py, float64(c.dc.Width()), py)
	}
	c.dc.Stroke()
}

func (c *pngCanvas) drawWrapper(w document.PlacedWrapper, labels bool) {
	c.rect(w.Rect, wrapperRadius)
	c.dc.SetColor(paint(wrapperFill, wrapperFill, 1))
	c.dc.FillPreserve()
	c.dc.SetColor(paint(wrapperStroke, wrapperStroke, 1))
	c.dc.SetLineWidth(c.scale)
	c.dashes(wrapperDash)
	c.dc.Stroke()
	c.dc.SetDash()

	if labels && w.Label != "" {
		label := truncate(w.Label, w.Rect.Width-2*wrapperRadius, wrapperLabel)
		face := c.face(wrapperLabel)
		c.dc.SetFontFace(face)
		c.dc.SetColor(paint(mutedText, mutedText, 1))
		x, y := c.pt(geom.Pt(w.Rect.X+wrapperRadius, w.Rect.Y+wrapperRadius+wrapperLabel))
		c.dc.DrawString(label, x, y)
	}
}

func (c *pngCanvas) drawEdge(e document.RoutedEdge) {
	if len(e.Segments) == 0 {
		return
	}
	col := paint(e.Color, "#94a3b8", e.Opacity)
	c.dc.SetColor(col)
	c.dc.SetLineWidth(e.Width * c.scale)
	c.dashes(e.Dashes)

	var prev, last geom.Point
	for _, s := range e.Segments {
		if len(s.Points) == 0 {
			continue
		}
		switch s.Op {
		case "M":
			x, y := c.pt(s.Points[0])
			c.dc.MoveTo(x, y)
			last = s.Points[0]
		case "L":
			x, y := c.pt(s.Points[0])
			c.dc.LineTo(x, y)
			prev, last = last, s.Points[0]
		case "C":
			if len(s.Points) < 3 {
				continue
			}
			x1, y1 := c.pt(s.Points[0])
			x2, y2 := c.pt(s.Points[1])
			x3, y3 := c.pt(s.Points[2])
			c.dc.CubicTo(x1, y1, x2, y2, x3, y3)
			prev, last = s.Points[1], s.Points[2]
		}
	}
	c.dc.Stroke()
	c.dc.SetDash()
	c.arrow(prev, last, e.Width)
}

// arrow draws a filled arrowhead at tip pointing away from from, in the
// current color.
func (c *pngCanvas) arrow(from, tip geom.Point, width float64) {
	d := tip.Sub(from)
	l := d.Len()
	if l == 0 {
		return
	}
	u := d.Div(l)
	n := geom.Pt(-u.Y, u.X)
	size := max(6, 3*width)
	base := tip.Sub(u.Mul(size))
	a, b := base.Add(n.Mul(size/2)), base.Sub(n.Mul(size/2))

	tx, ty := c.pt(tip)
	ax, ay := c.pt(a)
	bx, by := c.pt(b)
	c.dc.MoveTo(tx, ty)
	c.dc.LineTo(ax, ay)
	c.dc.LineTo(bx, by)
	c.dc.ClosePath()
	c.dc.Fill()
}

func (c *pngCanvas) drawNode(s document.Snapshot, n document.PlacedNode, labels bool) {
	stroke, width := nodeStrokeFor(s, n)
	c.rect(n.Rect, nodeRadius)
	c.dc.SetColor(paint(nodeFill, nodeFill, 1))
	c.dc.FillPreserve()
	c.dc.SetColor(paint(stroke, nodeStroke, 1))
	c.dc.SetLineWidth(width * c.scale)
	c.dc.Stroke()

	if labels {
		size := fontSize(n.Rect.Width, n.Rect.Height, n.Label)
		c.text(truncate(n.Label, n.Rect.Width, size), n.Rect.Center(), size, textColor)
	}
}

func (c *pngCanvas) text(s string, at geom.Point, size float64, col string) {
	c.dc.SetFontFace(c.face(size))
	c.dc.SetColor(paint(col, textColor, 1))
	x, y := c.pt(at)
	c.dc.DrawStringAnchored(s, x, y, 0.5, 0.35)
}

func (c *pngCanvas) face(size float64) font.Face {
	return truetype.NewFace(c.font, &truetype.Options{
		Size:    size * c.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
