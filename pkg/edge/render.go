package edge

import (
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Highlight styling applied while an item is selected.
const (
	DimColor   = "#9ca3af"
	DimOpacity = 0.3
)

// Locator returns the logical rectangle of a registered item.
type Locator func(id string) (geom.Rect, bool)

// Rendered is an edge ready to draw.
type Rendered struct {
	Edge    diagram.Edge
	From    Anchor
	To      Anchor
	Path    Path
	Color   string
	Width   float64
	Style   diagram.LineStyle
	Opacity float64
	// Active is set when the edge touches the selected item.
	Active bool
}

// Dashes returns the dash pattern for the edge style, or nil for solid
// lines.
func (r Rendered) Dashes() []float64 {
	w := r.Width
	switch r.Style {
	case diagram.LineDashed:
		return []float64{4 * w, 2 * w}
	case diagram.LineDotted:
		return []float64{w, 2 * w}
	}
	return nil
}

// Render routes every edge whose endpoints can be located. Edges with an
// unknown endpoint are skipped. When activeID is set, edges touching it are
// drawn at full opacity and dashed and every other edge is dimmed.
func Render(edges []diagram.Edge, locate Locator, activeID string) []Rendered {
	out := make([]Rendered, 0, len(edges))
	for _, e := range edges {
		e = e.Normalize()
		fr, ok := locate(e.From)
		if !ok || !fr.IsFinite() {
			continue
		}
		tr, ok := locate(e.To)
		if !ok || !tr.IsFinite() {
			continue
		}
		from, to := Anchors(e, fr, tr)
		r := Rendered{
			Edge:    e,
			From:    from,
			To:      to,
			Path:    Route(e.Type, from, to),
			Color:   e.Color,
			Width:   e.Width,
			Style:   e.Style,
			Opacity: 1,
		}
		switch {
		case activeID == "":
		case e.Touches(activeID):
			r.Active = true
			r.Style = diagram.LineDashed
		default:
			r.Opacity = DimOpacity
			r.Color = DimColor
		}
		out = append(out, r)
	}
	return out
}
