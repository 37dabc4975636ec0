package sink

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/geom"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels bool
	arrows bool
	grid   float64
	margin float64
	title  string
}

func WithoutLabels() SVGOption           { return func(r *svgRenderer) { r.labels = false } }
func WithoutArrows() SVGOption           { return func(r *svgRenderer) { r.arrows = false } }
func WithGrid(spacing float64) SVGOption { return func(r *svgRenderer) { r.grid = spacing } }
func WithMargin(m float64) SVGOption     { return func(r *svgRenderer) { r.margin = m } }
func WithTitle(t string) SVGOption       { return func(r *svgRenderer) { r.title = t } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{labels: true, arrows: true, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.margin >= 0) {
		r.margin = DefaultMargin
	}
	return r
}

// RenderSVG renders the snapshot as a standalone SVG document.
func RenderSVG(s document.Snapshot, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	frame := s.Frame(r.margin)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		frame.X, frame.Y, frame.Width, frame.Height, frame.Width, frame.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}

	markers := r.renderDefs(&buf, s)
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		frame.X, frame.Y, frame.Width, frame.Height, backgroundColor)
	if r.grid > 0 {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="url(#grid)"/>`+"\n",
			frame.X, frame.Y, frame.Width, frame.Height)
	}

	renderWrappers(&buf, &r, s)
	renderEdges(&buf, s, markers)
	renderNodes(&buf, &r, s)
	if r.labels {
		renderEdgeLabels(&buf, s)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderDefs writes one arrow marker per edge color and the grid pattern.
// It returns the marker id of each color.
func (r *svgRenderer) renderDefs(buf *bytes.Buffer, s document.Snapshot) map[string]string {
	markers := make(map[string]string)
	var colors []string
	if r.arrows {
		for _, e := range s.Edges {
			if _, ok := markers[e.Color]; !ok {
				markers[e.Color] = fmt.Sprintf("arrow-%d", len(colors))
				colors = append(colors, e.Color)
			}
		}
	}
	if len(colors) == 0 && r.grid <= 0 {
		return markers
	}

	buf.WriteString("  <defs>\n")
	for _, c := range colors {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse">`+
			`<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker>`+"\n", markers[c], escapeXML(c))
	}
	if r.grid > 0 {
		fmt.Fprintf(buf, `    <pattern id="grid" width="%s" height="%s" patternUnits="userSpaceOnUse">`+
			`<path d="M %s 0 L 0 0 0 %s" fill="none" stroke="%s" stroke-width="1"/></pattern>`+"\n",
			formatNum(r.grid), formatNum(r.grid), formatNum(r.grid), formatNum(r.grid), gridColor)
	}
	buf.WriteString("  </defs>\n")
	return markers
}

func renderWrappers(buf *bytes.Buffer, r *svgRenderer, s document.Snapshot) {
	for _, w := range s.Wrappers {
		fmt.Fprintf(buf, `  <rect id="wrapper-%s" class="wrapper" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="1" stroke-dasharray="%s"/>`+"\n",
			escapeXML(w.ID), w.Rect.X, w.Rect.Y, w.Rect.Width, w.Rect.Height, wrapperRadius,
			wrapperFill, wrapperStroke, joinNums(wrapperDash))
		if r.labels && w.Label != "" {
			fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="%s" font-size="%.0f" fill="%s">%s</text>`+"\n",
				w.Rect.X+wrapperRadius, w.Rect.Y+wrapperRadius+wrapperLabel, fontFamily, wrapperLabel, mutedText,
				escapeXML(truncate(w.Label, w.Rect.Width-2*wrapperRadius, wrapperLabel)))
		}
	}
}

func renderEdges(buf *bytes.Buffer, s document.Snapshot, markers map[string]string) {
	// Active edges are drawn last so they stay on top of dimmed ones.
	edges := slices.Clone(s.Edges)
	slices.SortStableFunc(edges, func(a, b document.RoutedEdge) int {
		switch {
		case a.Active == b.Active:
			return 0
		case a.Active:
			return 1
		}
		return -1
	})

	for _, e := range edges {
		fmt.Fprintf(buf, `  <path id="edge-%s" class="edge" d="%s" fill="none" stroke="%s" stroke-width="%s"`,
			escapeXML(e.ID), e.Path, escapeXML(e.Color), formatNum(e.Width))
		if e.Opacity < 1 {
			fmt.Fprintf(buf, ` stroke-opacity="%s"`, formatNum(e.Opacity))
		}
		if len(e.Dashes) > 0 {
			fmt.Fprintf(buf, ` stroke-dasharray="%s"`, joinNums(e.Dashes))
		}
		if id, ok := markers[e.Color]; ok {
			fmt.Fprintf(buf, ` marker-end="url(#%s)"`, id)
		}
		buf.WriteString("/>\n")
	}
}

func renderNodes(buf *bytes.Buffer, r *svgRenderer, s document.Snapshot) {
	for _, n := range s.Nodes {
		stroke, width := nodeStrokeFor(s, n)
		class := "node"
		switch {
		case n.ID == s.ActiveID:
			class += " active"
		case n.Related:
			class += " related"
		}
		fmt.Fprintf(buf, `  <rect id="node-%s" class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			escapeXML(n.ID), class, n.Rect.X, n.Rect.Y, n.Rect.Width, n.Rect.Height, nodeRadius,
			nodeFill, stroke, formatNum(width))
		if r.labels {
			renderLabel(buf, n.Rect, n.Label)
		}
	}
}

func renderLabel(buf *bytes.Buffer, rect geom.Rect, label string) {
	size := fontSize(rect.Width, rect.Height, label)
	c := rect.Center()
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
		c.X, c.Y, fontFamily, size, textColor, escapeXML(truncate(label, rect.Width, size)))
}

func renderEdgeLabels(buf *bytes.Buffer, s document.Snapshot) {
	for _, e := range s.Edges {
		if e.Label == "" {
			continue
		}
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.0f" fill="%s" paint-order="stroke" stroke="%s" stroke-width="4">%s</text>`+"\n",
			e.LabelPos.X, e.LabelPos.Y, fontFamily, edgeLabelSize, mutedText, backgroundColor, escapeXML(e.Label))
	}
}
