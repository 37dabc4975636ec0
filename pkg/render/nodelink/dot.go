package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/errors"
)

// pointsPerInch converts logical units, read as points, into Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Pinned fixes every node at its snapshot position and size.
	Pinned bool
	// Detailed appends node sizes to labels.
	// When false, only the label is shown.
	Detailed bool
}

// Layout names a Graphviz layout engine.
type Layout string

const (
	LayoutDot   Layout = "dot"
	LayoutNeato Layout = "neato"
)

// ParseLayout resolves a layout engine name. The empty string selects dot.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutDot:
		return LayoutDot, nil
	case LayoutNeato:
		return LayoutNeato, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown graphviz layout %q (must be dot or neato)", s)
}

// ToDOT converts a snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Wrappers become clusters; grouped nodes are declared inside their
// cluster. Edge color, width, dash style and label are carried over.
func ToDOT(s document.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=14];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	if opts.Pinned {
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("\n")

	grouped := make(map[string][]document.PlacedNode)
	known := make(map[string]bool, len(s.Wrappers))
	for _, w := range s.Wrappers {
		known[w.ID] = true
	}
	var top []document.PlacedNode
	for _, n := range s.Nodes {
		if known[n.Group] {
			grouped[n.Group] = append(grouped[n.Group], n)
			continue
		}
		top = append(top, n)
	}

	for _, w := range s.Wrappers {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+w.ID)
		fmt.Fprintf(&buf, "    label=%q;\n    style=\"rounded,dashed\";\n    color=\"#cbd5e1\";\n", w.Label)
		for _, n := range grouped[w.ID] {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(s, n, opts), ", "))
		}
		buf.WriteString("  }\n")
	}
	for _, n := range top {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(s, n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n document.PlacedNode, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\n%gx%g", n.Label, n.Rect.Width, n.Rect.Height)
}

func fmtAttrs(s document.Snapshot, n document.PlacedNode, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch {
	case s.ActiveID != "" && n.ID == s.ActiveID:
		attrs = append(attrs, `color="#2563eb"`, "penwidth=2")
	case n.Related:
		attrs = append(attrs, `color="#60a5fa"`, "penwidth=2")
	}
	if opts.Pinned {
		c := n.Rect.Center()
		// Graphviz's y axis points up.
		attrs = append(attrs,
			fmt.Sprintf(`pos="%s,%s!"`, num(c.X), num(-c.Y)),
			fmt.Sprintf("width=%s", num(n.Rect.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", num(n.Rect.Height/pointsPerInch)),
			"fixedsize=true",
		)
	}
	return attrs
}

func fmtEdgeAttrs(e document.RoutedEdge) []string {
	attrs := []string{fmt.Sprintf("color=%q", e.Color), fmt.Sprintf("penwidth=%s", num(e.Width))}
	switch e.Style {
	case diagram.LineDashed:
		attrs = append(attrs, "style=dashed")
	case diagram.LineDotted:
		attrs = append(attrs, "style=dotted")
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	return attrs
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string, layout Layout) ([]byte, error) {
	data, err := render(dot, layout, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string, layout Layout) ([]byte, error) {
	return render(dot, layout, graphviz.PNG)
}

func render(dot string, layout Layout, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if layout == LayoutNeato {
		gv.SetLayout(graphviz.NEATO)
	} else {
		gv.SetLayout(graphviz.DOT)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
