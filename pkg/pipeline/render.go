package pipeline

import (
	"fmt"

	"github.com/zenui/zendiagram/pkg/document"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/render/nodelink"
	"github.com/zenui/zendiagram/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(s document.Snapshot, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(s, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(s document.Snapshot, format string, opts Options) ([]byte, error) {
	if opts.UsesGraphviz() && (format == FormatSVG || format == FormatPNG) {
		return renderGraphviz(s, format, opts)
	}

	switch format {
	case FormatSVG:
		return sink.RenderSVG(s, buildSVGOptions(s, opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(s, buildPNGOptions(opts)...)
	case FormatJSON:
		return sink.RenderJSON(s)
	case FormatDOT:
		return []byte(nodelink.ToDOT(s, nodelink.Options{Pinned: true, Detailed: !opts.NoLabels})), nil
	}
	return nil, zerrors.New(zerrors.ErrCodeUnsupported, "unsupported format: %s", format)
}

// renderGraphviz draws the snapshot through Graphviz. With neato the
// engine's positions are pinned; dot computes its own ranking.
func renderGraphviz(s document.Snapshot, format string, opts Options) ([]byte, error) {
	layout, err := nodelink.ParseLayout(opts.Graphviz)
	if err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(s, nodelink.Options{Pinned: layout == nodelink.LayoutNeato})
	if format == FormatPNG {
		return nodelink.RenderPNG(dot, layout)
	}
	return nodelink.RenderSVG(dot, layout)
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(s document.Snapshot, opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithMargin(opts.margin())}
	if opts.NoLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	if opts.Grid > 0 {
		svgOpts = append(svgOpts, sink.WithGrid(opts.Grid))
	}
	if s.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(s.Title))
	}
	return svgOpts
}

// buildPNGOptions builds PNG rendering options.
func buildPNGOptions(opts Options) []sink.PNGOption {
	pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale), sink.WithPNGMargin(opts.margin())}
	if opts.NoLabels {
		pngOpts = append(pngOpts, sink.WithoutPNGLabels())
	}
	if opts.Grid > 0 {
		pngOpts = append(pngOpts, sink.WithPNGGrid(opts.Grid))
	}
	return pngOpts
}

// RenderFromSnapshotData renders output from serialized snapshot data.
// This is useful when the layout was computed elsewhere (e.g., cached).
func RenderFromSnapshotData(data []byte, opts Options) (map[string][]byte, error) {
	s, err := document.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return Render(s, opts)
}
