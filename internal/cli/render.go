package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/pipeline"
)

// renderFlags holds the render flags shared by render and visualize.
type renderFlags struct {
	formats string
	margin  float64
}

// addRenderFlags registers output flags on cmd.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options, rf *renderFlags) {
	cmd.Flags().StringVarP(&rf.formats, "format", "f", strings.Join(opts.Formats, ","), "output format(s): svg, png, json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.Renderer, "renderer", opts.Renderer, "svg/png renderer: native, graphviz")
	cmd.Flags().StringVar(&opts.Graphviz, "graphviz-layout", opts.Graphviz, "graphviz layout engine: neato (keeps positions) or dot")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "png scale factor")
	cmd.Flags().Float64Var(&opts.Grid, "grid", opts.Grid, "draw a background grid with this spacing")
	cmd.Flags().Float64Var(&rf.margin, "margin", 0, "margin around the diagram in logical pixels")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", opts.NoLabels, "omit node and edge labels")
	registerRenderCompletions(cmd)
}

// apply resolves render flags into opts and validates them.
func (rf *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	opts.Formats = parseFormats(rf.formats)
	if cmd.Flags().Changed("margin") {
		m := rf.margin
		opts.Margin = &m
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	return pipeline.ValidateRenderer(opts.Renderer)
}

// renderCommand creates the render command, a shortcut for layout followed
// by visualize.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		lf      layoutFlags
		rf      renderFlags
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "render [diagram.json|diagram.toml]",
		Short: "Lay out a diagram document and render it",
		Long: `Lay out a diagram document and render it in one step.

This is equivalent to running 'layout' and then 'visualize' on the
resulting snapshot. Output files are named after the input unless -o is
given; with several formats -o is used as a base path.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE:              func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, &opts)
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts and artifacts")
	addLayoutFlags(cmd, &opts, &lf)
	addRenderFlags(cmd, &opts, &rf)

	return cmd
}

// runRender runs the full pipeline on input and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	t := startTimer(loggerFromContext(ctx))
	doc, err := pipeline.LoadFile(ctx, input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}
	t.lap("loaded document", "path", input)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := startSpinner(ctx, "Rendering diagram...")

	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spin.fail("Render failed")
		return err
	}
	spin.stop()
	t.lap("rendered", "formats", opts.Formats, "layout_cached", result.CacheInfo.LayoutHit, "render_cached", result.CacheInfo.RenderHit)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		source:    input,
		output:    output,
		nodes:     result.Stats.NodeCount,
		edges:     result.Stats.EdgeCount,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
}

// visualizeCommand creates the visualize command for rendering a snapshot.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		rf      renderFlags
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "visualize [diagram.layout.json]",
		Short: "Render a computed layout snapshot",
		Long: `Render a computed layout snapshot.

The visualize command takes a snapshot produced by 'layout' and renders it
to SVG, PNG, JSON or Graphviz DOT. The snapshot holds every position and
edge path, so this step is purely about drawing.

Use 'render' as a shortcut to go directly from a document to output.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSnapshots,
		RunE:              func(cmd *cobra.Command, args []string) error {
			if err := rf.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached artifacts")
	addRenderFlags(cmd, &opts, &rf)

	return cmd
}

// runVisualize loads the snapshot and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	t := startTimer(loggerFromContext(ctx))
	snap, err := document.ReadSnapshotFile(input)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}
	t.lap("loaded snapshot", "path", input, "nodes", len(snap.Nodes))

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := startSpinner(ctx, "Rendering snapshot...")

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		spin.fail("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spin.stop()
	t.lap("rendered", "formats", opts.Formats, "cached", cacheHit)

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     strings.TrimSuffix(input, ".layout.json"),
		source:    input,
		output:    output,
		nodes:     len(snap.Nodes),
		edges:     len(snap.Edges),
		cacheHit:  cacheHit,
	})
}

// =============================================================================
// Output
// =============================================================================

// artifactWriteParams describes rendered artifacts to be written to disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	source    string // never overwritten
	output    string
	nodes     int
	edges     int
	cacheHit  bool
}

// writeArtifacts writes each artifact in format order and prints a summary.
// A single format goes to output verbatim; several formats share output
// as a base path.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if p.source != "" && filepath.Clean(path) == filepath.Clean(p.source) {
			return fmt.Errorf("refusing to overwrite input %s (use -o)", p.source)
		}
		if err := writeFile(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. "-" selects stdout.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}
