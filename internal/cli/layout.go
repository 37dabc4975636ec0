package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/pipeline"
)

// layoutFlags holds layout flags that need post-processing after parsing.
type layoutFlags struct {
	autoLayout bool
}

// addLayoutFlags registers the layout option flags shared by layout,
// render and view.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options, lf *layoutFlags) {
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", opts.Strategy, "layout strategy: smart, vertical, grid (default: document setting)")
	cmd.Flags().BoolVar(&lf.autoLayout, "auto-layout", true, "compute positions instead of using authored ones")
	cmd.Flags().Float64Var(&opts.NodeSpacing, "spacing", opts.NodeSpacing, "node spacing in logical pixels")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "force simulation iterations (smart strategy)")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "container width used to fit the view")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "container height used to fit the view")
	cmd.Flags().StringVar(&opts.ActiveID, "select", "", "select this item before capturing")
	registerLayoutCompletions(cmd)
}

// apply copies flags that were set explicitly into opts.
func (lf *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("auto-layout") {
		on := lf.autoLayout
		opts.AutoLayout = &on
	}
}

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		lf      layoutFlags
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.toml]",
		Short: "Compute a layout snapshot from a diagram document",
		Long: `Compute a layout snapshot from a diagram document.

The layout command mounts the document on a headless canvas, lets the engine
run its layout strategy and route every edge, and writes the settled result
as a snapshot (<input>.layout.json). Snapshots hold node rectangles, wrapper
boxes, edge paths and the fitted viewport, and can be rendered with
'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE:              func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached layout exists")
	addLayoutFlags(cmd, &opts, &lf)

	return cmd
}

// runLayout loads the document, computes the layout, and writes the snapshot.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	spin := startSpinner(ctx, "Computing layout...")

	snap, cacheHit, err := runner.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spin.fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spin.stop()
	t.lap("computed layout", "strategy", snap.Strategy, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := document.WriteSnapshotFile(snap, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	t.done("wrote snapshot", "path", outputPath)
	printSuccess("Layout complete (%s)", snap.Strategy)
	printFile(outputPath)
	printStats(len(snap.Nodes), len(snap.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
