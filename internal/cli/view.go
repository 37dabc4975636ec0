package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/pipeline"
)

// viewCommand creates the view command, an interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var lf layoutFlags
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "view [diagram.json|diagram.toml]",
		Short: "Browse a diagram interactively in the terminal",
		Long: `Browse a diagram interactively in the terminal.

The viewer runs the layout engine live: pan with the arrow keys or the
mouse wheel, zoom with +/- or ctrl+wheel, select items with tab or a left
click and move them with HJKL or a right-button drag. Edges that touch the
selection are highlighted. Press ? for all key bindings.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE:              func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, &opts)
			return c.runView(cmd.Context(), args[0], opts)
		},
	}

	addLayoutFlags(cmd, &opts, &lf)

	return cmd
}

// runView loads the document and runs the viewer until the user quits.
func (c *CLI) runView(ctx context.Context, input string, opts pipeline.Options) error {
	doc, err := pipeline.LoadFile(ctx, input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	cfg, err := pipeline.EngineConfig(doc, opts)
	if err != nil {
		return err
	}
	// The terminal size decides the container once the program starts.
	cfg.Container.Width, cfg.Container.Height = 0, 0

	model := NewViewerModel(doc, cfg)
	defer model.Close()
	if opts.ActiveID != "" {
		model.Diagram().Select(opts.ActiveID)
	}
	c.Logger.Debug("viewer started", "session", model.Session(), "document", input)

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
