package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/pipeline"
)

// completionShells maps each supported shell to its script generator.
var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionShells))
	for name := range completionShells {
		shells = append(shells, name)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   "completion " + strings.Join(shells, "|"),
		Short: "Print a shell completion script",
		Long: `Print a shell completion script to stdout.

Completions cover subcommands, flag names, --strategy, --format, --renderer,
--graphviz-layout and --kind values, and diagram files by extension.`,
		Example: `  source <(zendiagram completion bash)
  zendiagram completion zsh > "${fpath[1]}/_zendiagram"
  zendiagram completion fish > ~/.config/fish/completions/zendiagram.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionShells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeDocuments completes the single diagram file argument.
func completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeSnapshots completes the single snapshot file argument.
func completeSnapshots(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeList completes one element of a comma-separated list, keeping
// the elements already typed and skipping repeats.
func completeList(choices []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix, done := "", []string(nil)
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
			done = strings.Split(toComplete[:i], ",")
		}
		var out []string
		for _, c := range choices {
			if !slices.Contains(done, c) {
				out = append(out, prefix+c)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func strategyNames() []string {
	names := make([]string, len(strategyCycle))
	for i, s := range strategyCycle {
		names[i] = string(s)
	}
	return names
}

// registerLayoutCompletions attaches value completions to the layout flags.
func registerLayoutCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("strategy", cobra.FixedCompletions(strategyNames(), cobra.ShellCompDirectiveNoFileComp))
}

// registerRenderCompletions attaches value completions to the render flags.
func registerRenderCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", completeList(pipeline.ValidFormats))
	_ = cmd.RegisterFlagCompletionFunc("renderer", cobra.FixedCompletions(pipeline.ValidRenderers, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("graphviz-layout", cobra.FixedCompletions([]string{"neato", "dot"}, cobra.ShellCompDirectiveNoFileComp))
}
