package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/cache"
)

// cacheKinds are the key kinds the pipeline writes.
var cacheKinds = []string{"layout", "artifact"}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached layouts and rendered artifacts",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// fileCache opens the local file cache, or reports why the configured
// backend has none.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	if b := c.Config.Cache.Backend; b != "" && b != cacheBackendFile {
		return nil, fmt.Errorf("cache backend is %q; only the file backend can be managed here", b)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	cc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cc.(*cache.FileCache), nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" && !slices.Contains(cacheKinds, kind) {
				return fmt.Errorf("unknown cache kind %q (must be layout or artifact)", kind)
			}
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			count, err := fc.Clear(kind)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only clear one kind: layout or artifact")
	_ = cmd.RegisterFlagCompletionFunc("kind", cobra.FixedCompletions(cacheKinds, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many entries the cache holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			for _, kind := range cacheKinds {
				n, size, err := fc.Stats(kind)
				if err != nil {
					return err
				}
				printKeyValue(kind, fmt.Sprintf("%d entries, %s", n, formatBytes(size)))
			}
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
