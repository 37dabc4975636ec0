package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/buildinfo"
	"github.com/zenui/zendiagram/pkg/cache"
	"github.com/zenui/zendiagram/pkg/observability"
	"github.com/zenui/zendiagram/pkg/pipeline"
)

const (
	appName    = "zendiagram"
	configFile = "config.toml"
)

// Levels accepted by New and SetLogLevel.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// CLI is the state shared by every command: the logger and the loaded
// config file.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the user's
// config file, if one exists.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level), Config: DefaultConfig()}
	if path, err := configPath(); err == nil {
		cfg, err := LoadConfig(path)
		if err != nil {
			c.Logger.Warn("ignoring config file", "path", path, "error", err)
		} else {
			c.Config = cfg
		}
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the zendiagram command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "zendiagram lays out and renders node-link diagrams",
		Long:         `zendiagram lays out node-link diagrams described in JSON or TOML, routes their edges and renders them to SVG, PNG, JSON or Graphviz DOT. It can also browse a diagram in the terminal and serve layouts over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.Set(observability.LogHooks{Logger: c.Logger.WithPrefix("events")})
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(
		c.layoutCommand(),
		c.renderCommand(),
		c.visualizeCommand(),
		c.viewCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.configCommand(),
		c.completionCommand(),
	)

	return root
}

// newRunner returns a runner over the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache builds the configured cache backend. A missing cache directory
// disables caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case cacheBackendNone:
		return cache.NewNullCache(), nil
	case cacheBackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, appName+":")
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// pipelineOptions returns pipeline options seeded from the config file.
// Flags registered on the returned struct override these values.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		Strategy:    c.Config.Layout.Strategy,
		NodeSpacing: c.Config.Layout.NodeSpacing,
		Iterations:  c.Config.Layout.Iterations,
		Width:       c.Config.Layout.Width,
		Height:      c.Config.Layout.Height,
		Formats:     c.Config.Render.Formats,
		Renderer:    c.Config.Render.Renderer,
		Graphviz:    c.Config.Render.Graphviz,
		Scale:       c.Config.Render.Scale,
		Grid:        c.Config.Render.Grid,
		NoLabels:    c.Config.Render.NoLabels,
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Logger = c.Logger
	return opts
}

// parseFormats splits a --format value. Empty input selects SVG.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
