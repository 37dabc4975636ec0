package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/internal/server"
	"github.com/zenui/zendiagram/pkg/cache"
)

// serveCommand creates the serve command, which runs the HTTP layout service.
func (c *CLI) serveCommand() *cobra.Command {
	cfg := server.Config{
		Addr:      c.Config.Server.Addr,
		RateLimit: c.Config.Server.RateLimit,
		Burst:     c.Config.Server.Burst,
	}
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve layouts and renders over HTTP.

Endpoints:
  GET  /healthz        liveness check
  POST /v1/layout      document in, layout snapshot out
  POST /v1/render      document in, artifact out (?format=svg|png|json|dot)
  POST /v1/visualize   snapshot in, artifact out

Layout and render options are passed as query parameters named like the
command-line flags (strategy, select, width, height, scale, ...). Results
are cached with the configured cache backend.`,
		Example: `  zendiagram serve --addr :9000
  curl -s --data-binary @diagram.json localhost:9000/v1/render?format=svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per second per client (0 disables)")
	cmd.Flags().IntVar(&cfg.Burst, "burst", cfg.Burst, "requests a client may send at once")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config, noCache bool) error {
	logger := loggerFromContext(ctx)
	if cfg.RateLimit < 0 || cfg.Burst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "http")

	cfg.Logger = logger
	t := startTimer(logger)
	if err := server.New(runner, cfg).ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	t.done("server stopped", "addr", cfg.Addr)
	return nil
}
