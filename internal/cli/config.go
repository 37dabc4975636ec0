package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/zenui/zendiagram/pkg/diagram"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/pipeline"
)

// Cache backends selectable in the config file.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Config is the user configuration read from config.toml. Zero values
// leave the decision to the document or the pipeline defaults.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig overrides document layout settings.
type LayoutConfig struct {
	Strategy    string  `toml:"strategy,omitempty"`
	NodeSpacing float64 `toml:"node_spacing,omitempty"`
	Iterations  int     `toml:"iterations,omitempty"`
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
}

// RenderConfig holds default output settings.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Renderer string   `toml:"renderer"`
	Graphviz string   `toml:"graphviz_layout"`
	Scale    float64  `toml:"scale"`
	Grid     float64  `toml:"grid,omitempty"`
	NoLabels bool     `toml:"no_labels"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend  string `toml:"backend"` // "file", "redis" or "none"
	Dir      string `toml:"dir,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr      string  `toml:"addr"`
	RateLimit float64 `toml:"rate_limit"` // requests per second per client
	Burst     int     `toml:"burst"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight},
		Render: RenderConfig{
			Formats:  []string{pipeline.FormatSVG},
			Renderer: pipeline.DefaultRenderer,
			Graphviz: "neato",
			Scale:    pipeline.DefaultScale,
		},
		Cache:  CacheConfig{Backend: cacheBackendFile},
		Server: ServerConfig{Addr: ":8080", RateLimit: 10, Burst: 20},
	}
}

// LoadConfig reads the config file at path over the defaults. A missing
// file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, zerrors.Wrap(zerrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the commands cannot fall back from.
func (c Config) Validate() error {
	if _, err := diagram.ParseStrategy(c.Layout.Strategy); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if c.Render.Renderer != "" {
		if err := pipeline.ValidateRenderer(c.Render.Renderer); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", cacheBackendFile, cacheBackendNone:
	case cacheBackendRedis:
		if err := zerrors.ValidateRedisURL(c.Cache.RedisURL); err != nil {
			return err
		}
	default:
		return zerrors.New(zerrors.ErrCodeInvalidInput, "unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return zerrors.New(zerrors.ErrCodeInvalidInput, "server rate limit and burst must not be negative")
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}
			fmt.Fprintln(stdout, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Config already exists (use --force to overwrite)")
				printFile(path)
				return nil
			}
			if err := SaveConfig(path, DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Config written")
			printFile(path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(stdout).Encode(c.Config)
		},
	})

	return cmd
}
