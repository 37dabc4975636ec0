package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/zenui/zendiagram/pkg/pipeline"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Layout.Width != pipeline.DefaultWidth || cfg.Layout.Height != pipeline.DefaultHeight {
		t.Errorf("container = %vx%v, want pipeline defaults", cfg.Layout.Width, cfg.Layout.Height)
	}
	if cfg.Cache.Backend != cacheBackendFile {
		t.Errorf("backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "overrides",
			content: `
[layout]
strategy = "grid"
width = 640.0

[render]
formats = ["png", "dot"]

[server]
addr = "127.0.0.1:9000"
`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Layout.Strategy != "grid" || cfg.Layout.Width != 640 {
					t.Errorf("layout = %+v", cfg.Layout)
				}
				if cfg.Layout.Height != pipeline.DefaultHeight {
					t.Errorf("height = %v, want default kept", cfg.Layout.Height)
				}
				if !reflect.DeepEqual(cfg.Render.Formats, []string{"png", "dot"}) {
					t.Errorf("formats = %v", cfg.Render.Formats)
				}
				if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.Burst != 20 {
					t.Errorf("server = %+v", cfg.Server)
				}
			},
		},
		{
			name:    "redis backend",
			content: "[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379/0\"\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.Cache.Backend != cacheBackendRedis {
					t.Errorf("backend = %q", cfg.Cache.Backend)
				}
			},
		},
		{name: "redis without url", content: "[cache]\nbackend = \"redis\"\n", wantErr: true},
		{name: "unknown backend", content: "[cache]\nbackend = \"memcached\"\n", wantErr: true},
		{name: "unknown strategy", content: "[layout]\nstrategy = \"spiral\"\n", wantErr: true},
		{name: "unknown format", content: "[render]\nformats = [\"pdf\"]\n", wantErr: true},
		{name: "negative rate", content: "[server]\nrate_limit = -1.0\n", wantErr: true},
		{name: "malformed", content: "[layout\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), configFile)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && err == nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", configFile)
	cfg := DefaultConfig()
	cfg.Layout.Strategy = "vertical"
	cfg.Render.Grid = 10
	cfg.Cache.Dir = "/var/cache/zendiagram"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	c, out := newTestCLI(t)

	cmd := c.configCommand()
	cmd.SetArgs([]string{"init"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	path, _ := configPath()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	out.Reset()
	cmd = c.configCommand()
	cmd.SetArgs([]string{"init"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("second init output = %q", out.String())
	}

	out.Reset()
	cmd = c.configCommand()
	cmd.SetArgs([]string{"show"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[server]") {
		t.Errorf("show output missing [server]: %q", out.String())
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	c := &CLI{Logger: newLogger(os.Stderr, LogInfo), Config: DefaultConfig()}
	c.Config.Layout.Strategy = "grid"
	c.Config.Render.Formats = []string{"png"}

	opts := c.pipelineOptions()
	if opts.Strategy != "grid" {
		t.Errorf("Strategy = %q, want grid", opts.Strategy)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"png"}) {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.AutoLayout != nil || opts.Margin != nil {
		t.Error("AutoLayout and Margin should be left to the document")
	}
}
