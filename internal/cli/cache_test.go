package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zenui/zendiagram/pkg/cache"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.Config.Cache.Dir = t.TempDir()

	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })
	return c, &out
}

func TestFileCacheRejectsOtherBackends(t *testing.T) {
	c, _ := newTestCLI(t)
	c.Config.Cache.Backend = cacheBackendRedis
	if _, err := c.fileCache(); err == nil {
		t.Error("fileCache() with redis backend should fail")
	}
}

func TestCacheClearByKind(t *testing.T) {
	c, out := newTestCLI(t)
	fc, err := c.fileCache()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"layout:a", "layout:b", "artifact:svg:c"} {
		if err := fc.Set(ctx, key, []byte("x"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	cmd := c.cacheCommand()
	cmd.SetArgs([]string{"clear", "--kind", "layout"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "Cleared 2 cached entries") {
		t.Errorf("output = %q", out.String())
	}
	if n, _, _ := fc.Stats("artifact"); n != 1 {
		t.Errorf("artifact entries after clearing layouts = %d, want 1", n)
	}

	cmd = c.cacheCommand()
	cmd.SetArgs([]string{"clear", "--kind", "tiles"})
	if err := cmd.Execute(); err == nil {
		t.Error("clear with unknown kind should fail")
	}
}

func TestCacheStats(t *testing.T) {
	c, out := newTestCLI(t)
	fc, err := c.fileCache()
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "layout:a", []byte("data"), time.Hour); err != nil {
		t.Fatal(err)
	}

	cmd := c.cacheCommand()
	cmd.SetArgs([]string{"stats"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	for _, want := range []string{"layout", "1 entries", "artifact", "0 entries", fc.Dir()} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stats output %q missing %q", out.String(), want)
		}
	}
}

func TestNewCacheBackends(t *testing.T) {
	c, _ := newTestCLI(t)
	ctx := context.Background()

	cc, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T, want NullCache", cc)
	}

	c.Config.Cache.Backend = cacheBackendNone
	if cc, _ = c.newCache(ctx, false); cc == nil {
		t.Fatal("nil cache")
	} else if _, ok := cc.(cache.NullCache); !ok {
		t.Errorf("none backend gave %T, want NullCache", cc)
	}

	c.Config.Cache.Backend = cacheBackendFile
	cc, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(*cache.FileCache); !ok {
		t.Errorf("file backend gave %T, want *FileCache", cc)
	}
}
