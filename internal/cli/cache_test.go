package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/lanebook/pkg/cache"
)

func TestCacheLocation(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	c := testCLI()
	if got, want := c.cacheLocation(), filepath.Join("/tmp/xdg", appName); got != want {
		t.Errorf("cacheLocation() = %q, want %q", got, want)
	}
	c.redisAddr = "localhost:6379"
	if got := c.cacheLocation(); got != "redis://localhost:6379" {
		t.Errorf("cacheLocation() with redis = %q", got)
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	root := testCLI().RootCommand()
	var out strings.Builder
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), appName) {
		t.Errorf("cache path = %q", out.String())
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c := testCLI()
	ch, err := c.newCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T, want NullCache", ch)
	}

	c.noCache = false
	ch, err = c.newCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("default cache is %T, want *FileCache", ch)
	}
}

func TestCacheClear(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c := testCLI()
	c.noCache = false
	ch, err := c.newCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.Set(ctx, "k", []byte("v"), cache.ArtifactTTL); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := ch.Get(ctx, "k"); ok {
		t.Error("entry survived cache clear")
	}

	entries, err := os.ReadDir(c.cacheLocation())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestCacheReusedAcrossRuns(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeChart(t, chartScript)
	ctx := context.Background()

	c := testCLI()
	c.noCache = false
	for i := range 2 {
		runner, script, opts, err := c.prepare(ctx, path)
		if err != nil {
			t.Fatal(err)
		}
		_, cached, err := runner.BuildWithCacheInfo(ctx, script, opts)
		runner.Close()
		if err != nil {
			t.Fatal(err)
		}
		if cached != (i == 1) {
			t.Errorf("run %d: cached = %v", i, cached)
		}
	}
}

func TestSQLiteBackend(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c := testCLI()
	c.noCache = false
	c.cacheBackend = backendSQLite
	if got := c.cacheLocation(); filepath.Base(got) != "cache.db" {
		t.Errorf("cacheLocation() = %q, want a cache.db file", got)
	}
	ch, err := c.newCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()
	if _, ok := ch.(*cache.SQLiteCache); !ok {
		t.Errorf("sqlite backend gave %T", ch)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"--cache-backend", "sqlite", "cache", "prune"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownBackend(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := testCLI()
	c.noCache = false
	c.cacheBackend = "tape"
	if _, err := c.newCache(context.Background()); err == nil || !strings.Contains(err.Error(), "tape") {
		t.Errorf("newCache() error = %v", err)
	}
}

func TestBackendName(t *testing.T) {
	tests := []struct {
		name string
		c    CLI
		want string
	}{
		{"Default", CLI{}, "file"},
		{"SQLite", CLI{cacheBackend: "sqlite"}, "sqlite"},
		{"Redis", CLI{cacheBackend: "sqlite", redisAddr: "r:6379"}, "redis"},
		{"Disabled", CLI{noCache: true, redisAddr: "r:6379"}, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.backendName(); got != tt.want {
				t.Errorf("backendName() = %q, want %q", got, tt.want)
			}
		})
	}
}
