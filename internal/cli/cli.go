// Package cli implements the lanebook command-line interface.
//
// # Commands
//
//   - layout: build a chart script and print its lane table
//   - render: write SVG, DOT, Graphviz SVG, JSON, PNG or PDF outputs
//   - view: browse the lanes of a chart interactively
//   - cache: clear, prune or locate the artifact cache
//   - completion: generate shell completions
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in context.Context so helpers can log without extra parameters.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanebook/pkg/buildinfo"
	"github.com/matzehuels/lanebook/pkg/cache"
	"github.com/matzehuels/lanebook/pkg/config"
	chartio "github.com/matzehuels/lanebook/pkg/io"
	"github.com/matzehuels/lanebook/pkg/observability"
	"github.com/matzehuels/lanebook/pkg/pipeline"
)

// appName is used for directories and display.
const appName = "lanebook"

// Log levels exported for main.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Cache backends selectable with --cache-backend.
const (
	backendFile   = "file"
	backendSQLite = "sqlite"
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger

	configPath   string
	laneMaxBar   float64
	noCache      bool
	cacheBackend string
	redisAddr    string
	metricsFile  string

	registry *prometheus.Registry
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand returns the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "lanebook lays out rhythm-game charts in fixed-height lanes",
		Long:         `lanebook builds charts from TOML chart scripts, packs their measures into lanes of fixed capacity and renders the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "TOML file with layout settings (defaults are built in)")
	flags.Float64Var(&c.laneMaxBar, "lane-max-bar", 0, "lane capacity in bars, overrides config and script")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")
	flags.StringVar(&c.cacheBackend, "cache-backend", backendFile, "local cache storage: file or sqlite")
	flags.StringVar(&c.redisAddr, "redis-addr", os.Getenv("LANEBOOK_REDIS_ADDR"), "share the cache through Redis at host:port")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	_ = root.RegisterFlagCompletionFunc("cache-backend", cobra.FixedCompletions(
		[]string{backendFile, backendSQLite}, cobra.ShellCompDirectiveNoFileComp))

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	return root
}

// newRunner returns a pipeline runner using the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(ch, keyer, loggerFromContext(ctx)), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if c.redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.redisAddr, Prefix: appName + ":"})
	}
	dir, err := cacheDir()
	if err != nil {
		loggerFromContext(ctx).Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	switch c.cacheBackend {
	case backendSQLite:
		return cache.NewSQLiteCache(filepath.Join(dir, "cache.db"))
	case backendFile, "":
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be %s or %s)", c.cacheBackend, backendFile, backendSQLite)
	}
}

// startMetrics installs Prometheus-backed hooks when --metrics-file is set.
func (c *CLI) startMetrics() {
	if c.metricsFile == "" || c.registry != nil {
		return
	}
	c.registry = prometheus.NewRegistry()
	observability.NewMetrics(c.registry).Install()
}

// flushMetrics writes the collected metrics in the text exposition format.
func (c *CLI) flushMetrics() error {
	if c.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// pipelineOptions converts the persistent flags into pipeline options.
func (c *CLI) pipelineOptions(ctx context.Context) (pipeline.Options, error) {
	base, err := config.Load(c.configPath)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Config:     base,
		LaneMaxBar: c.laneMaxBar,
		Logger:     loggerFromContext(ctx),
	}, nil
}

// prepare loads the script at path and returns a runner ready to build it.
func (c *CLI) prepare(ctx context.Context, path string) (*pipeline.Runner, *chartio.Script, pipeline.Options, error) {
	opts, err := c.pipelineOptions(ctx)
	if err != nil {
		return nil, nil, opts, err
	}
	script, err := chartio.LoadScript(path)
	if err != nil {
		return nil, nil, opts, err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, opts, err
	}
	return runner, script, opts, nil
}

// cacheDir follows XDG: $XDG_CACHE_HOME/lanebook or ~/.cache/lanebook.
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats splits a comma-separated format list.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
