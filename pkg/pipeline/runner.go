package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanebook/pkg/cache"
	"github.com/matzehuels/lanebook/pkg/config"
	chartio "github.com/matzehuels/lanebook/pkg/io"
	"github.com/matzehuels/lanebook/pkg/observability"
	"github.com/matzehuels/lanebook/pkg/session"
)

// Runner executes the pipeline with caching. It holds no per-run state and
// may be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. A nil cache disables caching and a nil keyer
// selects the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute builds the script and renders every requested format.
func (r *Runner) Execute(ctx context.Context, script *chartio.Script, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	start := time.Now()
	sess, hit, err := r.BuildWithCacheInfo(ctx, script, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Session = sess
	result.Stats.Stats = sess.Stats()
	result.Stats.BuildTime = time.Since(start)
	result.CacheInfo.BuildHit = hit

	r.Logger.Info("built chart",
		"measures", result.Stats.Measures,
		"lanes", result.Stats.Lanes,
		"notes", result.Stats.Notes,
		"cached", hit,
		"duration", result.Stats.BuildTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, script, sess, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// ResolveConfig applies, in order, the script's [config] table and the
// LaneMaxBar override to opts.Config.
func ResolveConfig(script *chartio.Script, opts Options) (config.Info, error) {
	base := opts.Config
	if base == (config.Info{}) {
		base = config.Default()
	}
	info, err := script.ApplyConfig(base)
	if err != nil {
		return config.Info{}, err
	}
	if opts.LaneMaxBar > 0 {
		info.LaneMaxBar = opts.LaneMaxBar
		if err := info.Validate(); err != nil {
			return config.Info{}, err
		}
	}
	return info, nil
}

// BuildWithCacheInfo builds a session from script and reports whether the
// document came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, script *chartio.Script, opts Options) (*session.Session, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	info, err := ResolveConfig(script, opts)
	if err != nil {
		return nil, false, err
	}
	sessOpts := []session.Option{session.WithLogger(opts.Logger), session.WithStrict(opts.Strict)}
	key := r.Keyer.DocumentKey(cache.Hash(script.Source), configHash(info))

	if !opts.Refresh {
		if data, ok := r.get(ctx, keyTypeDocument, key); ok {
			sess, err := chartio.ReadCBOR(bytes.NewReader(data), sessOpts...)
			if err == nil {
				return sess, true, nil
			}
			opts.Logger.Warn("discarding cached document", "err", err)
		}
	}

	observability.Pipeline().OnBuildStart(ctx, script.Name)
	start := time.Now()
	sess, err := build(script, info, sessOpts)
	measures := 0
	if sess != nil {
		measures = sess.Stats().Measures
	}
	observability.Pipeline().OnBuildComplete(ctx, script.Name, measures, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := chartio.WriteCBOR(sess, &buf); err == nil {
		r.set(ctx, keyTypeDocument, key, buf.Bytes())
	}
	return sess, false, nil
}

// Build is BuildWithCacheInfo without the cache flag.
func (r *Runner) Build(ctx context.Context, script *chartio.Script, opts Options) (*session.Session, error) {
	sess, _, err := r.BuildWithCacheInfo(ctx, script, opts)
	return sess, err
}

func build(script *chartio.Script, info config.Info, opts []session.Option) (*session.Session, error) {
	sess, err := session.New(info, opts...)
	if err != nil {
		return nil, err
	}
	if err := script.Apply(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RenderWithCacheInfo renders every requested format of sess and reports
// whether all of them came from the cache. Cache keys derive from the
// script source, so script must be the one sess was built from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, script *chartio.Script, sess *session.Session, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	scriptHash := cache.Hash(script.Source)
	keyOpts := func(format string) cache.ArtifactKeyOpts {
		return cache.ArtifactKeyOpts{
			Format:     format,
			ConfigHash: configHash(sess.Info()),
			Detailed:   opts.Detailed && (format == FormatDOT || format == FormatGraphSVG),
			Scale:      scaleFor(format, opts.Scale),
		}
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, f := range opts.Formats {
			data, ok := r.get(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(scriptHash, keyOpts(f)))
			if !ok {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	artifacts, err := Render(ctx, sess, opts)
	if err != nil {
		return nil, false, err
	}
	for f, data := range artifacts {
		r.set(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(scriptHash, keyOpts(f)), data)
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Key types reported to the cache hooks.
const (
	keyTypeDocument = "document"
	keyTypeArtifact = "artifact"
)

func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		ok = false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, ok
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func configHash(info config.Info) string {
	data, _ := json.Marshal(info)
	return cache.Hash(data)
}

func scaleFor(format string, scale float64) float64 {
	if format == FormatPNG {
		return scale
	}
	return 0
}
