// Package pipeline turns chart scripts into rendered lane layouts.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Build: replay a chart script into a [session.Session] (measures, notes,
//     edits), or load the cached CBOR document of an earlier build
//  2. Render: produce the requested formats from the session (SVG, DOT,
//     Graphviz SVG, JSON, CBOR, PNG, PDF)
//
// Both stages cache through a [cache.Cache]. The CLI is the only caller today
// but nothing here depends on it.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	script, err := io.LoadScript("chart.toml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, script, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/session"
)

// Output formats.
const (
	FormatSVG      = "svg"
	FormatDOT      = "dot"
	FormatGraphSVG = "graph.svg"
	FormatJSON     = "json"
	FormatCBOR     = "cbor"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// ValidFormats lists every supported output format in rendering order.
var ValidFormats = []string{FormatSVG, FormatDOT, FormatGraphSVG, FormatJSON, FormatCBOR, FormatPNG, FormatPDF}

// Options configures one pipeline run.
type Options struct {
	// Config is the base configuration: the defaults or a --config file.
	// The script's [config] table is applied on top of it. A zero value
	// means config.Default().
	Config config.Info `json:"-"`
	// LaneMaxBar overrides the lane capacity after the script's own config.
	LaneMaxBar float64 `json:"lane_max_bar,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Refresh ignores cached entries (they are still rewritten).
	Refresh bool `json:"refresh,omitempty"`
	// Strict validates the lane layout after every measure edit.
	Strict bool `json:"strict,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a run.
type Result struct {
	Session   *session.Session
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats has timing and size information for a run.
type Stats struct {
	session.Stats
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	BuildHit  bool
	RenderHit bool // every artifact came from the cache
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == (config.Info{}) {
		o.Config = config.Default()
	}
	if o.LaneMaxBar < 0 {
		return fmt.Errorf("lane_max_bar must not be negative, got %g", o.LaneMaxBar)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = dedupe(o.Formats)
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must be positive, got %g", o.Scale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
