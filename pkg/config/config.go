// Package config holds the sizing and capacity constants of a chart.
//
// An [Info] value replaces the process-wide "score info" table of a desktop
// editor: it is created once per open document, threaded through every
// constructor that needs it, and never mutated afterwards.
//
// Values can be read from a TOML (or YAML) file whose keys override
// [Default]:
//
//	resolution = 192
//	lane_max_bar = 2.0
//
//	[lane_margin]
//	left = 4
//	right = 4
package config

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanebook/pkg/errors"
)

// Margin is a rectangle inset in pixels.
type Margin struct {
	Top    int `toml:"top" yaml:"top" json:"top"`
	Bottom int `toml:"bottom" yaml:"bottom" json:"bottom"`
	Left   int `toml:"left" yaml:"left" json:"left"`
	Right  int `toml:"right" yaml:"right" json:"right"`
}

// Info describes the tick resolution, lane capacity and pixel extents.
type Info struct {
	// Resolution is the number of ticks in one whole bar (4/4).
	Resolution int `toml:"resolution" yaml:"resolution" json:"resolution"`
	// LaneMaxBar is how many whole bars fit in one lane.
	LaneMaxBar float64 `toml:"lane_max_bar" yaml:"lane_max_bar" json:"lane_max_bar"`
	// Lanes is the number of note columns inside a measure.
	Lanes int `toml:"lanes" yaml:"lanes" json:"lanes"`
	// LaneWidth is the pixel width of one note column.
	LaneWidth float64 `toml:"lane_width" yaml:"lane_width" json:"lane_width"`
	// MaxBeatHeight is the pixel height of one tick.
	MaxBeatHeight float64 `toml:"max_beat_height" yaml:"max_beat_height" json:"max_beat_height"`
	// NoteHeight is the pixel height of a drawn note.
	NoteHeight float64 `toml:"note_height" yaml:"note_height" json:"note_height"`
	FontSize   float64 `toml:"font_size" yaml:"font_size" json:"font_size"`

	LaneMargin  Margin `toml:"lane_margin" yaml:"lane_margin" json:"lane_margin"`
	PanelMargin Margin `toml:"panel_margin" yaml:"panel_margin" json:"panel_margin"`
}

// Default returns the stock configuration: 192 ticks per bar, two bars per
// lane and sixteen note columns twelve pixels wide.
func Default() Info {
	return Info{
		Resolution:    192,
		LaneMaxBar:    2,
		Lanes:         16,
		LaneWidth:     12,
		MaxBeatHeight: 2,
		NoteHeight:    5,
		FontSize:      9,
		LaneMargin:    Margin{Top: 5, Bottom: 5, Left: 30, Right: 30},
		PanelMargin:   Margin{Top: 10, Bottom: 10, Left: 3, Right: 3},
	}
}

// CapacityTicks returns the lane capacity in ticks.
func (c Info) CapacityTicks() int {
	return int(math.Round(c.LaneMaxBar * float64(c.Resolution)))
}

// MeasureWidth is the pixel width of the note area of a measure.
func (c Info) MeasureWidth() float64 {
	return c.LaneWidth * float64(c.Lanes)
}

// LaneWidthTotal is the pixel width a lane occupies including its margins.
func (c Info) LaneWidthTotal() float64 {
	return c.MeasureWidth() + float64(c.LaneMargin.Left+c.LaneMargin.Right)
}

// LaneHeight is the pixel height of a full lane including its margins.
func (c Info) LaneHeight() float64 {
	return float64(c.CapacityTicks())*c.MaxBeatHeight + float64(c.LaneMargin.Top+c.LaneMargin.Bottom)
}

// LanePitch is the horizontal distance between the origins of two
// consecutive lanes on the panel.
func (c Info) LanePitch() float64 {
	return c.LaneWidthTotal() + float64(c.PanelMargin.Left+c.PanelMargin.Right)
}

// Validate checks that the configuration can drive the packing engine.
func (c Info) Validate() error {
	if c.Resolution <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "resolution must be positive, got %d", c.Resolution)
	}
	if c.LaneMaxBar < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "lane_max_bar must be at least one bar, got %g", c.LaneMaxBar)
	}
	exact := c.LaneMaxBar * float64(c.Resolution)
	if math.Abs(exact-math.Round(exact)) > 1e-9 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"lane_max_bar %g is not a whole number of ticks at resolution %d", c.LaneMaxBar, c.Resolution)
	}
	if c.Lanes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "lanes must be positive, got %d", c.Lanes)
	}
	if c.LaneWidth <= 0 || c.MaxBeatHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "lane_width and max_beat_height must be positive")
	}
	return nil
}

// Decode reads TOML from r on top of the defaults and validates the result.
func Decode(r io.Reader) (Info, error) {
	info := Default()
	if _, err := toml.NewDecoder(r).Decode(&info); err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := info.Validate(); err != nil {
		return Info{}, err
	}
	return info, nil
}

// DecodeYAML is [Decode] for YAML input. Unknown keys are rejected.
func DecodeYAML(r io.Reader) (Info, error) {
	info := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&info); err != nil && err != io.EOF {
		return Info{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := info.Validate(); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Load reads a configuration file: YAML for .yaml and .yml, TOML otherwise.
// An empty path yields [Default].
func Load(path string) (Info, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Info{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config %s", path)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return Decode(f)
	}
}
