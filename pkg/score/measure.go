package score

import (
	"fmt"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
)

// Range is an inclusive span [Inf, Sup] of 1-based beats inside a measure.
type Range struct {
	Inf, Sup int
}

// Size returns the number of beats covered by r.
func (r Range) Size() int { return r.Sup - r.Inf + 1 }

// Measure is one bar of a chart.
type Measure struct {
	numer, denom int
	info         config.Info

	index     int
	startTick int
	linkCount int
}

// NewMeasure creates a detached measure with time signature numer/denom.
//
// The numerator must be positive and the denominator a power of two that
// divides the tick resolution; otherwise an INVALID_SIGNATURE error is
// returned.
func NewMeasure(info config.Info, numer, denom int) (*Measure, error) {
	if err := ValidateSignature(info, numer, denom); err != nil {
		return nil, err
	}
	return &Measure{numer: numer, denom: denom, info: info, index: -1}, nil
}

// ValidateSignature checks a time signature against the tick resolution.
func ValidateSignature(info config.Info, numer, denom int) error {
	if numer <= 0 {
		return errors.New(errors.ErrCodeInvalidSignature, "numerator must be positive, got %d", numer)
	}
	if denom <= 0 || denom&(denom-1) != 0 {
		return errors.New(errors.ErrCodeInvalidSignature, "denominator must be a power of two, got %d", denom)
	}
	if info.Resolution%denom != 0 {
		return errors.New(errors.ErrCodeInvalidSignature,
			"denominator %d does not divide resolution %d", denom, info.Resolution)
	}
	return nil
}

func (m *Measure) Numer() int { return m.numer }
func (m *Measure) Denom() int { return m.denom }

// BarSize is the number of whole bars this measure spans.
func (m *Measure) BarSize() float64 { return float64(m.numer) / float64(m.denom) }

// Index is the position in the owning store, or -1 when detached.
func (m *Measure) Index() int { return m.index }

// StartTick is the tick at which this measure begins.
func (m *Measure) StartTick() int { return m.startTick }

// EndTick is the first tick after this measure.
func (m *Measure) EndTick() int { return m.startTick + m.Ticks() }

// Ticks is the length of the measure.
func (m *Measure) Ticks() int { return m.numer * m.TicksPerBeat() }

// TicksPerBeat is the length of one 1/denom beat.
func (m *Measure) TicksPerBeat() int { return m.info.Resolution / m.denom }

// LinkCount is the number of lane fragments referencing this measure.
func (m *Measure) LinkCount() int { return m.linkCount }

// AddLink records one more lane fragment referencing the measure.
func (m *Measure) AddLink() { m.linkCount++ }

// RemoveLink records that a lane fragment stopped referencing the measure.
func (m *Measure) RemoveLink() {
	if m.linkCount > 0 {
		m.linkCount--
	}
}

// Width is the pixel width of the note area.
func (m *Measure) Width() float64 { return m.info.MeasureWidth() }

// Height is the pixel height of the whole measure.
func (m *Measure) Height() float64 { return float64(m.Ticks()) * m.info.MaxBeatHeight }

// FullRange covers every beat of the measure.
func (m *Measure) FullRange() Range { return Range{Inf: 1, Sup: m.numer} }

// RangeTicks returns the length of r in ticks.
func (m *Measure) RangeTicks(r Range) int { return r.Size() * m.TicksPerBeat() }

// RangeStartTick returns the absolute tick at which r begins.
func (m *Measure) RangeStartTick(r Range) int {
	return m.startTick + (r.Inf-1)*m.TicksPerBeat()
}

func (m *Measure) String() string {
	return fmt.Sprintf("#%03d %d/%d", m.index+1, m.numer, m.denom)
}

// Paint draws the part r of the measure with its top-left corner at origin.
// Time flows upward: the first beat of r sits at the bottom edge.
func (m *Measure) Paint(s Surface, origin Point, r Range) {
	lw := m.info.LaneWidth
	beatHeight := float64(m.TicksPerBeat()) * m.info.MaxBeatHeight
	h := float64(r.Size()) * beatHeight
	right := origin.X + m.Width()

	for i := 0; i <= m.info.Lanes; i++ {
		c := ColorLaneMain
		if i%2 != 0 {
			c = ColorLaneSub
		}
		x := origin.X + float64(i)*lw
		s.Line(Point{x, origin.Y}, Point{x, origin.Y + h}, c, 1)
	}

	bottom := origin.Y + h
	if r.Inf == 1 {
		s.Line(Point{origin.X, bottom}, Point{right, bottom}, ColorBarStart, 1)
		label := fmt.Sprintf("%03d", m.index+1)
		s.Text(Point{origin.X - 2*m.info.FontSize - 6, bottom - 2}, label, m.info.FontSize, ColorText)
	} else {
		s.Line(Point{origin.X, bottom}, Point{right, bottom}, ColorLaneMain, 1)
	}

	for i := 0; i < r.Size(); i++ {
		y := origin.Y + float64(i)*beatHeight
		s.Line(Point{origin.X, y}, Point{right, y}, ColorLaneMain, 1)
	}
}
