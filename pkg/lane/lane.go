package lane

import (
	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/score"
)

// Entry is one fragment of a measure placed in a lane.
type Entry struct {
	Measure *score.Measure
	Range   score.Range
}

// Ticks returns the length of the fragment.
func (e Entry) Ticks() int { return e.Measure.RangeTicks(e.Range) }

// StartTick returns the absolute tick at which the fragment begins.
func (e Entry) StartTick() int { return e.Measure.RangeStartTick(e.Range) }

// Lane is an ordered run of measure fragments.
type Lane struct {
	info    config.Info
	entries []Entry
	index   int
}

func newLane(info config.Info) *Lane {
	return &Lane{info: info, index: -1}
}

// AddMeasure appends m to the lane. Without a range the whole measure is
// added. Capacity is not enforced here; the book only calls this when the
// fragment fits.
func (l *Lane) AddMeasure(m *score.Measure, r ...score.Range) {
	rng := m.FullRange()
	if len(r) > 0 {
		rng = r[0]
	}
	l.entries = append(l.entries, Entry{Measure: m, Range: rng})
	m.AddLink()
}

// DeleteMeasure removes the first fragment of m. It reports whether one was
// found.
func (l *Lane) DeleteMeasure(m *score.Measure) bool {
	for i, e := range l.entries {
		if e.Measure == m {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			m.RemoveLink()
			return true
		}
	}
	return false
}

// popFirst and push move fragments between lanes without touching link counts.
func (l *Lane) popFirst() Entry {
	e := l.entries[0]
	l.entries = l.entries[1:]
	return e
}

func (l *Lane) push(e Entry) { l.entries = append(l.entries, e) }

// Index is the lane position inside its book, or -1 when detached.
func (l *Lane) Index() int { return l.index }

// Len returns the number of fragments.
func (l *Lane) Len() int { return len(l.entries) }

func (l *Lane) Empty() bool { return len(l.entries) == 0 }

// Entries returns a copy of the fragments in order.
func (l *Lane) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FirstEntry returns the first fragment. It panics on an empty lane; the
// book never keeps empty lanes.
func (l *Lane) FirstEntry() Entry { return l.entries[0] }

func (l *Lane) FirstMeasure() *score.Measure {
	if l.Empty() {
		return nil
	}
	return l.entries[0].Measure
}

func (l *Lane) FirstRange() score.Range {
	if l.Empty() {
		return score.Range{}
	}
	return l.entries[0].Range
}

func (l *Lane) lastEntry() Entry { return l.entries[len(l.entries)-1] }

// Contains reports whether any fragment of m is in the lane.
func (l *Lane) Contains(m *score.Measure) bool {
	for _, e := range l.entries {
		if e.Measure == m {
			return true
		}
	}
	return false
}

// Occupied is the sum of fragment lengths in ticks.
func (l *Lane) Occupied() int {
	n := 0
	for _, e := range l.entries {
		n += e.Ticks()
	}
	return n
}

// Capacity is the maximum occupied length in ticks.
func (l *Lane) Capacity() int { return l.info.CapacityTicks() }

// BarSize is the occupied length in whole bars.
func (l *Lane) BarSize() float64 {
	return float64(l.Occupied()) / float64(l.info.Resolution)
}

// StartTick is the tick of the first fragment.
func (l *Lane) StartTick() int {
	if l.Empty() {
		return 0
	}
	return l.entries[0].StartTick()
}

// EndTick is the first tick after the last fragment.
func (l *Lane) EndTick() int {
	if l.Empty() {
		return 0
	}
	last := l.lastEntry()
	return last.StartTick() + last.Ticks()
}

// ContainsTick reports whether tick falls inside the lane.
func (l *Lane) ContainsTick(tick int) bool {
	return !l.Empty() && l.StartTick() <= tick && tick < l.EndTick()
}

// HitRect is the panel area of the lane including its margins.
func (l *Lane) HitRect() score.Rect {
	return score.Rect{
		X: float64(l.info.PanelMargin.Left) + float64(l.index)*l.info.LanePitch(),
		Y: float64(l.info.PanelMargin.Top),
		W: l.info.LaneWidthTotal(),
		H: l.info.LaneHeight(),
	}
}

// IsDrawable reports whether the lane intersects viewport.
func (l *Lane) IsDrawable(viewport score.Rect) bool {
	return l.HitRect().Intersects(viewport)
}

// noteOrigin is the bottom-left corner of the note area.
func (l *Lane) noteOrigin() score.Point {
	r := l.HitRect()
	return score.Point{
		X: r.X + float64(l.info.LaneMargin.Left),
		Y: r.Y + r.H - float64(l.info.LaneMargin.Bottom),
	}
}

// PointAt returns the panel position of tick on the leftmost note column.
// Ticks grow upward from the bottom of the note area.
func (l *Lane) PointAt(tick int) score.Point {
	o := l.noteOrigin()
	return o.Add(0, -float64(tick-l.StartTick())*l.info.MaxBeatHeight)
}

// TickAt is the inverse of PointAt for the vertical axis.
func (l *Lane) TickAt(y float64) int {
	o := l.noteOrigin()
	return l.StartTick() + int((o.Y-y)/l.info.MaxBeatHeight)
}

// Paint draws the lane with the top-left corner of its hit rectangle at
// origin: a black note area, then every fragment stacked from the bottom.
func (l *Lane) Paint(s score.Surface, origin score.Point) {
	left := origin.X + float64(l.info.LaneMargin.Left)
	top := origin.Y + float64(l.info.LaneMargin.Top)
	h := float64(l.Capacity()) * l.info.MaxBeatHeight
	s.Rect(score.Rect{X: left, Y: top, W: l.info.MeasureWidth(), H: h}, score.ColorBackground)

	y := top + h
	for _, e := range l.entries {
		fh := float64(e.Ticks()) * l.info.MaxBeatHeight
		y -= fh
		e.Measure.Paint(s, score.Point{X: left, Y: y}, e.Range)
	}
}
