package session

import (
	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/notes"
	"github.com/matzehuels/lanebook/pkg/score"
)

// Status is the editor state of one session: what a click places and what
// is visible.
type Status struct {
	NoteKind notes.Kind
	NoteSize int
	// BeatDiv is the placement grid in divisions of a whole bar.
	BeatDiv int
	// CurrentValue is the value given to new BPM and HighSpeed notes.
	CurrentValue float64
	Visibility   notes.Visibility
	Viewport     score.Rect
}

// DefaultStatus places size-4 taps on a 1/16 grid with every category
// visible and a viewport of four lanes.
func DefaultStatus(info config.Info) Status {
	return Status{
		NoteKind:     notes.Tap,
		NoteSize:     4,
		BeatDiv:      16,
		CurrentValue: notes.InitialBPM,
		Visibility:   notes.AllVisible(),
		Viewport: score.Rect{
			W: 4 * info.LanePitch(),
			H: info.LaneHeight() + float64(info.PanelMargin.Top+info.PanelMargin.Bottom),
		},
	}
}

// Validate checks the status against the configuration.
func (st Status) Validate(info config.Info) error {
	if !st.NoteKind.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid note kind %d", int(st.NoteKind))
	}
	if st.NoteSize < 1 || st.NoteSize > info.Lanes {
		return errors.New(errors.ErrCodeInvalidInput, "note size must be in [1, %d], got %d", info.Lanes, st.NoteSize)
	}
	if st.BeatDiv <= 0 || info.Resolution%st.BeatDiv != 0 {
		return errors.New(errors.ErrCodeInvalidInput, "beat division %d does not divide resolution %d", st.BeatDiv, info.Resolution)
	}
	return nil
}

// Snap rounds tick down to the placement grid.
func (st Status) Snap(info config.Info, tick int) int {
	grid := info.Resolution / st.BeatDiv
	return tick - tick%grid
}

// Status returns the current editor state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus replaces the editor state after validating it.
func (s *Session) SetStatus(st Status) error {
	if err := st.Validate(s.info); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	return nil
}

// VisibleLanes returns the indices of lanes intersecting the status
// viewport.
func (s *Session) VisibleLanes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, l := range s.lanes.Lanes() {
		if l.IsDrawable(s.status.Viewport) {
			out = append(out, l.Index())
		}
	}
	return out
}

// PlaceNote creates a note of the status kind and size at panel point p,
// snapped to the status grid. Only short and attribute kinds can be placed
// this way; the others need a parent or further steps.
func (s *Session) PlaceNote(p score.Point) (*notes.Note, error) {
	var placed *notes.Note
	err := s.edit("place-note", false, func() error {
		st := s.status
		switch st.NoteKind.Category() {
		case notes.Short, notes.Attribute:
		case notes.Hold, notes.Slide, notes.AirHold, notes.Air:
			return errors.New(errors.ErrCodeUnsupported, "%s cannot be placed with a single click", st.NoteKind)
		default:
			panic("unreachable")
		}

		var target *laneHit
		for _, l := range s.lanes.Lanes() {
			if l.HitRect().Contains(p) {
				origin := l.PointAt(l.StartTick())
				target = &laneHit{start: l.StartTick(), end: l.EndTick(), tick: l.TickAt(p.Y), left: origin.X}
				break
			}
		}
		if target == nil {
			return errors.New(errors.ErrCodeNotFound, "no lane at (%g, %g)", p.X, p.Y)
		}
		tick := st.Snap(s.info, target.tick)
		if tick < target.start || tick >= target.end {
			return errors.New(errors.ErrCodeNotFound, "no measure at (%g, %g)", p.X, p.Y)
		}
		column := int((p.X - target.left) / s.info.LaneWidth)
		column = max(0, min(column, s.info.Lanes-st.NoteSize))

		n := &notes.Note{
			Kind:     st.NoteKind,
			Position: notes.Position{Lane: column, Tick: tick},
			Size:     st.NoteSize,
		}
		if st.NoteKind.Category() == notes.Attribute {
			n.Value = st.CurrentValue
		}
		if err := s.notes.Add(n); err != nil {
			return err
		}
		s.notes.UpdateNoteLocation(s.lanes)
		placed = n
		return nil
	})
	return placed, err
}

type laneHit struct {
	start, end, tick int
	left             float64
}
