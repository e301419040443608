package notes

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/lane"
	"github.com/matzehuels/lanebook/pkg/score"
)

// InitialBPM is the tempo marker every new book starts with.
const InitialBPM = 120

// Book holds every note of a chart, grouped by category.
// It is not safe for concurrent use.
type Book struct {
	info config.Info

	shorts     []*Note
	holds      []*Long
	slides     []*Long
	airHolds   []*Long
	airs       []*Note
	attributes []*Note
}

var _ lane.Listener = (*Book)(nil)
var _ lane.NoteRelocator = (*Book)(nil)

// New creates a book holding a single BPM marker at tick 0.
func New(info config.Info) *Book {
	b := &Book{info: info}
	b.attributes = append(b.attributes, &Note{
		ID:        uuid.New(),
		Kind:      BPM,
		Size:      info.Lanes,
		Value:     InitialBPM,
		LaneIndex: -1,
	})
	return b
}

// Empty creates a book without the initial BPM marker, for loading saved
// documents.
func Empty(info config.Info) *Book {
	return &Book{info: info}
}

// Add places a short, air or attribute note. Airs copy the position and
// size of their parent. A zero ID is replaced with a fresh one.
func (b *Book) Add(n *Note) error {
	if n == nil || !n.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid note")
	}
	switch n.Kind.Category() {
	case Short:
		if err := b.checkPlacement(n); err != nil {
			return err
		}
		b.assignID(n)
		b.shorts = append(b.shorts, n)
	case Air:
		parent, err := b.airableParent(n)
		if err != nil {
			return err
		}
		if b.AirOf(parent.ID) != nil {
			return errors.New(errors.ErrCodeInvalidInput, "note %s already has an air", parent.ID)
		}
		n.Position, n.Size = parent.Position, parent.Size
		b.assignID(n)
		b.airs = append(b.airs, n)
	case Attribute:
		if n.Position.Tick < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "tick must not be negative, got %d", n.Position.Tick)
		}
		if n.Kind == BPM && n.Value <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "bpm must be positive, got %g", n.Value)
		}
		n.Position.Lane, n.Size = 0, b.info.Lanes
		b.assignID(n)
		b.attributes = append(b.attributes, n)
	case Hold, Slide, AirHold:
		return errors.New(errors.ErrCodeInvalidInput, "%s is a step of a long note; use AddLong", n.Kind)
	default:
		panic("unreachable")
	}
	n.LaneIndex = -1
	return nil
}

// AddLong places a hold, slide or air-hold.
//
// A hold is HoldBegin then HoldEnd. A slide is SlideBegin, any number of
// SlideTap, SlideRelay or SlideCurve steps, then SlideEnd. An air-hold is an
// AirHoldBegin attached to an airable note followed by at least one
// AirAction. Step ticks must not decrease and the last step must come after
// the first.
func (b *Book) AddLong(l *Long) error {
	if l == nil || len(l.Steps) < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "a long note needs at least two steps")
	}
	for _, s := range l.Steps {
		if s == nil || !s.Kind.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "invalid step")
		}
	}
	begin, end := l.Begin(), l.End()
	for i, s := range l.Steps {
		if i > 0 && s.Position.Tick < l.Steps[i-1].Position.Tick {
			return errors.New(errors.ErrCodeInvalidInput, "steps of a long note must be in tick order")
		}
	}
	if end.Position.Tick <= begin.Position.Tick {
		return errors.New(errors.ErrCodeInvalidInput, "a long note must end after it begins")
	}

	var target *[]*Long
	switch begin.Kind.Category() {
	case Hold:
		if len(l.Steps) != 2 || begin.Kind != HoldBegin || end.Kind != HoldEnd {
			return errors.New(errors.ErrCodeInvalidInput, "a hold is exactly hold-begin and hold-end")
		}
		target = &b.holds
	case Slide:
		if begin.Kind != SlideBegin || end.Kind != SlideEnd {
			return errors.New(errors.ErrCodeInvalidInput, "a slide starts with slide-begin and ends with slide-end")
		}
		for _, s := range l.Steps[1 : len(l.Steps)-1] {
			if s.Kind != SlideTap && s.Kind != SlideRelay && s.Kind != SlideCurve {
				return errors.New(errors.ErrCodeInvalidInput, "%s cannot be a slide step", s.Kind)
			}
		}
		target = &b.slides
	case AirHold:
		if begin.Kind != AirHoldBegin {
			return errors.New(errors.ErrCodeInvalidInput, "an air-hold starts with airhold-begin")
		}
		for _, s := range l.Steps[1:] {
			if s.Kind != AirAction {
				return errors.New(errors.ErrCodeInvalidInput, "%s cannot be an air-hold step", s.Kind)
			}
		}
		parent, err := b.airableParent(begin)
		if err != nil {
			return err
		}
		if b.AirHoldOf(parent.ID) != nil {
			return errors.New(errors.ErrCodeInvalidInput, "note %s already has an air-hold", parent.ID)
		}
		if parent.Position.Tick != begin.Position.Tick {
			return errors.New(errors.ErrCodeInvalidInput, "an air-hold must begin on its parent's tick")
		}
		begin.Position, begin.Size = parent.Position, parent.Size
		target = &b.airHolds
	case Short, Air, Attribute:
		return errors.New(errors.ErrCodeInvalidInput, "%s cannot begin a long note", begin.Kind)
	default:
		panic("unreachable")
	}

	for _, s := range l.Steps {
		if err := b.checkPlacement(s); err != nil {
			return err
		}
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	for _, s := range l.Steps {
		b.assignID(s)
		s.LaneIndex = -1
	}
	*target = append(*target, l)
	return nil
}

// Delete removes the note with the given ID and everything that depends on
// it:
//   - a hold or slide endpoint takes the whole long note with it, together
//     with the air and air-hold attached to its end;
//   - a slide step is removed alone;
//   - removing the last air action removes its air-hold, and removing an
//     air-hold begin removes the whole air-hold;
//   - an airable short note takes its air and air-hold with it.
func (b *Book) Delete(id uuid.UUID) error {
	n, owner := b.find(id)
	if n == nil {
		return errors.New(errors.ErrCodeNoteNotFound, "note %s not found", id)
	}
	switch n.Kind.Category() {
	case Short:
		b.detachAirs(n.ID)
		b.shorts = removeNote(b.shorts, id)
	case Air:
		b.airs = removeNote(b.airs, id)
	case Attribute:
		b.attributes = removeNote(b.attributes, id)
	case Hold:
		b.removeLong(owner)
	case Slide:
		if n.Kind == SlideBegin || n.Kind == SlideEnd {
			b.removeLong(owner)
		} else {
			owner.Steps = removeNote(owner.Steps, id)
		}
	case AirHold:
		if n.Kind == AirHoldBegin {
			b.removeLong(owner)
			break
		}
		owner.Steps = removeNote(owner.Steps, id)
		if len(owner.Steps) < 2 {
			b.removeLong(owner)
		}
	default:
		panic("unreachable")
	}
	return nil
}

// DeleteLong removes a whole long note by its ID, with the air and air-hold
// attached to its end.
func (b *Book) DeleteLong(id uuid.UUID) error {
	for _, l := range b.longs() {
		if l.ID == id {
			b.removeLong(l)
			return nil
		}
	}
	return errors.New(errors.ErrCodeNoteNotFound, "long note %s not found", id)
}

func (b *Book) removeLong(l *Long) {
	pred := func(x *Long) bool { return x == l }
	switch l.Category() {
	case Hold:
		b.holds = slices.DeleteFunc(b.holds, pred)
	case Slide:
		b.slides = slices.DeleteFunc(b.slides, pred)
	case AirHold:
		b.airHolds = slices.DeleteFunc(b.airHolds, pred)
	case Short, Air, Attribute:
	default:
		panic("unreachable")
	}
	if end := l.End(); end.Kind.Airable() {
		b.detachAirs(end.ID)
	}
}

func (b *Book) detachAirs(parent uuid.UUID) {
	b.airs = slices.DeleteFunc(b.airs, func(n *Note) bool { return n.Parent == parent })
	b.airHolds = slices.DeleteFunc(b.airHolds, func(l *Long) bool { return l.Begin().Parent == parent })
}

// Get returns the note with the given ID, steps of long notes included.
func (b *Book) Get(id uuid.UUID) (*Note, bool) {
	n, _ := b.find(id)
	return n, n != nil
}

// LongOf returns the long note owning the step with the given ID.
func (b *Book) LongOf(id uuid.UUID) (*Long, bool) {
	_, owner := b.find(id)
	return owner, owner != nil
}

// AirOf returns the air attached to the airable note, or nil.
func (b *Book) AirOf(parent uuid.UUID) *Note {
	for _, n := range b.airs {
		if n.Parent == parent {
			return n
		}
	}
	return nil
}

// AirHoldOf returns the air-hold attached to the airable note, or nil.
func (b *Book) AirHoldOf(parent uuid.UUID) *Long {
	for _, l := range b.airHolds {
		if l.Begin().Parent == parent {
			return l
		}
	}
	return nil
}

// RelocateNoteTickAfterScoreTick adds deltaTick to every note, step or marker
// at or after scoreTick.
func (b *Book) RelocateNoteTickAfterScoreTick(scoreTick, deltaTick int) {
	b.each(func(n *Note) {
		if n.Position.Tick >= scoreTick {
			n.Position.Tick += deltaTick
		}
	})
}

// NotesInTickRange returns the notes with start <= tick <= end in category
// order.
func (b *Book) NotesInTickRange(start, end int) []*Note {
	var out []*Note
	b.each(func(n *Note) {
		if start <= n.Position.Tick && n.Position.Tick <= end {
			out = append(out, n)
		}
	})
	return out
}

// DeleteInTickRange deletes every note with start <= tick < end, cascading
// like Delete. The BPM marker at tick 0 is the chart's starting tempo and is
// kept. It returns how many notes were deleted directly.
func (b *Book) DeleteInTickRange(start, end int) int {
	if end <= start {
		return 0
	}
	deleted := 0
	for _, n := range b.NotesInTickRange(start, end-1) {
		if n.Kind == BPM && n.Position.Tick == 0 {
			continue
		}
		if _, ok := b.Get(n.ID); !ok {
			continue
		}
		if err := b.Delete(n.ID); err == nil {
			deleted++
		}
	}
	return deleted
}

// BPMAt returns the tempo in effect at tick.
func (b *Book) BPMAt(tick int) float64 {
	bpm, at := float64(InitialBPM), -1
	for _, n := range b.attributes {
		if n.Kind == BPM && n.Position.Tick <= tick && n.Position.Tick >= at {
			bpm, at = n.Value, n.Position.Tick
		}
	}
	return bpm
}

// UpdateNoteLocation recomputes the panel location of every note from the
// lane layout. Notes outside the laid-out chart get LaneIndex -1.
func (b *Book) UpdateNoteLocation(lb *lane.Book) {
	b.each(func(n *Note) {
		l, p, ok := lb.Locate(n.Position.Tick)
		if !ok {
			n.LaneIndex, n.Location = -1, score.Point{}
			return
		}
		n.LaneIndex = l.Index()
		n.Location = p.Add(float64(n.Position.Lane)*b.info.LaneWidth, 0)
	})
}

// Len counts every note, steps of long notes included.
func (b *Book) Len() int {
	n := 0
	b.each(func(*Note) { n++ })
	return n
}

// Count returns the number of entries in category c. Long notes count once.
func (b *Book) Count(c Category) int {
	switch c {
	case Short:
		return len(b.shorts)
	case Hold:
		return len(b.holds)
	case Slide:
		return len(b.slides)
	case AirHold:
		return len(b.airHolds)
	case Air:
		return len(b.airs)
	case Attribute:
		return len(b.attributes)
	default:
		panic("unreachable")
	}
}

func (b *Book) Shorts() []*Note     { return slices.Clone(b.shorts) }
func (b *Book) Airs() []*Note       { return slices.Clone(b.airs) }
func (b *Book) Attributes() []*Note { return slices.Clone(b.attributes) }
func (b *Book) Holds() []*Long      { return slices.Clone(b.holds) }
func (b *Book) Slides() []*Long     { return slices.Clone(b.slides) }
func (b *Book) AirHolds() []*Long   { return slices.Clone(b.airHolds) }

// each visits every note in storage order.
func (b *Book) each(fn func(*Note)) {
	for _, n := range b.shorts {
		fn(n)
	}
	for _, l := range b.longs() {
		for _, s := range l.Steps {
			fn(s)
		}
	}
	for _, n := range b.airs {
		fn(n)
	}
	for _, n := range b.attributes {
		fn(n)
	}
}

func (b *Book) longs() []*Long {
	out := make([]*Long, 0, len(b.holds)+len(b.slides)+len(b.airHolds))
	out = append(out, b.holds...)
	out = append(out, b.slides...)
	return append(out, b.airHolds...)
}

func (b *Book) find(id uuid.UUID) (*Note, *Long) {
	for _, list := range [][]*Note{b.shorts, b.airs, b.attributes} {
		for _, n := range list {
			if n.ID == id {
				return n, nil
			}
		}
	}
	for _, l := range b.longs() {
		if s := l.Step(id); s != nil {
			return s, l
		}
	}
	return nil, nil
}

func (b *Book) airableParent(n *Note) (*Note, error) {
	if n.Parent == uuid.Nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s needs a parent note", n.Kind)
	}
	parent, _ := b.find(n.Parent)
	if parent == nil {
		return nil, errors.New(errors.ErrCodeNoteNotFound, "parent note %s not found", n.Parent)
	}
	if !parent.Kind.Airable() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s cannot carry an air", parent.Kind)
	}
	return parent, nil
}

func (b *Book) checkPlacement(n *Note) error {
	if n.Position.Tick < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tick must not be negative, got %d", n.Position.Tick)
	}
	if n.Size < 1 || n.Position.Lane < 0 || n.Position.Lane+n.Size > b.info.Lanes {
		return errors.New(errors.ErrCodeInvalidInput,
			"note at column %d with size %d does not fit %d columns", n.Position.Lane, n.Size, b.info.Lanes)
	}
	return nil
}

func (b *Book) assignID(n *Note) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
}

func removeNote(list []*Note, id uuid.UUID) []*Note {
	return slices.DeleteFunc(list, func(n *Note) bool { return n.ID == id })
}
