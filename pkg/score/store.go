package score

import (
	"sort"

	"github.com/matzehuels/lanebook/pkg/errors"
)

// Store is the ordered, authoritative sequence of measures in a chart.
// It is not safe for concurrent use.
type Store struct {
	measures []*Measure
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of measures.
func (s *Store) Len() int { return len(s.measures) }

// All returns the measures in order. The slice is a copy.
func (s *Store) All() []*Measure {
	out := make([]*Measure, len(s.measures))
	copy(out, s.measures)
	return out
}

// At returns the measure at index i, or nil when i is out of range.
func (s *Store) At(i int) *Measure {
	if i < 0 || i >= len(s.measures) {
		return nil
	}
	return s.measures[i]
}

// Contains reports whether m is a live member of this store.
func (s *Store) Contains(m *Measure) bool {
	return m != nil && s.At(m.index) == m
}

// Next returns the measure after m, or nil when m is last or detached.
func (s *Store) Next(m *Measure) *Measure {
	if !s.Contains(m) {
		return nil
	}
	return s.At(m.index + 1)
}

// Prev returns the measure before m, or nil when m is first or detached.
func (s *Store) Prev(m *Measure) *Measure {
	if !s.Contains(m) {
		return nil
	}
	return s.At(m.index - 1)
}

// Last returns the final measure, or nil when the store is empty.
func (s *Store) Last() *Measure { return s.At(len(s.measures) - 1) }

// TotalTicks is the length of the whole chart.
func (s *Store) TotalTicks() int {
	if last := s.Last(); last != nil {
		return last.EndTick()
	}
	return 0
}

// MeasureAtTick returns the measure containing tick, or nil when tick is
// outside the chart.
func (s *Store) MeasureAtTick(tick int) *Measure {
	if tick < 0 {
		return nil
	}
	i := sort.Search(len(s.measures), func(i int) bool {
		return s.measures[i].EndTick() > tick
	})
	return s.At(i)
}

// Append adds measures to the tail.
func (s *Store) Append(measures ...*Measure) {
	s.measures = append(s.measures, measures...)
	s.refresh(len(s.measures) - len(measures))
}

// InsertRange splices measures in before index at. Every measure from at
// onward shifts by len(measures).
func (s *Store) InsertRange(at int, measures []*Measure) error {
	if at < 0 || at > len(s.measures) {
		return errors.New(errors.ErrCodeInvalidInput, "insert index %d out of range [0, %d]", at, len(s.measures))
	}
	s.measures = append(s.measures[:at], append(append([]*Measure(nil), measures...), s.measures[at:]...)...)
	s.refresh(at)
	return nil
}

// Delete removes count measures starting at index at. Removed measures are
// detached (index -1).
func (s *Store) Delete(at, count int) error {
	if at < 0 || count < 0 || at+count > len(s.measures) {
		return errors.New(errors.ErrCodeInvalidInput,
			"delete range [%d, %d) out of range [0, %d)", at, at+count, len(s.measures))
	}
	for _, m := range s.measures[at : at+count] {
		m.index = -1
		m.startTick = 0
	}
	s.measures = append(s.measures[:at], s.measures[at+count:]...)
	s.refresh(at)
	return nil
}

// refresh rewrites index and start tick from position from onward.
func (s *Store) refresh(from int) {
	if from < 0 {
		from = 0
	}
	tick := 0
	if prev := s.At(from - 1); prev != nil {
		tick = prev.EndTick()
	}
	for i := from; i < len(s.measures); i++ {
		m := s.measures[i]
		m.index = i
		m.startTick = tick
		tick += m.Ticks()
	}
}
