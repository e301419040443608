package lane

import (
	"sort"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/score"
)

// Book is the ordered sequence of lanes of one chart.
// It is not safe for concurrent use; see the session package.
type Book struct {
	info      config.Info
	lanes     []*Lane
	listeners []Listener
}

// NewBook creates an empty book. Listeners fire in the order given.
func NewBook(info config.Info, listeners ...Listener) *Book {
	return &Book{info: info, listeners: listeners}
}

// Subscribe registers another listener after the existing ones.
func (b *Book) Subscribe(l Listener) { b.listeners = append(b.listeners, l) }

func (b *Book) Info() config.Info { return b.info }

func (b *Book) Len() int { return len(b.lanes) }

// Lanes returns the lanes in order. The slice is a copy.
func (b *Book) Lanes() []*Lane {
	out := make([]*Lane, len(b.lanes))
	copy(out, b.lanes)
	return out
}

// At returns the lane at index i, or nil when out of range.
func (b *Book) At(i int) *Lane {
	if i < 0 || i >= len(b.lanes) {
		return nil
	}
	return b.lanes[i]
}

// Next returns the lane after l, or nil.
func (b *Book) Next(l *Lane) *Lane {
	if l == nil || b.At(l.index) != l {
		return nil
	}
	return b.At(l.index + 1)
}

// LaneOf returns the first lane holding a fragment of m, or nil.
func (b *Book) LaneOf(m *score.Measure) *Lane {
	for _, l := range b.lanes {
		if l.Contains(m) {
			return l
		}
	}
	return nil
}

// Locate returns the lane showing tick and the panel position of that tick
// on the lane's leftmost column. The end of the chart maps to the top of the
// last lane.
func (b *Book) Locate(tick int) (*Lane, score.Point, bool) {
	if len(b.lanes) == 0 || tick < 0 {
		return nil, score.Point{}, false
	}
	i := sort.Search(len(b.lanes), func(i int) bool { return b.lanes[i].EndTick() > tick })
	if i == len(b.lanes) {
		last := b.lanes[i-1]
		if tick != last.EndTick() {
			return nil, score.Point{}, false
		}
		return last, last.PointAt(tick), true
	}
	l := b.lanes[i]
	return l, l.PointAt(tick), true
}

// SetScore appends count measures of numer/denom to store and packs them
// into the tail of the book.
func (b *Book) SetScore(store *score.Store, numer, denom, count int) error {
	measures, err := b.newMeasures(numer, denom, count)
	if err != nil {
		return err
	}
	store.Append(measures...)
	for _, m := range measures {
		b.lanes = b.place(b.lanes, m)
	}
	b.reindex()
	b.notify()
	return nil
}

// InsertScoreForward inserts count measures of numer/denom after the given
// measure. Inserting after the last measure appends.
func (b *Book) InsertScoreForward(notes NoteRelocator, store *score.Store, after *score.Measure, numer, denom, count int) error {
	if !store.Contains(after) {
		return errors.New(errors.ErrCodeMeasureNotFound, "measure %v is not in the store", after)
	}
	next := store.Next(after)
	if next == nil {
		return b.SetScore(store, numer, denom, count)
	}
	return b.InsertScoreBackward(notes, store, next, numer, denom, count)
}

// InsertScoreBackward inserts count measures of numer/denom in front of the
// given measure. Notes at or after its old start tick move back by the
// length of the inserted run. notes may be nil.
func (b *Book) InsertScoreBackward(notes NoteRelocator, store *score.Store, before *score.Measure, numer, denom, count int) error {
	if !store.Contains(before) {
		return errors.New(errors.ErrCodeMeasureNotFound, "measure %v is not in the store", before)
	}
	if b.LaneOf(before) == nil {
		return errors.New(errors.ErrCodeMeasureNotFound, "measure %v is not in any lane", before)
	}
	measures, err := b.newMeasures(numer, denom, count)
	if err != nil {
		return err
	}

	cutover := before.StartTick()
	if err := store.InsertRange(before.Index(), measures); err != nil {
		return err
	}

	var fresh []*Lane
	for _, m := range measures {
		fresh = b.place(fresh, m)
	}

	if err := b.divide(before); err != nil {
		return err
	}
	at := b.LaneOf(before).index
	b.lanes = append(b.lanes[:at], append(fresh, b.lanes[at:]...)...)
	b.reindex()

	if notes != nil {
		notes.RelocateNoteTickAfterScoreTick(cutover, count*b.info.Resolution*numer/denom)
	}

	b.fill(0)
	b.notify()
	return nil
}

// DivideLane splits the lane holding m so that m starts a lane, then
// compacts the lanes behind the split. It does nothing when m already starts
// its lane.
func (b *Book) DivideLane(m *score.Measure) error {
	if err := b.divide(m); err != nil {
		return err
	}
	b.notify()
	return nil
}

func (b *Book) divide(m *score.Measure) error {
	l := b.LaneOf(m)
	if l == nil {
		return errors.New(errors.ErrCodeMeasureNotFound, "measure %v is not in any lane", m)
	}
	if l.FirstMeasure() == m {
		return nil
	}
	left := newLane(b.info)
	for l.FirstMeasure() != m {
		left.push(l.popFirst())
	}
	at := l.index
	b.lanes = append(b.lanes[:at], append([]*Lane{left}, b.lanes[at:]...)...)
	b.reindex()
	b.fill(l.index)
	return nil
}

// FillLane compacts the whole book.
func (b *Book) FillLane() {
	b.fill(0)
	b.notify()
}

// FillLaneFrom compacts the book from lane l onward. Lanes before l are left
// as they are.
func (b *Book) FillLaneFrom(l *Lane) error {
	if l == nil || b.At(l.index) != l {
		return errors.New(errors.ErrCodeNotFound, "lane is not part of this book")
	}
	b.fill(l.index)
	b.notify()
	return nil
}

// fill moves the first fragment of each lane's successor into it while it
// fits, dropping lanes that become empty. Fragments keep their ranges.
func (b *Book) fill(from int) {
	capacity := b.info.CapacityTicks()
	for i := from; i < len(b.lanes)-1; i++ {
		cur := b.lanes[i]
		for i+1 < len(b.lanes) {
			next := b.lanes[i+1]
			if next.Empty() {
				b.removeLane(i + 1)
				continue
			}
			e := next.FirstEntry()
			if cur.Occupied()+e.Ticks() > capacity {
				break
			}
			cur.push(next.popFirst())
			if next.Empty() {
				b.removeLane(i + 1)
			}
		}
	}
	b.reindex()
}

// DeleteScore removes count measures starting at m from both the book and
// store, then compacts the book. Note ticks are not touched.
func (b *Book) DeleteScore(store *score.Store, m *score.Measure, count int) error {
	if !store.Contains(m) {
		return errors.New(errors.ErrCodeMeasureNotFound, "measure %v is not in the store", m)
	}
	if err := errors.ValidateCount(count); err != nil {
		return err
	}
	from := m.Index()
	if from+count > store.Len() {
		return errors.New(errors.ErrCodeInvalidInput,
			"cannot delete %d measures from index %d of %d", count, from, store.Len())
	}

	for _, target := range store.All()[from : from+count] {
		l := b.LaneOf(target)
		for target.LinkCount() > 0 {
			if l == nil {
				return errors.New(errors.ErrCodeInconsistent,
					"measure %v has %d fragments not found in any lane", target, target.LinkCount())
			}
			if !l.DeleteMeasure(target) {
				l = b.Next(l)
			}
		}
	}
	for i := len(b.lanes) - 1; i >= 0; i-- {
		if b.lanes[i].Empty() {
			b.removeLane(i)
		}
	}
	b.reindex()

	if err := store.Delete(from, count); err != nil {
		return err
	}
	b.fill(0)
	b.notify()
	return nil
}

// Validate checks that the lanes cover store exactly, that no lane is over
// capacity and that no further compaction is possible.
func (b *Book) Validate(store *score.Store) error {
	capacity := b.info.CapacityTicks()
	links := make(map[*score.Measure]int)
	mi, beat := 0, 1

	for li, l := range b.lanes {
		if l.index != li {
			return errors.New(errors.ErrCodeInconsistent, "lane %d has index %d", li, l.index)
		}
		if l.Empty() {
			return errors.New(errors.ErrCodeInconsistent, "lane %d is empty", li)
		}
		if occ := l.Occupied(); occ > capacity {
			return errors.New(errors.ErrCodeInconsistent, "lane %d holds %d ticks, capacity %d", li, occ, capacity)
		}
		for _, e := range l.entries {
			want := store.At(mi)
			if want == nil || e.Measure != want {
				return errors.New(errors.ErrCodeInconsistent, "lane %d: expected measure %v, found %v", li, want, e.Measure)
			}
			if e.Range.Inf != beat || e.Range.Sup < e.Range.Inf || e.Range.Sup > want.Numer() {
				return errors.New(errors.ErrCodeInconsistent,
					"lane %d: measure %v has range [%d, %d], expected to start at beat %d",
					li, want, e.Range.Inf, e.Range.Sup, beat)
			}
			links[want]++
			beat = e.Range.Sup + 1
			if beat > want.Numer() {
				mi, beat = mi+1, 1
			}
		}
		if next := b.At(li + 1); next != nil && !next.Empty() {
			if l.Occupied()+next.FirstEntry().Ticks() <= capacity {
				return errors.New(errors.ErrCodeInconsistent, "lane %d could absorb the first fragment of lane %d", li, li+1)
			}
		}
	}
	if mi != store.Len() || beat != 1 {
		return errors.New(errors.ErrCodeInconsistent, "lanes cover %d of %d measures", mi, store.Len())
	}
	for _, m := range store.All() {
		if links[m] != m.LinkCount() {
			return errors.New(errors.ErrCodeInconsistent,
				"measure %v has link count %d but %d fragments", m, m.LinkCount(), links[m])
		}
	}
	return nil
}

func (b *Book) newMeasures(numer, denom, count int) ([]*score.Measure, error) {
	if err := errors.ValidateCount(count); err != nil {
		return nil, err
	}
	if err := score.ValidateSignature(b.info, numer, denom); err != nil {
		return nil, err
	}
	measures := make([]*score.Measure, count)
	for i := range measures {
		m, err := score.NewMeasure(b.info, numer, denom)
		if err != nil {
			return nil, err
		}
		measures[i] = m
	}
	return measures, nil
}

// place packs m onto the tail of lanes. A measure longer than a lane is cut
// into runs of as many whole beats as fit; every fragment goes into the tail
// lane when it fits there, otherwise into a new lane.
func (b *Book) place(lanes []*Lane, m *score.Measure) []*Lane {
	capacity := b.info.CapacityTicks()
	add := func(r score.Range) {
		if len(lanes) == 0 || lanes[len(lanes)-1].Occupied()+m.RangeTicks(r) > capacity {
			lanes = append(lanes, newLane(b.info))
		}
		lanes[len(lanes)-1].AddMeasure(m, r)
	}

	if m.Ticks() <= capacity {
		add(m.FullRange())
		return lanes
	}
	per := capacity / m.TicksPerBeat()
	for inf := 1; inf <= m.Numer(); inf += per {
		add(score.Range{Inf: inf, Sup: min(inf+per-1, m.Numer())})
	}
	return lanes
}

func (b *Book) removeLane(i int) {
	b.lanes[i].index = -1
	b.lanes = append(b.lanes[:i], b.lanes[i+1:]...)
}

func (b *Book) reindex() {
	for i, l := range b.lanes {
		l.index = i
	}
}

func (b *Book) notify() {
	for _, l := range b.listeners {
		l.UpdateNoteLocation(b)
	}
}
