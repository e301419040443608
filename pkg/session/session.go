// Package session holds one open chart document and serializes every edit.
//
// A [Session] owns the configuration, the measure store, the lane book, the
// note book and the editor [Status]. The lane engine is single-threaded and
// its multi-step operations rely on stable indices, so every method takes
// the same mutex for the whole operation; read access goes through
// [Session.Read] under that lock as well.
//
// The note book is always the first lane listener. Listeners run inside the
// lock and must not call back into the session.
//
// After an INTERNAL_INCONSISTENCY error the session refuses further edits
// and returns that error from every mutating call.
//
// # Usage
//
//	sess, err := session.New(config.Default(), session.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	_ = sess.SetScore(4, 4, 16)
//	_ = sess.InsertBefore(4, 3, 4, 2) // two 3/4 bars in front of the fifth
package session

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/lane"
	"github.com/matzehuels/lanebook/pkg/notes"
	"github.com/matzehuels/lanebook/pkg/observability"
	"github.com/matzehuels/lanebook/pkg/score"
)

// Session is one open chart document.
type Session struct {
	mu sync.Mutex

	info   config.Info
	store  *score.Store
	lanes  *lane.Book
	notes  *notes.Book
	status Status
	logger *log.Logger
	strict bool

	broken error
}

type options struct {
	logger    *log.Logger
	notes     *notes.Book
	listeners []lane.Listener
	strict    bool
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger used for edit events.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotes starts the session from an existing note book instead of a
// fresh one.
func WithNotes(nb *notes.Book) Option {
	return func(o *options) { o.notes = nb }
}

// WithListener registers an extra lane listener after the note book.
func WithListener(l lane.Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, l) }
}

// WithStrict validates the lane book after every measure edit.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// New creates a session without measures. The configuration is validated
// first.
func New(info config.Info, opts ...Option) (*Session, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.notes == nil {
		o.notes = notes.New(info)
	}
	listeners := append([]lane.Listener{o.notes}, o.listeners...)

	return &Session{
		info:   info,
		store:  score.NewStore(),
		lanes:  lane.NewBook(info, listeners...),
		notes:  o.notes,
		status: DefaultStatus(info),
		logger: o.logger,
		strict: o.strict,
	}, nil
}

// Info returns the session configuration.
func (s *Session) Info() config.Info { return s.info }

// Err returns the inconsistency that stopped the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}

// edit runs fn under the lock and records the outcome.
func (s *Session) edit(op string, measures bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken != nil {
		return s.broken
	}

	start := time.Now()
	err := fn()
	if err == nil && measures && s.strict {
		err = s.lanes.Validate(s.store)
	}
	d := time.Since(start)
	observability.Layout().OnEdit(op, s.lanes.Len(), s.store.Len(), d, err)

	switch {
	case errors.IsFatal(err):
		s.broken = err
		s.logger.Error("session stopped", "op", op, "err", err)
		observability.Layout().OnInconsistency(err)
	case err != nil:
		s.logger.Debug("edit rejected", "op", op, "err", err)
	default:
		s.logger.Debug("edit", "op", op, "lanes", s.lanes.Len(), "measures", s.store.Len(), "duration", d)
	}
	return err
}

// SetScore appends count measures of numer/denom.
func (s *Session) SetScore(numer, denom, count int) error {
	return s.edit("set-score", true, func() error {
		return s.lanes.SetScore(s.store, numer, denom, count)
	})
}

// InsertAfter inserts count measures of numer/denom after the measure at
// index (0-based).
func (s *Session) InsertAfter(index, numer, denom, count int) error {
	return s.edit("insert-forward", true, func() error {
		m, err := s.measure(index)
		if err != nil {
			return err
		}
		return s.lanes.InsertScoreForward(s.notes, s.store, m, numer, denom, count)
	})
}

// InsertBefore inserts count measures of numer/denom in front of the measure
// at index (0-based). Notes from that measure on move back.
func (s *Session) InsertBefore(index, numer, denom, count int) error {
	return s.edit("insert-backward", true, func() error {
		m, err := s.measure(index)
		if err != nil {
			return err
		}
		return s.lanes.InsertScoreBackward(s.notes, s.store, m, numer, denom, count)
	})
}

// DeleteMeasures removes count measures starting at index. Notes inside the
// removed span are deleted and later notes move forward by its length.
func (s *Session) DeleteMeasures(index, count int) error {
	return s.edit("delete", true, func() error {
		m, err := s.measure(index)
		if err != nil {
			return err
		}
		if err := errors.ValidateCount(count); err != nil {
			return err
		}
		if index+count > s.store.Len() {
			return errors.New(errors.ErrCodeInvalidInput,
				"cannot delete %d measures from index %d of %d", count, index, s.store.Len())
		}
		if count == 0 {
			return s.lanes.DeleteScore(s.store, m, 0)
		}
		start, end := m.StartTick(), s.store.At(index+count-1).EndTick()
		s.notes.DeleteInTickRange(start, end)
		s.notes.RelocateNoteTickAfterScoreTick(end, start-end)
		return s.lanes.DeleteScore(s.store, m, count)
	})
}

// FillLanes compacts the whole lane book.
func (s *Session) FillLanes() error {
	return s.edit("fill", true, func() error {
		s.lanes.FillLane()
		return nil
	})
}

// AddNote places a short, air or attribute note.
func (s *Session) AddNote(n *notes.Note) error {
	return s.edit("add-note", false, func() error {
		if err := s.checkTick(n); err != nil {
			return err
		}
		if err := s.notes.Add(n); err != nil {
			return err
		}
		s.notes.UpdateNoteLocation(s.lanes)
		return nil
	})
}

// AddLong places a hold, slide or air-hold.
func (s *Session) AddLong(l *notes.Long) error {
	return s.edit("add-long", false, func() error {
		if l != nil {
			if err := s.checkTick(l.Steps...); err != nil {
				return err
			}
		}
		if err := s.notes.AddLong(l); err != nil {
			return err
		}
		s.notes.UpdateNoteLocation(s.lanes)
		return nil
	})
}

// checkTick rejects notes past the end of the chart. The end tick itself is
// the top of the last lane and stays legal. Airs take their parent's tick.
func (s *Session) checkTick(ns ...*notes.Note) error {
	end := s.store.TotalTicks()
	for _, n := range ns {
		if n == nil || !n.Kind.Valid() || n.Kind.Category() == notes.Air {
			continue
		}
		if n.Position.Tick > end {
			return errors.New(errors.ErrCodeInvalidInput,
				"tick %d is past the end of the chart at %d", n.Position.Tick, end)
		}
	}
	return nil
}

// DeleteNote deletes a note and whatever depends on it.
func (s *Session) DeleteNote(id uuid.UUID) error {
	return s.edit("delete-note", false, func() error { return s.notes.Delete(id) })
}

// DeleteLong deletes a whole long note.
func (s *Session) DeleteLong(id uuid.UUID) error {
	return s.edit("delete-long", false, func() error { return s.notes.DeleteLong(id) })
}

// Select returns the note under p, honouring the status visibility.
func (s *Session) Select(p score.Point) (*notes.Note, notes.Area, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.Select(p, s.status.Visibility)
}

// View is read access to the session internals, valid only inside
// [Session.Read].
type View struct {
	Info   config.Info
	Store  *score.Store
	Lanes  *lane.Book
	Notes  *notes.Book
	Status Status
}

// Read calls fn with the session locked.
func (s *Session) Read(fn func(v View) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(View{Info: s.info, Store: s.store, Lanes: s.lanes, Notes: s.notes, Status: s.status})
}

// Validate checks the lane book against the measure store.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lanes.Validate(s.store)
}

// Stats summarizes the document.
type Stats struct {
	Measures   int
	Lanes      int
	Notes      int
	TotalTicks int
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Measures:   s.store.Len(),
		Lanes:      s.lanes.Len(),
		Notes:      s.notes.Len(),
		TotalTicks: s.store.TotalTicks(),
	}
}

func (s *Session) measure(index int) (*score.Measure, error) {
	m := s.store.At(index)
	if m == nil {
		return nil, errors.New(errors.ErrCodeMeasureNotFound, "no measure at index %d (have %d)", index, s.store.Len())
	}
	return m, nil
}
