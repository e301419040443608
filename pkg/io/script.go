package io

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/notes"
	"github.com/matzehuels/lanebook/pkg/session"
)

// DefaultNoteSize is used for script notes that do not set a size.
const DefaultNoteSize = 4

// Script is a parsed chart script.
type Script struct {
	// Name is the file name for scripts read with LoadScript.
	Name string `toml:"-"`
	// Source is the raw script text.
	Source []byte `toml:"-"`

	Config   toml.Primitive `toml:"config"`
	Measures []Run          `toml:"measures"`
	Notes    []ScriptNote   `toml:"notes"`
	Longs    []ScriptLong   `toml:"longs"`
	Edits    []Edit         `toml:"edits"`

	meta toml.MetaData
}

// Run appends Count measures of one signature.
type Run struct {
	Signature string `toml:"signature"`
	Count     int    `toml:"count"`
}

// Edit is a measure edit replayed after notes are placed.
type Edit struct {
	// Op is insert-before, insert-after or delete.
	Op string `toml:"op"`
	// Measure is the 1-based measure number the edit applies to.
	Measure   int    `toml:"measure"`
	Signature string `toml:"signature"`
	Count     int    `toml:"count"`
}

// ScriptNote places one note. Its tick is Offset ticks into the 1-based
// Measure, or the absolute Tick when Measure is zero.
type ScriptNote struct {
	ID      string  `toml:"id"`
	Kind    string  `toml:"kind"`
	Measure int     `toml:"measure"`
	Offset  int     `toml:"offset"`
	Tick    int     `toml:"tick"`
	Lane    int     `toml:"lane"`
	Size    int     `toml:"size"`
	Value   float64 `toml:"value"`
	Parent  string  `toml:"parent"`
}

// ScriptLong places a hold, slide or air-hold. Parent on an air-hold names
// the airable note it starts from.
type ScriptLong struct {
	Parent string       `toml:"parent"`
	Steps  []ScriptNote `toml:"steps"`
}

// ReadScript parses a chart script from r. Unknown keys are rejected.
func ReadScript(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses a chart script held in memory.
func ParseScript(data []byte) (*Script, error) {
	s := &Script{Source: data}
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "parse script")
	}
	s.meta = md

	// Decode the overrides once so unknown config keys surface here.
	if _, err := s.ApplyConfig(config.Default()); err != nil {
		return nil, err
	}
	if undecoded := s.meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScript, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return s, nil
}

// LoadScript reads a chart script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ReadScript(f)
	if err != nil {
		return nil, err
	}
	s.Name = filepath.Base(path)
	return s, nil
}

// ApplyConfig returns base with the script's [config] table applied.
func (s *Script) ApplyConfig(base config.Info) (config.Info, error) {
	if !s.meta.IsDefined("config") {
		return base, nil
	}
	info := base
	if err := s.meta.PrimitiveDecode(s.Config, &info); err != nil {
		return config.Info{}, errors.Wrap(errors.ErrCodeInvalidScript, err, "config")
	}
	if err := info.Validate(); err != nil {
		return config.Info{}, err
	}
	return info, nil
}

// Apply builds the chart described by the script into sess: measures first,
// then notes without parents, then airs and air-holds, then edits.
func (s *Script) Apply(sess *session.Session) error {
	for i, r := range s.Measures {
		numer, denom, err := ParseSignature(r.Signature)
		if err != nil {
			return fmt.Errorf("measures[%d]: %w", i, err)
		}
		if err := sess.SetScore(numer, denom, r.Count); err != nil {
			return fmt.Errorf("measures[%d]: %w", i, err)
		}
	}

	ids := make(map[string]uuid.UUID)
	for pass := 0; pass < 2; pass++ {
		for i, sn := range s.Notes {
			if (sn.Parent != "") != (pass == 1) {
				continue
			}
			n, err := s.note(sess, ids, sn)
			if err == nil {
				err = sess.AddNote(n)
			}
			if err != nil {
				return fmt.Errorf("notes[%d]: %w", i, err)
			}
			remember(ids, sn.ID, n.ID)
		}
		for i, sl := range s.Longs {
			if (sl.Parent != "") != (pass == 1) {
				continue
			}
			if err := s.long(sess, ids, sl); err != nil {
				return fmt.Errorf("longs[%d]: %w", i, err)
			}
		}
	}

	for i, e := range s.Edits {
		if err := applyEdit(sess, e); err != nil {
			return fmt.Errorf("edits[%d]: %w", i, err)
		}
	}
	return nil
}

func (s *Script) long(sess *session.Session, ids map[string]uuid.UUID, sl ScriptLong) error {
	l := &notes.Long{}
	for i, step := range sl.Steps {
		if i == 0 && sl.Parent != "" {
			step.Parent = sl.Parent
		}
		n, err := s.note(sess, ids, step)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		l.Steps = append(l.Steps, n)
	}
	if err := sess.AddLong(l); err != nil {
		return err
	}
	for i, step := range sl.Steps {
		remember(ids, step.ID, l.Steps[i].ID)
	}
	return nil
}

func (s *Script) note(sess *session.Session, ids map[string]uuid.UUID, sn ScriptNote) (*notes.Note, error) {
	kind, err := notes.ParseKind(sn.Kind)
	if err != nil {
		return nil, err
	}
	n := &notes.Note{
		Kind:     kind,
		Position: notes.Position{Lane: sn.Lane},
		Size:     sn.Size,
		Value:    sn.Value,
	}
	if n.Size == 0 {
		n.Size = DefaultNoteSize
	}
	if sn.Parent != "" {
		id, ok := ids[sn.Parent]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidScript, "unknown parent %q", sn.Parent)
		}
		n.Parent = id
	}

	err = sess.Read(func(v session.View) error {
		switch {
		case sn.Measure > 0:
			m := v.Store.At(sn.Measure - 1)
			if m == nil {
				return errors.New(errors.ErrCodeInvalidScript, "measure %d does not exist", sn.Measure)
			}
			if sn.Offset < 0 || sn.Offset >= m.Ticks() {
				return errors.New(errors.ErrCodeInvalidScript, "offset %d outside measure %d (%d ticks)", sn.Offset, sn.Measure, m.Ticks())
			}
			n.Position.Tick = m.StartTick() + sn.Offset
		case n.Parent != uuid.Nil:
			parent, ok := v.Notes.Get(n.Parent)
			if !ok {
				return errors.New(errors.ErrCodeInvalidScript, "parent %q was deleted", sn.Parent)
			}
			n.Position.Tick = parent.Position.Tick
		default:
			n.Position.Tick = sn.Tick
		}
		return nil
	})
	return n, err
}

func applyEdit(sess *session.Session, e Edit) error {
	if e.Op == "delete" {
		return sess.DeleteMeasures(e.Measure-1, e.Count)
	}
	numer, denom, err := ParseSignature(e.Signature)
	if err != nil {
		return err
	}
	switch e.Op {
	case "insert-before":
		return sess.InsertBefore(e.Measure-1, numer, denom, e.Count)
	case "insert-after":
		return sess.InsertAfter(e.Measure-1, numer, denom, e.Count)
	default:
		return errors.New(errors.ErrCodeInvalidScript, "unknown edit %q", e.Op)
	}
}

// ParseSignature parses "numer/denom".
func ParseSignature(s string) (numer, denom int, err error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), "/")
	if ok {
		numer, err = strconv.Atoi(strings.TrimSpace(a))
		if err == nil {
			denom, err = strconv.Atoi(strings.TrimSpace(b))
		}
	}
	if !ok || err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidScript, "invalid signature %q, want numer/denom", s)
	}
	return numer, denom, nil
}

func remember(ids map[string]uuid.UUID, label string, id uuid.UUID) {
	if label != "" {
		ids[label] = id
	}
}
