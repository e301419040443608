package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/notes"
	"github.com/matzehuels/lanebook/pkg/session"
)

// DocumentVersion is written into every document.
const DocumentVersion = 1

type document struct {
	Version  int         `json:"version"`
	Config   config.Info `json:"config"`
	Measures []run       `json:"measures"`
	Notes    noteSet     `json:"notes"`
}

type run struct {
	Numer int `json:"numer"`
	Denom int `json:"denom"`
	Count int `json:"count"`
}

type noteSet struct {
	Shorts     []*notes.Note `json:"shorts,omitempty"`
	Holds      []*notes.Long `json:"holds,omitempty"`
	Slides     []*notes.Long `json:"slides,omitempty"`
	AirHolds   []*notes.Long `json:"airholds,omitempty"`
	Airs       []*notes.Note `json:"airs,omitempty"`
	Attributes []*notes.Note `json:"attributes,omitempty"`
}

// snapshot captures the session as a document. Consecutive measures with
// the same signature are stored as one run.
func snapshot(s *session.Session) document {
	var doc document
	_ = s.Read(func(v session.View) error {
		doc = document{Version: DocumentVersion, Config: v.Info}
		for _, m := range v.Store.All() {
			if n := len(doc.Measures); n > 0 && doc.Measures[n-1].Numer == m.Numer() && doc.Measures[n-1].Denom == m.Denom() {
				doc.Measures[n-1].Count++
				continue
			}
			doc.Measures = append(doc.Measures, run{Numer: m.Numer(), Denom: m.Denom(), Count: 1})
		}
		doc.Notes = noteSet{
			Shorts:     v.Notes.Shorts(),
			Holds:      v.Notes.Holds(),
			Slides:     v.Notes.Slides(),
			AirHolds:   v.Notes.AirHolds(),
			Airs:       v.Notes.Airs(),
			Attributes: v.Notes.Attributes(),
		}
		return nil
	})
	return doc
}

// WriteJSON encodes the session as a JSON document and writes it to w.
func WriteJSON(s *session.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the session to a JSON file at path.
func ExportJSON(s *session.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f)
}

// ReadJSON decodes a JSON document from r into a new session.
//
// Notes are added before measures so the lane layout computes their
// locations once. Parents are added before the airs and air-holds that
// reference them. opts are passed to [session.New].
//
// ReadJSON returns an INVALID_FORMAT error for malformed JSON or an unknown
// version, and the underlying error when the configuration or a note is
// rejected. ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...session.Option) (*session.Session, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	return doc.restore(opts...)
}

// restore replays a decoded document into a new session.
func (doc document) restore(opts ...session.Option) (*session.Session, error) {
	if doc.Version != DocumentVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document version %d", doc.Version)
	}
	if err := doc.Config.Validate(); err != nil {
		return nil, err
	}

	nb := notes.Empty(doc.Config)
	for _, group := range [][]*notes.Note{doc.Notes.Attributes, doc.Notes.Shorts} {
		for _, n := range group {
			if err := nb.Add(n); err != nil {
				return nil, fmt.Errorf("note %s: %w", n.ID, err)
			}
		}
	}
	for _, group := range [][]*notes.Long{doc.Notes.Holds, doc.Notes.Slides, doc.Notes.AirHolds} {
		for _, l := range group {
			if err := nb.AddLong(l); err != nil {
				return nil, fmt.Errorf("long note %s: %w", l.ID, err)
			}
		}
	}
	for _, n := range doc.Notes.Airs {
		if err := nb.Add(n); err != nil {
			return nil, fmt.Errorf("air %s: %w", n.ID, err)
		}
	}

	s, err := session.New(doc.Config, append(opts, session.WithNotes(nb))...)
	if err != nil {
		return nil, err
	}
	for i, r := range doc.Measures {
		if err := s.SetScore(r.Numer, r.Denom, r.Count); err != nil {
			return nil, fmt.Errorf("measures[%d]: %w", i, err)
		}
	}
	return s, nil
}

// ImportJSON reads a JSON document at path into a new session.
func ImportJSON(path string, opts ...session.Option) (*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, opts...)
}
