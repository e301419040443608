package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/session"
)

func TestDocumentRoundTrip(t *testing.T) {
	sess := buildScript(t, chartScript)

	var first bytes.Buffer
	if err := WriteJSON(sess, &first); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadJSON(bytes.NewReader(first.Bytes()), session.WithStrict(true))
	if err != nil {
		t.Fatal(err)
	}
	var second bytes.Buffer
	if err := WriteJSON(loaded, &second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("document changed on round trip:\n%s\n---\n%s", first.String(), second.String())
	}

	if got, want := loaded.Stats(), sess.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if err := loaded.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestDocumentMeasureRuns(t *testing.T) {
	sess := buildScript(t, "[[measures]]\nsignature = \"4/4\"\ncount = 3\n[[measures]]\nsignature = \"4/4\"\ncount = 2\n[[measures]]\nsignature = \"6/8\"\ncount = 1")
	var buf bytes.Buffer
	if err := WriteJSON(sess, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"count": 5`) {
		t.Errorf("consecutive measures were not merged:\n%s", buf.String())
	}
}

func TestDocumentLongRun(t *testing.T) {
	sess := buildScript(t, "[[measures]]\nsignature = \"1/4\"\ncount = 12000")
	var buf bytes.Buffer
	if err := WriteJSON(sess, &buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Stats().Measures; got != 12000 {
		t.Errorf("loaded %d measures, want 12000", got)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"Malformed", `{`, errors.ErrCodeInvalidFormat},
		{"UnknownField", `{"version": 1, "extra": true}`, errors.ErrCodeInvalidFormat},
		{"Version", `{"version": 9}`, errors.ErrCodeInvalidFormat},
		{"Config", `{"version": 1, "config": {"resolution": 0}}`, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.in)); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportImportJSON(t *testing.T) {
	sess := buildScript(t, chartScript)
	path := filepath.Join(t.TempDir(), "chart.json")

	if err := ExportJSON(sess, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Stats().Notes != sess.Stats().Notes {
		t.Errorf("Notes = %d, want %d", loaded.Stats().Notes, sess.Stats().Notes)
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.toml")
	if err := os.WriteFile(path, []byte(chartScript), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScript(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "chart.toml" || len(s.Source) == 0 {
		t.Errorf("Name = %q, Source = %d bytes", s.Name, len(s.Source))
	}
	if _, err := LoadScript(path + ".missing"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing script error = %v", err)
	}
}
