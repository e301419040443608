package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/lanebook/pkg/errors"
	chartio "github.com/matzehuels/lanebook/pkg/io"
	"github.com/matzehuels/lanebook/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"EmptyDefaultsToSVG", "", []string{"svg"}},
		{"Single", "dot", []string{"dot"}},
		{"Multiple", "svg,json,pdf", []string{"svg", "json", "pdf"}},
		{"Spaces", " svg , graph.svg ", []string{"svg", "graph.svg"}},
		{"EmptyParts", "svg,,png", []string{"svg", "png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "charts/song.toml", "charts/song"},
		{"", "song", "song"},
		{"out/song", "song.toml", "out/song"},
		{"out/song.svg", "song.toml", "out/song"},
		{"out/song.graph.svg", "song.toml", "out/song"},
		{"out/song.pdf", "song.toml", "out/song"},
		{"out/song.v2", "song.toml", "out/song.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	path := writeChart(t, chartScript)
	out := filepath.Join(t.TempDir(), "build", "song")

	ro := renderOpts{
		output:  out,
		formats: []string{pipeline.FormatSVG, pipeline.FormatDOT, pipeline.FormatJSON},
		scale:   pipeline.DefaultScale,
	}
	if err := testCLI().runRender(context.Background(), path, ro); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	svg, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("svg output starts with %q", svg[:min(20, len(svg))])
	}

	dot, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"lane 3" -> "#009 4/4"`) {
		t.Errorf("dot output missing lane 3 edge:\n%s", dot)
	}

	sess, err := chartio.ImportJSON(out + ".json")
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if st := sess.Stats(); st.Measures != 10 || st.Lanes != 3 {
		t.Errorf("imported stats = %+v, want 10 measures in 3 lanes", st)
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	path := writeChart(t, chartScript)
	root := testCLI().RootCommand()
	root.SetArgs([]string{"--no-cache", "render", "-f", "bmp", path})
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.svg")
	if err := writeOutput(path, []byte("<svg/>")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<svg/>" {
		t.Errorf("wrote %q", got)
	}
}

func TestRenderCommandRejectsOutputDir(t *testing.T) {
	path := writeChart(t, chartScript)
	root := testCLI().RootCommand()
	root.SetArgs([]string{"--no-cache", "render", "-o", t.TempDir() + "/", path})
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Fatalf("error = %v, want INVALID_PATH", err)
	}
}
