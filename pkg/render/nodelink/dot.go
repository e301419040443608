package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lanebook/pkg/lane"
	"github.com/matzehuels/lanebook/pkg/session"
)

// Options configures graph generation.
type Options struct {
	// Detailed adds tick spans to node labels.
	Detailed bool
}

// ToDOT converts the lane layout of v to Graphviz DOT source.
func ToDOT(v session.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lanes {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("\n")

	for _, l := range v.Lanes.Lanes() {
		fmt.Fprintf(&buf, "  %q [label=%q, style=filled, fillcolor=black, fontcolor=white];\n",
			laneID(l), laneLabel(l, opts.Detailed))
	}
	for _, m := range v.Store.All() {
		attrs := fmt.Sprintf("label=%q", measureLabel(m.String(), m.StartTick(), m.EndTick(), opts.Detailed))
		if m.LinkCount() > 1 {
			attrs += ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", m.String(), attrs)
	}

	buf.WriteString("\n")
	for _, l := range v.Lanes.Lanes() {
		for _, e := range l.Entries() {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"%d-%d\"];\n", laneID(l), e.Measure.String(), e.Range.Inf, e.Range.Sup)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func laneID(l *lane.Lane) string {
	return fmt.Sprintf("lane %d", l.Index()+1)
}

func laneLabel(l *lane.Lane, detailed bool) string {
	if !detailed {
		return laneID(l)
	}
	return fmt.Sprintf("%s\nticks %d-%d\n%d/%d", laneID(l), l.StartTick(), l.EndTick(), l.Occupied(), l.Capacity())
}

func measureLabel(name string, start, end int, detailed bool) string {
	if !detailed {
		return name
	}
	return fmt.Sprintf("%s\nticks %d-%d", name, start, end)
}

// RenderSVG renders DOT source to SVG with Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
