package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/lanebook/pkg/score"
)

// SVGSurface records drawing calls as SVG elements.
type SVGSurface struct {
	buf  bytes.Buffer
	w, h float64
}

// NewSVGSurface returns a surface of w by h panel units filled with bg.
func NewSVGSurface(w, h float64, bg score.Color) *SVGSurface {
	s := &SVGSurface{w: w, h: h}
	s.Rect(score.Rect{W: w, H: h}, bg)
	return s
}

func (s *SVGSurface) Line(from, to score.Point, c score.Color, width float64) {
	fmt.Fprintf(&s.buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
		from.X, from.Y, to.X, to.Y, hex(c), width, opacity("stroke-opacity", c))
}

func (s *SVGSurface) Rect(r score.Rect, fill score.Color) {
	fmt.Fprintf(&s.buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"%s/>`+"\n",
		r.X, r.Y, r.W, r.H, hex(fill), opacity("fill-opacity", fill))
}

func (s *SVGSurface) Text(at score.Point, text string, size float64, c score.Color) {
	fmt.Fprintf(&s.buf, `  <text x="%.1f" y="%.1f" font-family="monospace" font-size="%.1f" fill="%s">%s</text>`+"\n",
		at.X, at.Y, size, hex(c), EscapeXML(text))
}

// Bytes returns the complete SVG document.
func (s *SVGSurface) Bytes() []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.w, s.h, s.w, s.h)
	out.Write(s.buf.Bytes())
	out.WriteString("</svg>\n")
	return out.Bytes()
}

func hex(c score.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(attr string, c score.Color) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(` %s="%.2f"`, attr, float64(c.A)/255)
}

// EscapeXML escapes s for use as SVG text content.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
