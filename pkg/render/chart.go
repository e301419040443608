package render

import (
	"fmt"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/notes"
	"github.com/matzehuels/lanebook/pkg/score"
	"github.com/matzehuels/lanebook/pkg/session"
)

var (
	colorTap       = score.Color{R: 255, G: 70, B: 70, A: 255}
	colorExTap     = score.Color{R: 255, G: 210, B: 0, A: 255}
	colorFlick     = score.Color{R: 80, G: 200, B: 255, A: 255}
	colorHellTap   = score.Color{R: 150, G: 60, B: 220, A: 255}
	colorHold      = score.Color{R: 255, G: 150, B: 0, A: 255}
	colorSlide     = score.Color{R: 0, G: 110, B: 255, A: 255}
	colorAir       = score.Color{R: 0, G: 220, B: 90, A: 255}
	colorAirHold   = score.Color{R: 0, G: 220, B: 90, A: 160}
	colorAttribute = score.Color{R: 255, G: 255, B: 255, A: 200}
)

// Option configures RenderSVG.
type Option func(*renderer)

type renderer struct {
	vis notes.Visibility
}

// WithVisibility limits the note categories drawn. All categories are drawn
// by default.
func WithVisibility(vis notes.Visibility) Option {
	return func(r *renderer) { r.vis = vis }
}

// Size returns the panel size needed to show lanes lanes.
func Size(info config.Info, lanes int) (w, h float64) {
	w = float64(info.PanelMargin.Left+info.PanelMargin.Right) + float64(lanes)*info.LanePitch()
	h = float64(info.PanelMargin.Top+info.PanelMargin.Bottom) + info.LaneHeight()
	return w, h
}

// RenderSVG draws every lane of v side by side with its notes on top.
func RenderSVG(v session.View, opts ...Option) []byte {
	r := renderer{vis: notes.AllVisible()}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := Size(v.Info, v.Lanes.Len())
	s := NewSVGSurface(w, h, score.ColorBackground)
	for _, l := range v.Lanes.Lanes() {
		hr := l.HitRect()
		l.Paint(s, score.Point{X: hr.X, Y: hr.Y})
	}
	r.paintNotes(s, v)
	return s.Bytes()
}

func (r renderer) paintNotes(s score.Surface, v session.View) {
	nb := v.Notes
	if r.vis.Hold {
		r.paintLongs(s, nb, nb.Holds(), colorHold)
	}
	if r.vis.Slide {
		r.paintLongs(s, nb, nb.Slides(), colorSlide)
	}
	if r.vis.Short {
		for _, n := range nb.Shorts() {
			paintNote(s, nb, n, shortColor(n.Kind))
		}
	}
	if r.vis.Air {
		for _, n := range nb.Airs() {
			paintNote(s, nb, n, colorAir)
		}
	}
	if r.vis.AirHold {
		r.paintLongs(s, nb, nb.AirHolds(), colorAirHold)
	}
	for _, n := range nb.Attributes() {
		if n.LaneIndex < 0 {
			continue
		}
		hr := nb.HitRect(n)
		s.Line(score.Point{X: hr.X, Y: n.Location.Y}, score.Point{X: hr.X + hr.W, Y: n.Location.Y}, colorAttribute, 1)
		s.Text(score.Point{X: hr.X + hr.W + 1, Y: n.Location.Y}, attributeLabel(n), v.Info.FontSize, colorAttribute)
	}
}

// paintLongs connects consecutive steps that sit in the same lane, then
// draws the steps themselves.
func (r renderer) paintLongs(s score.Surface, nb *notes.Book, longs []*notes.Long, c score.Color) {
	for _, l := range longs {
		for i := 1; i < len(l.Steps); i++ {
			a, b := l.Steps[i-1], l.Steps[i]
			if a.LaneIndex < 0 || a.LaneIndex != b.LaneIndex {
				continue
			}
			s.Line(center(nb, a), center(nb, b), c, 2)
		}
		for _, step := range l.Steps {
			if step.Kind == notes.AirHoldBegin {
				continue
			}
			paintNote(s, nb, step, c)
		}
	}
}

func paintNote(s score.Surface, nb *notes.Book, n *notes.Note, c score.Color) {
	if n.LaneIndex < 0 {
		return
	}
	s.Rect(nb.HitRect(n), c)
}

func center(nb *notes.Book, n *notes.Note) score.Point {
	hr := nb.HitRect(n)
	return score.Point{X: hr.X + hr.W/2, Y: hr.Y + hr.H/2}
}

func shortColor(k notes.Kind) score.Color {
	switch k {
	case notes.ExTap, notes.AwesomeExTap, notes.ExTapDown:
		return colorExTap
	case notes.Flick:
		return colorFlick
	case notes.HellTap:
		return colorHellTap
	default:
		return colorTap
	}
}

func attributeLabel(n *notes.Note) string {
	switch n.Kind {
	case notes.BPM:
		return fmt.Sprintf("BPM %g", n.Value)
	case notes.HighSpeed:
		return fmt.Sprintf("x%g", n.Value)
	default:
		return n.Kind.String()
	}
}
