package notes

import (
	"slices"

	"github.com/matzehuels/lanebook/pkg/score"
)

// HitRect returns the panel rectangle of n. Attribute markers span the
// whole measure width.
func (b *Book) HitRect(n *Note) score.Rect {
	w := float64(n.Size) * b.info.LaneWidth
	if n.Kind.Category() == Attribute {
		w = b.info.MeasureWidth()
	}
	h := b.info.NoteHeight
	return score.Rect{X: n.Location.X, Y: n.Location.Y - h/2, W: w, H: h}
}

func (b *Book) hit(n *Note, p score.Point) bool {
	return n.LaneIndex >= 0 && b.HitRect(n).Contains(p)
}

// Select returns the note under p and the part of it that was hit.
// Categories are tried in the order air-holds, airs, short notes, slides,
// holds, attributes; within a category the most recently added note wins.
// Air-hold begins are never selected directly.
func (b *Book) Select(p score.Point, vis Visibility) (*Note, Area, bool) {
	if vis.AirHold {
		for _, l := range slices.Backward(b.airHolds) {
			for _, s := range l.Steps {
				if s.Kind != AirHoldBegin && b.hit(s, p) {
					return s, b.areaOf(s, p), true
				}
			}
		}
	}
	if vis.Air {
		if n := b.lastHit(b.airs, p); n != nil {
			return n, b.areaOf(n, p), true
		}
	}
	if vis.Short {
		if n := b.lastHit(b.shorts, p); n != nil {
			return n, b.areaOf(n, p), true
		}
	}
	for _, group := range []struct {
		visible bool
		longs   []*Long
	}{{vis.Slide, b.slides}, {vis.Hold, b.holds}} {
		if !group.visible {
			continue
		}
		for _, l := range slices.Backward(group.longs) {
			for _, s := range l.Steps {
				if b.hit(s, p) {
					return s, b.areaOf(s, p), true
				}
			}
		}
	}
	if n := b.lastHit(b.attributes, p); n != nil {
		return n, AreaCenter, true
	}
	return nil, AreaNone, false
}

func (b *Book) lastHit(list []*Note, p score.Point) *Note {
	for _, n := range slices.Backward(list) {
		if b.hit(n, p) {
			return n
		}
	}
	return nil
}

// areaOf splits the note into thirds; resizing grabs the outer thirds.
func (b *Book) areaOf(n *Note, p score.Point) Area {
	r := b.HitRect(n)
	switch third := r.W / 3; {
	case p.X < r.X+third:
		return AreaLeft
	case p.X >= r.X+r.W-third:
		return AreaRight
	default:
		return AreaCenter
	}
}
