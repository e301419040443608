package notes

import (
	"github.com/google/uuid"

	"github.com/matzehuels/lanebook/pkg/score"
)

// Position is the logical place of a note: its leftmost column inside a
// measure and its absolute tick.
type Position struct {
	Lane int `json:"lane" toml:"lane"`
	Tick int `json:"tick" toml:"tick"`
}

// Note is a single placed note.
type Note struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Position Position  `json:"position"`
	// Size is the width in columns.
	Size int `json:"size"`
	// Value is the tempo of a BPM note or the factor of a HighSpeed note.
	Value float64 `json:"value,omitzero"`
	// Parent is the airable note an air or air-hold begin is attached to.
	Parent uuid.UUID `json:"parent,omitzero"`

	// Location is the panel position of the note's bottom-left corner,
	// valid when LaneIndex >= 0.
	Location  score.Point `json:"-"`
	LaneIndex int         `json:"-"`
}

// Long is a hold, slide or air-hold: ordered steps sharing one category.
type Long struct {
	ID    uuid.UUID `json:"id"`
	Steps []*Note   `json:"steps"`
}

// Category returns the category of the long note's steps.
func (l *Long) Category() Category { return l.Steps[0].Kind.Category() }

func (l *Long) Begin() *Note { return l.Steps[0] }
func (l *Long) End() *Note   { return l.Steps[len(l.Steps)-1] }

// Step returns the step with the given ID, or nil.
func (l *Long) Step(id uuid.UUID) *Note {
	for _, s := range l.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Visibility selects which categories take part in hit testing.
type Visibility struct {
	Short, Hold, Slide, Air, AirHold bool
}

// AllVisible makes every category selectable.
func AllVisible() Visibility {
	return Visibility{Short: true, Hold: true, Slide: true, Air: true, AirHold: true}
}

// Area is the part of a note a point falls on.
type Area int

const (
	AreaNone Area = iota
	AreaLeft
	AreaCenter
	AreaRight
)

func (a Area) String() string {
	switch a {
	case AreaLeft:
		return "left"
	case AreaCenter:
		return "center"
	case AreaRight:
		return "right"
	default:
		return "none"
	}
}
