package notes

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lanebook/pkg/errors"
)

// Kind identifies what a note is.
type Kind int

const (
	Tap Kind = iota
	ExTap
	AwesomeExTap
	ExTapDown
	Flick
	HellTap
	HoldBegin
	HoldEnd
	SlideBegin
	SlideTap
	SlideRelay
	SlideCurve
	SlideEnd
	AirHoldBegin
	AirAction
	AirUpL
	AirUpC
	AirUpR
	AirDownL
	AirDownC
	AirDownR
	BPM
	HighSpeed

	kindCount
)

var kindNames = [kindCount]string{
	Tap:          "tap",
	ExTap:        "extap",
	AwesomeExTap: "awesome-extap",
	ExTapDown:    "extap-down",
	Flick:        "flick",
	HellTap:      "hell-tap",
	HoldBegin:    "hold-begin",
	HoldEnd:      "hold-end",
	SlideBegin:   "slide-begin",
	SlideTap:     "slide-tap",
	SlideRelay:   "slide-relay",
	SlideCurve:   "slide-curve",
	SlideEnd:     "slide-end",
	AirHoldBegin: "airhold-begin",
	AirAction:    "air-action",
	AirUpL:       "air-up-l",
	AirUpC:       "air-up-c",
	AirUpR:       "air-up-r",
	AirDownL:     "air-down-l",
	AirDownC:     "air-down-c",
	AirDownR:     "air-down-r",
	BPM:          "bpm",
	HighSpeed:    "highspeed",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String. It ignores case.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown note kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || k >= kindCount {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid note kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Category groups kinds by how the book stores them.
type Category int

const (
	Short Category = iota
	Hold
	Slide
	AirHold
	Air
	Attribute
)

func (c Category) String() string {
	switch c {
	case Short:
		return "short"
	case Hold:
		return "hold"
	case Slide:
		return "slide"
	case AirHold:
		return "airhold"
	case Air:
		return "air"
	case Attribute:
		return "attribute"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Category returns the storage category of k.
func (k Kind) Category() Category {
	switch k {
	case Tap, ExTap, AwesomeExTap, ExTapDown, Flick, HellTap:
		return Short
	case HoldBegin, HoldEnd:
		return Hold
	case SlideBegin, SlideTap, SlideRelay, SlideCurve, SlideEnd:
		return Slide
	case AirHoldBegin, AirAction:
		return AirHold
	case AirUpL, AirUpC, AirUpR, AirDownL, AirDownC, AirDownR:
		return Air
	case BPM, HighSpeed:
		return Attribute
	default:
		panic(fmt.Sprintf("notes: unknown kind %d", int(k)))
	}
}

// Airable reports whether an air or air-hold can be attached to k.
func (k Kind) Airable() bool {
	switch k.Category() {
	case Short:
		return true
	case Hold:
		return k == HoldEnd
	case Slide:
		return k == SlideEnd
	case AirHold, Air, Attribute:
		return false
	default:
		panic("unreachable")
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }
