package notes

import (
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/lane"
	"github.com/matzehuels/lanebook/pkg/score"
)

func tap(lane, tick int) *Note {
	return &Note{Kind: Tap, Position: Position{Lane: lane, Tick: tick}, Size: 4}
}

func step(k Kind, lane, tick int) *Note {
	return &Note{Kind: k, Position: Position{Lane: lane, Tick: tick}, Size: 4}
}

func mustAdd(t *testing.T, b *Book, n *Note) *Note {
	t.Helper()
	if err := b.Add(n); err != nil {
		t.Fatalf("Add(%s): %v", n.Kind, err)
	}
	return n
}

func mustAddLong(t *testing.T, b *Book, steps ...*Note) *Long {
	t.Helper()
	l := &Long{Steps: steps}
	if err := b.AddLong(l); err != nil {
		t.Fatalf("AddLong(%s): %v", steps[0].Kind, err)
	}
	return l
}

func TestKinds(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		_ = k.Category()
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("bogus"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseKind(bogus) error = %v", err)
	}

	airable := map[Kind]bool{Tap: true, ExTap: true, AwesomeExTap: true, ExTapDown: true,
		Flick: true, HellTap: true, HoldEnd: true, SlideEnd: true}
	for k := Kind(0); k < kindCount; k++ {
		if k.Airable() != airable[k] {
			t.Errorf("%s.Airable() = %v", k, k.Airable())
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("Category() of an unknown kind did not panic")
		}
	}()
	_ = kindCount.Category()
}

func TestNewSeedsTempo(t *testing.T) {
	b := New(config.Default())
	if b.Len() != 1 || b.Count(Attribute) != 1 {
		t.Fatalf("Len() = %d, want a single BPM marker", b.Len())
	}
	if got := b.BPMAt(0); got != InitialBPM {
		t.Errorf("BPMAt(0) = %v, want %v", got, InitialBPM)
	}
	mustAdd(t, b, &Note{Kind: BPM, Position: Position{Tick: 384}, Value: 180})
	if b.BPMAt(383) != InitialBPM || b.BPMAt(384) != 180 || b.BPMAt(10000) != 180 {
		t.Error("BPMAt() does not follow tempo markers")
	}
}

func TestAddValidation(t *testing.T) {
	b := New(config.Default())
	parent := mustAdd(t, b, tap(0, 0))

	tests := []struct {
		name string
		add  func() error
	}{
		{"NegativeTick", func() error { return b.Add(tap(0, -1)) }},
		{"OutsideColumns", func() error { return b.Add(tap(14, 0)) }},
		{"ZeroSize", func() error { return b.Add(&Note{Kind: Tap}) }},
		{"StepAsSingle", func() error { return b.Add(step(HoldBegin, 0, 0)) }},
		{"AirWithoutParent", func() error { return b.Add(&Note{Kind: AirUpC}) }},
		{"ZeroBPM", func() error { return b.Add(&Note{Kind: BPM}) }},
		{"InvalidKind", func() error { return b.Add(&Note{Kind: kindCount}) }},
		{"HoldTooShort", func() error { return b.AddLong(&Long{Steps: []*Note{step(HoldBegin, 0, 0)}}) }},
		{"HoldBackwards", func() error {
			return b.AddLong(&Long{Steps: []*Note{step(HoldBegin, 0, 10), step(HoldEnd, 0, 5)}})
		}},
		{"HoldWithRelay", func() error {
			return b.AddLong(&Long{Steps: []*Note{step(HoldBegin, 0, 0), step(SlideRelay, 0, 5), step(HoldEnd, 0, 10)}})
		}},
		{"SlideWrongEnd", func() error {
			return b.AddLong(&Long{Steps: []*Note{step(SlideBegin, 0, 0), step(SlideTap, 0, 10)}})
		}},
		{"AirHoldOnAttribute", func() error {
			begin := step(AirHoldBegin, 0, 0)
			begin.Parent = b.Attributes()[0].ID
			return b.AddLong(&Long{Steps: []*Note{begin, step(AirAction, 0, 10)}})
		}},
		{"AirHoldOffParentTick", func() error {
			begin := step(AirHoldBegin, 0, 5)
			begin.Parent = parent.ID
			return b.AddLong(&Long{Steps: []*Note{begin, step(AirAction, 0, 10)}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := b.Len()
			if err := tt.add(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
			if b.Len() != before {
				t.Errorf("rejected note was stored")
			}
		})
	}

	t.Run("SecondAir", func(t *testing.T) {
		mustAdd(t, b, &Note{Kind: AirUpC, Parent: parent.ID})
		if err := b.Add(&Note{Kind: AirDownC, Parent: parent.ID}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
	t.Run("MissingParent", func(t *testing.T) {
		if err := b.Add(&Note{Kind: AirUpC, Parent: uuid.New()}); !errors.Is(err, errors.ErrCodeNoteNotFound) {
			t.Errorf("error = %v, want NOTE_NOT_FOUND", err)
		}
	})
}

func TestAirFollowsParent(t *testing.T) {
	b := New(config.Default())
	parent := mustAdd(t, b, &Note{Kind: Flick, Position: Position{Lane: 3, Tick: 48}, Size: 6})
	air := mustAdd(t, b, &Note{Kind: AirUpL, Parent: parent.ID})
	if air.Position != parent.Position || air.Size != parent.Size {
		t.Errorf("air at %+v size %d, want %+v size %d", air.Position, air.Size, parent.Position, parent.Size)
	}
	if b.AirOf(parent.ID) != air {
		t.Error("AirOf() does not find the attached air")
	}
	if air.ID == uuid.Nil {
		t.Error("Add did not assign an ID")
	}
}

func TestDeleteCascade(t *testing.T) {
	info := config.Default()

	t.Run("HoldEndpointTakesAttachments", func(t *testing.T) {
		b := New(info)
		hold := mustAddLong(t, b, step(HoldBegin, 0, 0), step(HoldEnd, 0, 96))
		end := hold.End()
		mustAdd(t, b, &Note{Kind: AirUpC, Parent: end.ID})
		begin := step(AirHoldBegin, 0, 96)
		begin.Parent = end.ID
		mustAddLong(t, b, begin, step(AirAction, 0, 144))

		if err := b.Delete(hold.Begin().ID); err != nil {
			t.Fatal(err)
		}
		if b.Count(Hold) != 0 || b.Count(Air) != 0 || b.Count(AirHold) != 0 {
			t.Errorf("counts after delete: hold %d air %d airhold %d",
				b.Count(Hold), b.Count(Air), b.Count(AirHold))
		}
	})

	t.Run("SlideStepAlone", func(t *testing.T) {
		b := New(info)
		relay := step(SlideRelay, 2, 48)
		slide := mustAddLong(t, b, step(SlideBegin, 0, 0), relay, step(SlideCurve, 1, 72), step(SlideEnd, 4, 96))
		if err := b.Delete(relay.ID); err != nil {
			t.Fatal(err)
		}
		if b.Count(Slide) != 1 || len(slide.Steps) != 3 {
			t.Errorf("slide has %d steps, want 3", len(slide.Steps))
		}
		if l, ok := b.LongOf(slide.End().ID); !ok || l != slide {
			t.Error("LongOf() lost the slide")
		}
	})

	t.Run("SlideEndTakesAir", func(t *testing.T) {
		b := New(info)
		slide := mustAddLong(t, b, step(SlideBegin, 0, 0), step(SlideEnd, 4, 96))
		mustAdd(t, b, &Note{Kind: AirDownR, Parent: slide.End().ID})
		if err := b.Delete(slide.End().ID); err != nil {
			t.Fatal(err)
		}
		if b.Count(Slide) != 0 || b.Count(Air) != 0 {
			t.Error("slide or its air survived")
		}
	})

	t.Run("LastAirActionTakesAirHold", func(t *testing.T) {
		b := New(info)
		parent := mustAdd(t, b, tap(0, 0))
		begin := step(AirHoldBegin, 0, 0)
		begin.Parent = parent.ID
		a1, a2 := step(AirAction, 0, 48), step(AirAction, 0, 96)
		mustAddLong(t, b, begin, a1, a2)

		if err := b.Delete(a1.ID); err != nil {
			t.Fatal(err)
		}
		if b.AirHoldOf(parent.ID) == nil {
			t.Fatal("air-hold removed while an action remains")
		}
		if err := b.Delete(a2.ID); err != nil {
			t.Fatal(err)
		}
		if b.AirHoldOf(parent.ID) != nil || b.Count(AirHold) != 0 {
			t.Error("air-hold survived its last action")
		}
		if _, ok := b.Get(parent.ID); !ok {
			t.Error("parent was deleted with its air-hold")
		}
	})

	t.Run("AirableTakesAirs", func(t *testing.T) {
		b := New(info)
		parent := mustAdd(t, b, tap(0, 0))
		mustAdd(t, b, &Note{Kind: AirUpC, Parent: parent.ID})
		begin := step(AirHoldBegin, 0, 0)
		begin.Parent = parent.ID
		mustAddLong(t, b, begin, step(AirAction, 0, 96))

		if err := b.Delete(parent.ID); err != nil {
			t.Fatal(err)
		}
		if b.Len() != 1 {
			t.Errorf("Len() = %d, want only the BPM marker", b.Len())
		}
	})

	t.Run("AirAlone", func(t *testing.T) {
		b := New(info)
		parent := mustAdd(t, b, tap(0, 0))
		air := mustAdd(t, b, &Note{Kind: AirUpC, Parent: parent.ID})
		if err := b.Delete(air.ID); err != nil {
			t.Fatal(err)
		}
		if _, ok := b.Get(parent.ID); !ok || b.AirOf(parent.ID) != nil {
			t.Error("deleting an air touched its parent")
		}
	})

	t.Run("DeleteLong", func(t *testing.T) {
		b := New(info)
		hold := mustAddLong(t, b, step(HoldBegin, 0, 0), step(HoldEnd, 0, 96))
		mustAdd(t, b, &Note{Kind: AirUpC, Parent: hold.End().ID})
		if err := b.DeleteLong(hold.ID); err != nil {
			t.Fatal(err)
		}
		if b.Len() != 1 {
			t.Errorf("Len() = %d, want 1", b.Len())
		}
		if err := b.DeleteLong(hold.ID); !errors.Is(err, errors.ErrCodeNoteNotFound) {
			t.Errorf("second DeleteLong error = %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		b := New(info)
		if err := b.Delete(uuid.New()); !errors.Is(err, errors.ErrCodeNoteNotFound) {
			t.Errorf("error = %v, want NOTE_NOT_FOUND", err)
		}
	})
}

func TestRelocateAndRanges(t *testing.T) {
	b := New(config.Default())
	early := mustAdd(t, b, tap(0, 100))
	cut := mustAdd(t, b, tap(4, 192))
	hold := mustAddLong(t, b, step(HoldBegin, 0, 150), step(HoldEnd, 0, 300))

	b.RelocateNoteTickAfterScoreTick(192, 96)

	tests := []struct {
		name string
		n    *Note
		want int
	}{
		{"Before", early, 100},
		{"AtCut", cut, 288},
		{"HoldBegin", hold.Begin(), 150},
		{"HoldEnd", hold.End(), 396},
		{"Tempo", b.Attributes()[0], 0},
	}
	for _, tt := range tests {
		if tt.n.Position.Tick != tt.want {
			t.Errorf("%s at tick %d, want %d", tt.name, tt.n.Position.Tick, tt.want)
		}
	}

	if got := len(b.NotesInTickRange(100, 288)); got != 3 {
		t.Errorf("NotesInTickRange(100, 288) = %d notes, want 3", got)
	}
	if got := b.DeleteInTickRange(288, 400); got != 2 {
		t.Errorf("DeleteInTickRange deleted %d, want 2", got)
	}
	if b.Count(Hold) != 0 || b.Count(Short) != 1 {
		t.Errorf("after range delete: %d holds, %d shorts", b.Count(Hold), b.Count(Short))
	}
}

func TestDeleteInTickRangeKeepsStartingTempo(t *testing.T) {
	b := New(config.Default())
	if err := b.Add(&Note{Kind: Tap, Position: Position{Tick: 0}, Size: 2}); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(&Note{Kind: BPM, Position: Position{Tick: 96}, Size: 1, Value: 150}); err != nil {
		t.Fatal(err)
	}
	if got := b.DeleteInTickRange(0, 192); got != 2 {
		t.Errorf("DeleteInTickRange deleted %d, want 2", got)
	}
	attrs := b.Attributes()
	if len(attrs) != 1 || attrs[0].Position.Tick != 0 || attrs[0].Value != InitialBPM {
		t.Errorf("attributes after delete = %v, want the tick-0 tempo", attrs)
	}
	if b.Count(Short) != 0 {
		t.Error("tap at tick 0 survived")
	}
}

func TestUpdateNoteLocationAndSelect(t *testing.T) {
	info := config.Default()
	nb := New(info)
	lb := lane.NewBook(info, nb)
	store := score.NewStore()
	if err := lb.SetScore(store, 4, 4, 4); err != nil {
		t.Fatal(err)
	}

	n := mustAdd(t, nb, tap(2, 96))
	far := mustAdd(t, nb, tap(0, 5000))
	nb.UpdateNoteLocation(lb)

	l, p, _ := lb.Locate(96)
	if n.LaneIndex != l.Index() {
		t.Errorf("LaneIndex = %d, want %d", n.LaneIndex, l.Index())
	}
	if want := p.Add(2*info.LaneWidth, 0); n.Location != want {
		t.Errorf("Location = %+v, want %+v", n.Location, want)
	}
	if far.LaneIndex != -1 {
		t.Errorf("note past the chart has LaneIndex %d", far.LaneIndex)
	}

	width := 4 * info.LaneWidth
	tests := []struct {
		name string
		dx   float64
		want Area
	}{
		{"Left", 1, AreaLeft},
		{"Center", width / 2, AreaCenter},
		{"Right", width - 1, AreaRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, area, ok := nb.Select(n.Location.Add(tt.dx, 0), AllVisible())
			if !ok || got != n || area != tt.want {
				t.Errorf("Select() = %v, %v, %v; want the tap, %v", got, area, ok, tt.want)
			}
		})
	}

	t.Run("Hidden", func(t *testing.T) {
		vis := AllVisible()
		vis.Short = false
		if _, _, ok := nb.Select(n.Location.Add(1, 0), vis); ok {
			t.Error("hidden short note was selected")
		}
	})

	t.Run("AirBeforeShort", func(t *testing.T) {
		air := mustAdd(t, nb, &Note{Kind: AirUpC, Parent: n.ID})
		nb.UpdateNoteLocation(lb)
		if got, _, _ := nb.Select(n.Location.Add(1, 0), AllVisible()); got != air {
			t.Errorf("Select() = %v, want the air", got)
		}
	})

	t.Run("Attribute", func(t *testing.T) {
		bpm := nb.Attributes()[0]
		got, area, ok := nb.Select(bpm.Location.Add(info.MeasureWidth()-1, 0), AllVisible())
		if !ok || got != bpm || area != AreaCenter {
			t.Errorf("Select() = %v, %v, %v; want the BPM marker at center", got, area, ok)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		if _, area, ok := nb.Select(score.Point{X: -100, Y: -100}, AllVisible()); ok || area != AreaNone {
			t.Error("Select() hit empty space")
		}
	})
}
