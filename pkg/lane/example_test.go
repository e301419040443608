package lane_test

import (
	"fmt"

	"github.com/matzehuels/lanebook/pkg/config"
	"github.com/matzehuels/lanebook/pkg/lane"
	"github.com/matzehuels/lanebook/pkg/score"
)

func ExampleBook_SetScore() {
	// Two bars per lane: a 3/1 measure does not fit and is split.
	b := lane.NewBook(config.Default())
	s := score.NewStore()
	_ = b.SetScore(s, 4, 4, 3)
	_ = b.SetScore(s, 3, 1, 1)

	for _, l := range b.Lanes() {
		fmt.Printf("lane %d (%.2f bars):", l.Index(), l.BarSize())
		for _, e := range l.Entries() {
			fmt.Printf(" %d:%d-%d", e.Measure.Index()+1, e.Range.Inf, e.Range.Sup)
		}
		fmt.Println()
	}
	// Output:
	// lane 0 (2.00 bars): 1:1-4 2:1-4
	// lane 1 (1.00 bars): 3:1-4
	// lane 2 (2.00 bars): 4:1-2
	// lane 3 (1.00 bars): 4:3-3
}

func ExampleBook_InsertScoreBackward() {
	b := lane.NewBook(config.Default())
	s := score.NewStore()
	_ = b.SetScore(s, 4, 4, 4)

	// Notes sit at the start of every measure.
	notes := ticks{0, 192, 384, 576}
	_ = b.InsertScoreBackward(notes, s, s.At(2), 3, 4, 1)

	fmt.Println("measures:", s.Len(), "lanes:", b.Len())
	fmt.Println("notes:", notes)
	// Output:
	// measures: 5 lanes: 3
	// notes: [0 192 528 720]
}

type ticks []int

func (ts ticks) RelocateNoteTickAfterScoreTick(at, delta int) {
	for i := range ts {
		if ts[i] >= at {
			ts[i] += delta
		}
	}
}
