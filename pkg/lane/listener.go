package lane

// Listener is notified after every operation that changes lane geometry.
type Listener interface {
	UpdateNoteLocation(b *Book)
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(b *Book)

func (f ListenerFunc) UpdateNoteLocation(b *Book) { f(b) }

// NoteRelocator shifts note ticks when measures are inserted.
type NoteRelocator interface {
	// RelocateNoteTickAfterScoreTick adds deltaTick to every note at or
	// after scoreTick.
	RelocateNoteTickAfterScoreTick(scoreTick, deltaTick int)
}
