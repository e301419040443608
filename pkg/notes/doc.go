// Package notes stores the notes placed on a chart.
//
// Every note has a [Kind] from a closed set, and every kind belongs to one
// [Category]. Short, air and attribute notes are single [Note] values; holds,
// slides and air-holds are [Long] values made of ordered step notes.
//
// Airs and air-holds are attached to an airable note (a short note or the end
// of a hold or slide) by storing the airable note's ID in Parent. The
// relation is resolved by lookup, so deleting either side never leaves a
// dangling pointer; [Book.Delete] cascades the way an editor user expects.
//
// Note positions are logical: a column and an absolute tick. Pixel locations
// are derived from a [lane.Book] in [Book.UpdateNoteLocation], which makes a
// *Book usable as a [lane.Listener].
package notes
