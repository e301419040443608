// Package lane packs the measures of a chart into capacity-bounded lanes.
//
// A [Lane] is one visual column of the editor panel. It holds an ordered run
// of [Entry] values, each a measure together with the beat [score.Range] of
// that measure shown in the lane. Measures longer than a lane are split into
// several fragments placed in consecutive lanes.
//
// A [Book] owns the lanes and implements the reflow operations:
//
//   - [Book.SetScore] appends measures and packs them greedily into the tail.
//   - [Book.InsertScoreForward] and [Book.InsertScoreBackward] splice measures
//     into the middle of the chart and shift note ticks behind the cut.
//   - [Book.DivideLane] splits a lane in front of a measure.
//   - [Book.FillLane] compacts lanes left to right.
//   - [Book.DeleteScore] removes measures and every fragment they own.
//
// After every public operation the book is packed: concatenating the lane
// entries reproduces the measure store, and no entry could move into the
// lane before it without overflowing it. [Book.Validate] checks both
// properties.
//
// Registered [Listener] values are told to recompute note geometry after each
// operation, synchronously and in registration order. Listeners must not call
// back into the book.
package lane
