// Package score models the measures of a chart.
//
// A [Measure] is one bar with a time signature. Its length is measured in
// ticks: a measure numer/denom lasts Resolution*numer/denom ticks, so all
// capacity arithmetic downstream stays in exact integers.
//
// A [Store] is the authoritative ordered sequence of measures. It assigns
// each measure its index and start tick, and is only ever mutated through
// [Store.Append], [Store.InsertRange] and [Store.Delete]. It does not notify
// anyone: the lane packer keeps its lanes consistent after every call.
//
// Rendering goes through the [Surface] interface so that the package stays
// free of any drawing backend.
package score
