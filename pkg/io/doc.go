// Package io reads and writes chart documents and chart scripts.
//
// # Documents
//
// A document is a JSON snapshot of a session: its configuration, its
// measures as run-length signature groups and every note grouped by
// category.
//
//	{
//	  "version": 1,
//	  "config": {"resolution": 192, "lane_max_bar": 2, ...},
//	  "measures": [{"numer": 4, "denom": 4, "count": 16}],
//	  "notes": {
//	    "shorts": [{"id": "...", "kind": "tap", "position": {"lane": 2, "tick": 96}, "size": 4}],
//	    "attributes": [{"id": "...", "kind": "bpm", "position": {"lane": 0, "tick": 0}, "size": 16, "value": 120}]
//	  }
//	}
//
// Use [WriteJSON] and [ReadJSON] with any stream, or [ExportJSON] and
// [ImportJSON] with file paths. Lane layout is not stored; it is rebuilt
// from the measures on import.
//
// # Scripts
//
// A chart script is a TOML file describing how to build a chart: optional
// configuration overrides, runs of measures, notes placed by measure and
// tick offset, and measure edits replayed afterwards.
//
//	[config]
//	lane_max_bar = 4
//
//	[[measures]]
//	signature = "4/4"
//	count = 8
//
//	[[notes]]
//	id = "a"
//	kind = "tap"
//	measure = 1
//	offset = 96
//	lane = 2
//
//	[[notes]]
//	kind = "air-up-c"
//	parent = "a"
//
//	[[edits]]
//	op = "insert-before"
//	measure = 3
//	signature = "3/4"
//	count = 2
//
// Use [ReadScript] or [LoadScript] to parse one and [Script.Apply] to run it
// against a session.
package io
