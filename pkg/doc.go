// Package pkg provides the core libraries of lanebook, a lane layout engine
// for rhythm-game chart editors.
//
// # Overview
//
// A chart is a sequence of measures, each with its own time signature. For
// display, lanebook packs those measures into lanes: fixed-capacity vertical
// strips laid side by side, each holding at most LaneMaxBar whole bars. A
// measure longer than a lane is split across consecutive lanes. Notes are
// anchored to absolute ticks and follow their measures through every edit.
//
// # Architecture
//
//	chart script (TOML) or document (JSON)
//	         ↓
//	    [io] package (parse, replay, encode)
//	         ↓
//	    [session] package (score + lanes + notes behind one lock)
//	         ↓
//	    [render] package (SVG, PNG, PDF, Graphviz)
//
// [pipeline] ties these together and caches built documents and rendered
// artifacts through [cache].
//
// # Quick Start
//
//	sess, _ := session.New(config.Default())
//	_ = sess.SetScore(4, 4, 16)
//	_ = sess.InsertAfter(7, 3, 4, 2)
//
//	var svg []byte
//	_ = sess.Read(func(v session.View) error {
//	    svg = render.RenderSVG(v)
//	    return nil
//	})
//
// # Main Packages
//
// [config] - Layout settings: tick resolution, lane capacity and geometry.
//
// [score] - Measures, time signatures and the measure store.
//
// [lane] - The lane book and its reflow operations: fill, divide, insert
// and delete.
//
// [notes] - Notes, long notes and their tick bookkeeping.
//
// [session] - The editing facade used by the CLI and by embedders.
//
// [io] - Chart scripts and the JSON document format.
//
// [render] - Lane and note painting; [render/nodelink] draws the
// lane/measure graph.
//
// [errors] - Coded errors shared by every package.
//
// [config]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/config
// [score]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/score
// [lane]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/lane
// [notes]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/notes
// [session]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/session
// [io]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/lanebook/pkg/errors
package pkg
