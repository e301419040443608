// Package render draws lane layouts.
//
// # Overview
//
// [SVGSurface] implements [score.Surface], so lanes and measures paint
// themselves onto it the same way they would onto an editor canvas.
// [RenderSVG] paints every lane of a session view plus its visible notes:
//
//	var out []byte
//	err := sess.Read(func(v session.View) error {
//		out = render.RenderSVG(v, render.WithTitle("demo"))
//		return nil
//	})
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg).
//
// # Lane Graphs
//
// The [nodelink] subpackage exports the lane/measure relation as Graphviz
// DOT and renders it to SVG in-process.
//
// [nodelink]: github.com/matzehuels/lanebook/pkg/render/nodelink
package render
