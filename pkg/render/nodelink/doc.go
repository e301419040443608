// Package nodelink draws which measures each lane holds as a Graphviz graph.
//
// Every lane becomes a box. Every measure becomes a rounded box linked from
// each lane that holds one of its fragments, with the fragment's beat range
// on the edge. A measure split over three lanes therefore has three incoming
// edges.
//
//	dot := nodelink.ToDOT(v, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz] in-process, so no Graphviz
// installation is needed.
package nodelink
