// Package render holds exporters that turn a diagram into viewable output.
//
// The [nodelink] subpackage draws a diagram with its stored geometry through
// Graphviz:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/relink/pkg/render/nodelink
package render
