// Package nodelink renders diagrams as Graphviz node-link drawings.
//
// # Overview
//
// Unlike a dependency graph, a diagram already carries its geometry: element
// bounds and relationship paths computed by the engine. [ToDOT] therefore
// does not ask Graphviz to lay anything out. It pins every element at its
// absolute bounds and draws each relationship path as a chain of pinned
// point nodes, using the neato engine with positions in points.
//
// # Usage
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Coordinates
//
// Diagram coordinates grow downwards; Graphviz coordinates grow upwards.
// [ToDOT] negates y so the drawing keeps the editor's orientation.
//
// # Options
//
//   - Detailed: element labels include the type, relationship labels the
//     relationship type
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external Graphviz installation is needed.
package nodelink
