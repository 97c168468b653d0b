// Package geometry provides the planar primitives used by relationship layout:
// points, axis-aligned bounds, attachment directions and polylines.
//
// # Coordinates
//
// All values are float64 in diagram units with the y axis pointing down, the
// convention of the editor canvas. A [Bounds] is its top-left corner plus a
// non-negative width and height.
//
// # Paths
//
// A [Path] is an ordered list of waypoints. [Path.Length] sums its segment
// lengths and [Path.Position] walks the polyline by arc length, which is how
// labels and message arrows are placed at the middle of a connector:
//
//	p := geometry.Path{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}}
//	mid := p.Midpoint() // {75 0}
//
// Every value type in this package is immutable in use: methods return new
// values and never modify their receiver.
package geometry
