package layout

import (
	"math"

	"github.com/matzehuels/relink/pkg/geometry"
)

type generic struct{ margin float64 }

func (g generic) Layout(s, t Anchor) (Result, error) {
	if s.Direction == geometry.Auto && t.Direction == geometry.Auto {
		return straight(s, t), nil
	}
	sd := resolve(s, t.Bounds.Center())
	td := resolve(t, s.Bounds.Center())
	return finish(route(s.Bounds.Port(sd), sd, t.Bounds.Port(td), td, g.margin)), nil
}

// resolve picks the side of a facing toward p when no side is preferred.
// Relationship anchors keep Auto: they are points and have no sides.
func resolve(a Anchor, p geometry.Point) geometry.Direction {
	if a.Direction != geometry.Auto || a.IsRelationship || a.Bounds.IsEmpty() {
		return a.Direction
	}
	return a.Bounds.Facing(p)
}

// straight joins the centers of the sides of s and t that face each other.
// Ports sit at side midpoints so they follow their box when it moves.
func straight(s, t Anchor) Result {
	sd := resolve(s, t.Bounds.Center())
	td := resolve(t, s.Bounds.Center())
	return finish(geometry.Path{s.Bounds.Port(sd), t.Bounds.Port(td)})
}

func stub(p geometry.Point, d geometry.Direction, m float64) geometry.Point {
	v := d.Vector()
	return p.Add(v.X*m, v.Y*m)
}

// ahead reports whether q lies strictly beyond p in direction d.
func ahead(p, q geometry.Point, d geometry.Direction) bool {
	v := d.Vector()
	return (q.X-p.X)*v.X+(q.Y-p.Y)*v.Y > 0
}

// route builds an orthogonal path from port p0 leaving toward d0 to port q0
// entered from d1. Both ends get a stub of length m before the route turns.
func route(p0 geometry.Point, d0 geometry.Direction, q0 geometry.Point, d1 geometry.Direction, m float64) geometry.Path {
	p1, q1 := stub(p0, d0, m), stub(q0, d1, m)
	path := geometry.Path{p0, p1}

	horizontal := func(d geometry.Direction) bool { return d == geometry.Left || d == geometry.Right }
	midX, midY := (p1.X+q1.X)/2, (p1.Y+q1.Y)/2

	switch {
	case p1.X == q1.X || p1.Y == q1.Y:
	case d0.Vertical() && !horizontal(d1):
		if ahead(p1, q1, d0) {
			path = append(path, geometry.Point{X: p1.X, Y: midY}, geometry.Point{X: q1.X, Y: midY})
		} else {
			path = append(path, geometry.Point{X: midX, Y: p1.Y}, geometry.Point{X: midX, Y: q1.Y})
		}
	case horizontal(d0) && !d1.Vertical():
		if ahead(p1, q1, d0) {
			path = append(path, geometry.Point{X: midX, Y: p1.Y}, geometry.Point{X: midX, Y: q1.Y})
		} else {
			path = append(path, geometry.Point{X: p1.X, Y: midY}, geometry.Point{X: q1.X, Y: midY})
		}
	case d0.Vertical():
		path = append(path, geometry.Point{X: p1.X, Y: q1.Y})
	default:
		path = append(path, geometry.Point{X: q1.X, Y: p1.Y})
	}
	return append(path, q1, q0)
}

type selfLoop struct{ margin float64 }

// clockwise rotates d a quarter turn.
func clockwise(d geometry.Direction) geometry.Direction {
	switch d {
	case geometry.Up:
		return geometry.Right
	case geometry.Right:
		return geometry.Down
	case geometry.Down:
		return geometry.Left
	default:
		return geometry.Up
	}
}

func (l selfLoop) Layout(s, t Anchor) (Result, error) {
	b := s.Bounds
	m := math.Max(l.margin, 1)
	d0 := s.Direction
	if d0 == geometry.Auto {
		d0 = geometry.Right
	}
	d1 := t.Direction
	if d1 == geometry.Auto {
		d1 = clockwise(d0)
	}

	if d0 == d1 {
		p0, q0 := b.PortAt(d0, 1.0/3), b.PortAt(d1, 2.0/3)
		return finish(geometry.Path{p0, stub(p0, d0, m), stub(q0, d1, m), q0}), nil
	}

	p0, q0 := b.Port(d0), b.Port(d1)
	p1, q1 := stub(p0, d0, m), stub(q0, d1, m)
	path := geometry.Path{p0, p1}
	if d0 == d1.Opposite() {
		// Go around the side a quarter turn from the source.
		out := clockwise(d0)
		edge := stub(b.Port(out), out, m)
		if out.Vertical() {
			path = append(path, geometry.Point{X: p1.X, Y: edge.Y}, geometry.Point{X: q1.X, Y: edge.Y})
		} else {
			path = append(path, geometry.Point{X: edge.X, Y: p1.Y}, geometry.Point{X: edge.X, Y: q1.Y})
		}
	} else {
		// Adjacent sides: take the corner outside the shape.
		c1 := geometry.Point{X: p1.X, Y: q1.Y}
		c2 := geometry.Point{X: q1.X, Y: p1.Y}
		center := b.Center()
		if c2.Distance(center) > c1.Distance(center) {
			c1 = c2
		}
		path = append(path, c1)
	}
	return finish(append(path, q1, q0)), nil
}

type toRelationship struct{ margin float64 }

func (l toRelationship) Layout(s, t Anchor) (Result, error) {
	switch {
	case s.IsRelationship && t.IsRelationship:
		return finish(geometry.Path{s.Bounds.Center(), t.Bounds.Center()}), nil
	case s.IsRelationship:
		path := l.fromElement(t, s.Bounds.Center())
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		return finish(path), nil
	default:
		return finish(l.fromElement(s, t.Bounds.Center())), nil
	}
}

// fromElement routes from element anchor a to point p with a single elbow.
func (l toRelationship) fromElement(a Anchor, p geometry.Point) geometry.Path {
	if a.Direction == geometry.Auto {
		return geometry.Path{a.Bounds.Clip(p), p}
	}
	p0 := a.Bounds.Port(a.Direction)
	p1 := stub(p0, a.Direction, l.margin)
	if a.Direction.Vertical() {
		return geometry.Path{p0, p1, {X: p1.X, Y: p.Y}, p}
	}
	return geometry.Path{p0, p1, {X: p.X, Y: p1.Y}, p}
}

type message struct{}

func (message) Layout(s, t Anchor) (Result, error) {
	res := straight(s, t)
	mid := res.Path.Midpoint()
	res.Label = &mid
	return res, nil
}
