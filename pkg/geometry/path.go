package geometry

import "math"

// Path is a polyline through an ordered list of waypoints.
type Path []Point

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Length returns the sum of the segment lengths.
func (p Path) Length() float64 {
	var l float64
	for i := 1; i < len(p); i++ {
		l += p[i-1].Distance(p[i])
	}
	return l
}

// Position returns the point at arc length distance along p.
// The distance is clamped to [0, Length]. An empty path yields the zero point.
func (p Path) Position(distance float64) Point {
	switch len(p) {
	case 0:
		return Point{}
	case 1:
		return p[0]
	}
	if math.IsNaN(distance) || distance <= 0 {
		return p[0]
	}
	remaining := distance
	for i := 1; i < len(p); i++ {
		seg := p[i-1].Distance(p[i])
		if seg == 0 {
			continue
		}
		if remaining <= seg {
			t := remaining / seg
			return Point{
				X: p[i-1].X + (p[i].X-p[i-1].X)*t,
				Y: p[i-1].Y + (p[i].Y-p[i-1].Y)*t,
			}
		}
		remaining -= seg
	}
	return p[len(p)-1]
}

// Midpoint returns the point halfway along p.
func (p Path) Midpoint() Point { return p.Position(p.Length() / 2) }

// First returns the first waypoint, or the zero point for an empty path.
func (p Path) First() Point {
	if len(p) == 0 {
		return Point{}
	}
	return p[0]
}

// Last returns the last waypoint, or the zero point for an empty path.
func (p Path) Last() Point {
	if len(p) == 0 {
		return Point{}
	}
	return p[len(p)-1]
}

// Translate returns a copy of p with every waypoint moved by (dx, dy).
func (p Path) Translate(dx, dy float64) Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	for i, pt := range p {
		out[i] = pt.Add(dx, dy)
	}
	return out
}

// Bounds returns the smallest rectangle containing every waypoint.
func (p Path) Bounds() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	x0, y0 := p[0].X, p[0].Y
	x1, y1 := x0, y0
	for _, pt := range p[1:] {
		x0, y0 = math.Min(x0, pt.X), math.Min(y0, pt.Y)
		x1, y1 = math.Max(x1, pt.X), math.Max(y1, pt.Y)
	}
	return Bounds{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Valid reports whether p has at least two waypoints, all finite.
func (p Path) Valid() bool {
	if len(p) < 2 {
		return false
	}
	for _, pt := range p {
		if !pt.IsFinite() {
			return false
		}
	}
	return true
}

// Simplify drops repeated waypoints and interior waypoints lying on a straight
// line between their neighbours. The endpoints are always kept.
func (p Path) Simplify() Path {
	if len(p) < 3 {
		return p.Clone()
	}
	out := Path{p[0]}
	for _, pt := range p[1:] {
		if pt == out[len(out)-1] {
			continue
		}
		if n := len(out); n >= 2 && collinear(out[n-2], out[n-1], pt) {
			out[n-1] = pt
			continue
		}
		out = append(out, pt)
	}
	if len(out) == 1 {
		out = append(out, p[len(p)-1])
	}
	return out
}

// collinear reports whether b lies on the segment from a to c.
func collinear(a, b, c Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(cross) > 1e-9 {
		return false
	}
	dot := (b.X-a.X)*(c.X-a.X) + (b.Y-a.Y)*(c.Y-a.Y)
	return dot >= 0 && dot <= (c.X-a.X)*(c.X-a.X)+(c.Y-a.Y)*(c.Y-a.Y)
}
