package geometry

import "math"

// Bounds is an axis-aligned rectangle: top-left corner plus size.
type Bounds struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

func (b Bounds) Left() float64   { return b.X }
func (b Bounds) Right() float64  { return b.X + b.Width }
func (b Bounds) Top() float64    { return b.Y }
func (b Bounds) Bottom() float64 { return b.Y + b.Height }

// Origin returns the top-left corner.
func (b Bounds) Origin() Point { return Point{X: b.X, Y: b.Y} }

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Point { return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2} }

// Valid reports whether all fields are finite and the size is non-negative.
func (b Bounds) Valid() bool {
	return finite(b.X) && finite(b.Y) && finite(b.Width) && finite(b.Height) &&
		b.Width >= 0 && b.Height >= 0
}

// IsEmpty reports whether the rectangle has no area.
func (b Bounds) IsEmpty() bool { return b.Width == 0 && b.Height == 0 }

// Translate returns b moved by (dx, dy).
func (b Bounds) Translate(dx, dy float64) Bounds {
	b.X += dx
	b.Y += dy
	return b
}

// Resize returns b with its size changed by (dw, dh), clamped at zero.
func (b Bounds) Resize(dw, dh float64) Bounds {
	b.Width = math.Max(0, b.Width+dw)
	b.Height = math.Max(0, b.Height+dh)
	return b
}

// Inset returns b grown by m on every side (shrunk for negative m).
func (b Bounds) Inset(m float64) Bounds {
	return Bounds{X: b.X - m, Y: b.Y - m, Width: math.Max(0, b.Width+2*m), Height: math.Max(0, b.Height+2*m)}
}

// Contains reports whether p lies inside b or on its border.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() && p.Y >= b.Top() && p.Y <= b.Bottom()
}

// Encloses reports whether o lies entirely inside b.
func (b Bounds) Encloses(o Bounds) bool {
	return o.Left() >= b.Left() && o.Right() <= b.Right() &&
		o.Top() >= b.Top() && o.Bottom() <= b.Bottom()
}

// Union returns the smallest rectangle containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	x0 := math.Min(b.Left(), o.Left())
	y0 := math.Min(b.Top(), o.Top())
	x1 := math.Max(b.Right(), o.Right())
	y1 := math.Max(b.Bottom(), o.Bottom())
	return Bounds{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Port returns the midpoint of the side of b facing d. Auto yields the center.
func (b Bounds) Port(d Direction) Point {
	return b.PortAt(d, 0.5)
}

// PortAt returns the point at fraction t (0..1) along the side facing d,
// measured left-to-right or top-to-bottom.
func (b Bounds) PortAt(d Direction, t float64) Point {
	switch d {
	case Up:
		return Point{X: b.X + b.Width*t, Y: b.Top()}
	case Down:
		return Point{X: b.X + b.Width*t, Y: b.Bottom()}
	case Left:
		return Point{X: b.Left(), Y: b.Y + b.Height*t}
	case Right:
		return Point{X: b.Right(), Y: b.Y + b.Height*t}
	default:
		return b.Center()
	}
}

// Facing returns the side of b whose outward normal points most directly at p.
func (b Bounds) Facing(p Point) Direction {
	c := b.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	// Normalise by the half extents so wide shapes prefer their long sides.
	hw, hh := math.Max(b.Width/2, 1), math.Max(b.Height/2, 1)
	if math.Abs(dx)/hw >= math.Abs(dy)/hh {
		if dx >= 0 {
			return Right
		}
		return Left
	}
	if dy >= 0 {
		return Down
	}
	return Up
}

// Clip returns the point where the ray from b's center towards p leaves b.
// If p is inside b or b has no area, the center is returned.
func (b Bounds) Clip(p Point) Point {
	c := b.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	if b.IsEmpty() || (dx == 0 && dy == 0) {
		return c
	}
	t := math.Inf(1)
	if dx != 0 {
		t = math.Min(t, (b.Width/2)/math.Abs(dx))
	}
	if dy != 0 {
		t = math.Min(t, (b.Height/2)/math.Abs(dy))
	}
	if t >= 1 {
		return c
	}
	return Point{X: c.X + dx*t, Y: c.Y + dy*t}
}
