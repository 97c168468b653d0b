package geometry

import (
	"fmt"
	"math"
)

// Point is an (x, y) pair in diagram coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Subtract returns p shifted by (-dx, -dy).
func (p Point) Subtract(dx, dy float64) Point { return Point{X: p.X - dx, Y: p.Y - dy} }

// Delta returns the offset that moves p onto q.
func (p Point) Delta(q Point) Point { return Point{X: q.X - p.X, Y: q.Y - p.Y} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// IsZero reports whether both coordinates are zero.
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool { return finite(p.X) && finite(p.Y) }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Direction is the preferred side of a shape a relationship attaches to.
// The zero value means "choose automatically".
type Direction string

const (
	Auto  Direction = ""
	Up    Direction = "Up"
	Right Direction = "Right"
	Down  Direction = "Down"
	Left  Direction = "Left"
)

// Valid reports whether d is one of the known directions (including Auto).
func (d Direction) Valid() bool {
	switch d {
	case Auto, Up, Right, Down, Left:
		return true
	}
	return false
}

// Opposite returns the direction facing d. Auto is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Vertical reports whether d points along the y axis.
func (d Direction) Vertical() bool { return d == Up || d == Down }

// Vector returns the unit step for d, or the zero point for Auto.
func (d Direction) Vector() Point {
	switch d {
	case Up:
		return Point{Y: -1}
	case Down:
		return Point{Y: 1}
	case Left:
		return Point{X: -1}
	case Right:
		return Point{X: 1}
	default:
		return Point{}
	}
}
