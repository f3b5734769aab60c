package dirfield

import "math"

// Point represents a 2D point or displacement vector in plot coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Div returns the point divided by a scalar.
func (p Point) Div(s float64) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}

// Length returns the length of the vector.
func (p Point) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Resize returns the vector scaled to the given length, preserving direction.
func (p Point) Resize(length float64) Point {
	return p.Mul(length / p.Length())
}

// ResizeByX returns the vector scaled so that the magnitude of its
// x-component equals newX. The sign of both components is preserved.
func (p Point) ResizeByX(newX float64) Point {
	return p.Mul(newX / math.Abs(p.X))
}

// Approx reports whether two points are equal within the given tolerance
// per component.
func (p Point) Approx(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) < eps && math.Abs(p.Y-q.Y) < eps
}
