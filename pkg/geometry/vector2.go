package geometry

import "math"

// Vector2 represents a point or vector in a plane
type Vector2 struct {
	X, Y float64
}

// NewVector2 creates a new 2D vector
func NewVector2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the difference between two vectors
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul multiplies the vector by a scalar
func (v Vector2) Mul(scalar float64) Vector2 {
	return Vector2{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot returns the dot product of two vectors
func (v Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product
func (v Vector2) Cross(other Vector2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Length returns the magnitude of the vector
func (v Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Lerp interpolates linearly towards other
func (v Vector2) Lerp(other Vector2, t float64) Vector2 {
	return Vector2{X: v.X + (other.X-v.X)*t, Y: v.Y + (other.Y-v.Y)*t}
}

// Orient returns twice the signed area of the triangle (a, b, c).
// Positive when the points turn counter-clockwise.
func Orient(a, b, c Vector2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}
