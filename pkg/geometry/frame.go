package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a right-handed orthonormal coordinate system. Its Z axis is the
// normal of the plane the frame lives on, X and Y span that plane.
type Frame struct {
	Origin Vector3
	basis  mgl64.Mat3
}

// NewFrame builds a frame at origin whose Z axis is the given normal
func NewFrame(origin, normal Vector3) Frame {
	n := normal.Normalize()
	x, y := perpendicularAxes(n)
	return Frame{
		Origin: origin,
		basis:  mgl64.Mat3FromCols(x.Vec(), y.Vec(), n.Vec()),
	}
}

// FrameFromPlane builds a frame on the plane, Z along the plane normal
func FrameFromPlane(p Plane) Frame {
	return NewFrame(p.Origin, p.Normal)
}

// perpendicularAxes returns two unit vectors completing n to a right-handed basis
// (Duff et al., "Building an Orthonormal Basis, Revisited").
func perpendicularAxes(n Vector3) (Vector3, Vector3) {
	sign := math.Copysign(1, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	x := NewVector3(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	y := NewVector3(b, sign+n.Y*n.Y*a, -n.Y)
	return x, y
}

// Axis returns the frame axis with the given index (0=X, 1=Y, 2=Z)
func (f Frame) Axis(i int) Vector3 {
	return FromVec(f.basis.Col(i))
}

// Normal returns the Z axis
func (f Frame) Normal() Vector3 {
	return f.Axis(2)
}

// ToFrame expresses a world point in frame coordinates
func (f Frame) ToFrame(p Vector3) Vector3 {
	return FromVec(f.basis.Transpose().Mul3x1(p.Sub(f.Origin).Vec()))
}

// FromFrame converts frame coordinates back to world space
func (f Frame) FromFrame(local Vector3) Vector3 {
	return FromVec(f.basis.Mul3x1(local.Vec())).Add(f.Origin)
}

// ToPlane projects a world point onto the frame's XY plane
func (f Frame) ToPlane(p Vector3) Vector2 {
	local := f.ToFrame(p)
	return Vector2{X: local.X, Y: local.Y}
}

// FromPlane maps plane coordinates back onto the frame's XY plane in world space
func (f Frame) FromPlane(uv Vector2) Vector3 {
	return f.FromFrame(Vector3{X: uv.X, Y: uv.Y})
}
