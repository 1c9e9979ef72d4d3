package geometry

import (
	"errors"
	"math"
)

// ErrDegenerateNormal is returned for planes whose normal has no usable direction
var ErrDegenerateNormal = errors.New("plane normal has zero length")

// ErrNonFinitePlane is returned for planes with NaN or infinite components
var ErrNonFinitePlane = errors.New("plane has non-finite origin or normal")

// Plane is an oriented plane through Origin with unit Normal.
// The positive half-space is {p : dot(p - Origin, Normal) > 0}.
type Plane struct {
	Origin Vector3
	Normal Vector3
}

// NewPlane creates a plane, normalizing the normal
func NewPlane(origin, normal Vector3) Plane {
	return Plane{Origin: origin, Normal: normal.Normalize()}
}

// Validate checks that the plane can be used for distance queries
func (p Plane) Validate() error {
	if !p.Origin.IsFinite() || !p.Normal.IsFinite() {
		return ErrNonFinitePlane
	}
	if p.Normal.Length() < 1e-12 {
		return ErrDegenerateNormal
	}
	return nil
}

// SignedDistance returns the distance of point from the plane, positive on the normal side
func (p Plane) SignedDistance(point Vector3) float64 {
	return point.Sub(p.Origin).Dot(p.Normal)
}

// Project returns the closest point on the plane
func (p Plane) Project(point Vector3) Vector3 {
	return point.Sub(p.Normal.Mul(p.SignedDistance(point)))
}

// Flip returns the same plane with the opposite orientation
func (p Plane) Flip() Plane {
	return Plane{Origin: p.Origin, Normal: p.Normal.Mul(-1)}
}

// Side classifies a point as -1, 0 or +1 where 0 means within tolerance of the plane
func (p Plane) Side(point Vector3, tolerance float64) int {
	return SideOf(p.SignedDistance(point), tolerance)
}

// SideOf classifies a signed distance. A distance whose magnitude equals the
// tolerance is on the plane.
func SideOf(distance, tolerance float64) int {
	switch {
	case math.Abs(distance) <= tolerance:
		return 0
	case distance > 0:
		return 1
	default:
		return -1
	}
}
