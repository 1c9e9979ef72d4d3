package geometry

import "math"

// BoundingBox represents an axis-aligned bounding box
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// NewBoundingBox creates a new bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: Vector3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// Extend expands the bounding box to include a point
func (b *BoundingBox) Extend(point Vector3) {
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector3 {
	return Vector3{
		X: (b.Min.X + b.Max.X) / 2.0,
		Y: (b.Min.Y + b.Max.Y) / 2.0,
		Z: (b.Min.Z + b.Max.Z) / 2.0,
	}
}

// Diagonal returns the length of the bounding box diagonal
func (b BoundingBox) Diagonal() float64 {
	size := b.Size()
	return size.Length()
}

// Volume returns the volume of the bounding box
func (b BoundingBox) Volume() float64 {
	size := b.Size()
	return size.X * size.Y * size.Z
}

// IsEmpty reports whether no point has been added yet
func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Contains reports whether the point lies inside or on the box
func (b BoundingBox) Contains(point Vector3) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X &&
		point.Y >= b.Min.Y && point.Y <= b.Max.Y &&
		point.Z >= b.Min.Z && point.Z <= b.Max.Z
}

// Corners returns the eight corner points
func (b BoundingBox) Corners() [8]Vector3 {
	var corners [8]Vector3
	for i := 0; i < 8; i++ {
		corners[i] = Vector3{
			X: pick(i&1 != 0, b.Max.X, b.Min.X),
			Y: pick(i&2 != 0, b.Max.Y, b.Min.Y),
			Z: pick(i&4 != 0, b.Max.Z, b.Min.Z),
		}
	}
	return corners
}

// PlaneSide returns +1 or -1 when the whole box lies strictly on one side of
// the plane (beyond tolerance), and 0 when the plane passes through it.
func (b BoundingBox) PlaneSide(p Plane, tolerance float64) int {
	if b.IsEmpty() {
		return 0
	}
	side := 0
	for _, c := range b.Corners() {
		s := p.Side(c, tolerance)
		if s == 0 || (side != 0 && s != side) {
			return 0
		}
		side = s
	}
	return side
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
