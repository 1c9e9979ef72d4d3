package preview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/meshcut/pkg/geometry"
)

// Camera orbits a target point, Z up
type Camera struct {
	Target   geometry.Vector3
	FOV      float64 // vertical field of view in radians
	Distance float64
	Yaw      float64 // rotation around Z
	Pitch    float64 // elevation above the XY plane
}

// NewCamera creates a camera that fits the bounding box into view from a
// raised three-quarter angle.
func NewCamera(bbox geometry.BoundingBox) *Camera {
	c := &Camera{
		FOV:   math.Pi / 4,
		Yaw:   -math.Pi / 3,
		Pitch: math.Pi / 6,
	}
	if bbox.IsEmpty() {
		c.Distance = 1
		return c
	}
	c.Target = bbox.Center()
	radius := math.Max(bbox.Diagonal()/2, 1e-6)
	c.Distance = radius / math.Sin(c.FOV/2) * 1.1
	return c
}

// Position returns the eye point
func (c *Camera) Position() geometry.Vector3 {
	x := c.Distance * math.Cos(c.Pitch) * math.Cos(c.Yaw)
	y := c.Distance * math.Cos(c.Pitch) * math.Sin(c.Yaw)
	z := c.Distance * math.Sin(c.Pitch)
	return c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits the camera. Pitch is clamped short of the poles.
func (c *Camera) Rotate(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	maxAngle := math.Pi/2 - 0.1
	c.Pitch = math.Max(-maxAngle, math.Min(maxAngle, c.Pitch+deltaPitch))
}

// Zoom changes the camera distance
func (c *Camera) Zoom(delta float64) {
	c.Distance = math.Max(0.1, c.Distance*(1+delta))
}

// ViewProjection returns the combined view and perspective matrix
func (c *Camera) ViewProjection(aspect float64) mgl64.Mat4 {
	eye := c.Position()
	view := mgl64.LookAtV(eye.Vec(), c.Target.Vec(), mgl64.Vec3{0, 0, 1})
	near := math.Max(c.Distance*0.01, 1e-6)
	proj := mgl64.Perspective(c.FOV, aspect, near, c.Distance*10)
	return proj.Mul4(view)
}

// project maps a world point to pixel coordinates and its distance along
// the view direction. ok is false for points behind the camera.
func project(vp mgl64.Mat4, p geometry.Vector3, width, height float64) (x, y, depth float64, ok bool) {
	clip := vp.Mul4x1(p.Vec().Vec4(1))
	if clip.W() <= 1e-9 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * width
	y = (1 - ndc.Y()) / 2 * height
	return x, y, clip.W(), true
}

// Project is project with the camera's own matrix
func (c *Camera) Project(p geometry.Vector3, width, height float64) (float64, float64, float64, bool) {
	return project(c.ViewProjection(width/height), p, width, height)
}
