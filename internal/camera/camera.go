// Package camera implements the perspective camera, its orbit state and
// the visible-area math used to fit assets into the frame.
package camera

import (
	"math"

	"glowview/internal/mathutil"
)

// Defaults for a new camera.
const (
	DefaultFOV  = 75.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// Camera is a perspective camera orbiting Target.
type Camera struct {
	FOV    float64 // vertical field of view, degrees
	Aspect float64
	Near   float64
	Far    float64

	Position mathutil.Vec3
	Target   mathutil.Vec3
}

// New returns a camera at (0, 0, distance) looking at the origin.
func New(fov, aspect, distance float64) *Camera {
	if fov <= 0 {
		fov = DefaultFOV
	}
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		FOV:      fov,
		Aspect:   aspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Position: mathutil.Vec3{0, 0, distance},
	}
}

// View returns the world-to-view matrix.
func (c *Camera) View() mathutil.Mat4 {
	return mathutil.LookAt(c.Position, c.Target, mathutil.Up)
}

// Projection returns the view-to-clip matrix.
func (c *Camera) Projection() mathutil.Mat4 {
	return mathutil.Perspective(mathutil.Deg2Rad(c.FOV), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection × View.
func (c *Camera) ViewProjection() mathutil.Mat4 {
	return mathutil.Mat4Mul(c.Projection(), c.View())
}

// Distance returns the distance from Position to Target.
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.Target).Length()
}

// SetDistance moves the camera along its current viewing direction so that
// it sits d units from Target.
func (c *Camera) SetDistance(d float64) {
	dir := c.Position.Sub(c.Target).Normalize()
	if dir == (mathutil.Vec3{}) {
		dir = mathutil.Vec3{0, 0, 1}
	}
	c.Position = c.Target.Add(dir.Scale(d))
}

// VisibleSize returns the width and height of the view frustum slice at the
// given distance in front of the camera.
func (c *Camera) VisibleSize(depth float64) (width, height float64) {
	height = VisibleHeight(c.FOV, depth)
	return height * c.Aspect, height
}

// VisibleHeight is 2·tan(fov/2)·depth with fov in degrees.
func VisibleHeight(fov, depth float64) float64 {
	return 2 * math.Tan(mathutil.Deg2Rad(fov)/2) * depth
}
