// Package camera provides the viewer camera and the screen-space LOD distance estimate.
package camera

import (
	gomath "math"

	"github.com/Faultbox/terratile/pkg/math"
)

// LODDistance returns the distance at which one world unit covers one pixel for a
// perspective camera with the given vertical field of view and viewport height.
// Tiles switch from their finest variant to coarser ones beyond multiples of it.
func LODDistance(fovYDegrees, viewportHeight float32) float32 {
	fov := float64(fovYDegrees) * gomath.Pi / 180
	return float32(float64(viewportHeight) / 2 / gomath.Tan(fov/2))
}

// OrbitCamera orbits around a center point above the terrain plane.
// The world is Z-up: tiles lie in XY and are displaced along +Z.
type OrbitCamera struct {
	// Center point to orbit around
	CenterX, CenterY, CenterZ float32

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch above the XY plane (radians)
	RotationY float32 // Yaw around Z (radians)

	// Projection
	FovY           float32 // Vertical field of view (degrees)
	ViewportWidth  float32
	ViewportHeight float32
	Near, Far      float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        2000.0,
		RotationX:       0.8,
		RotationY:       0.0,
		FovY:            45,
		ViewportWidth:   1280,
		ViewportHeight:  720,
		Near:            1,
		Far:             100000,
		MinDistance:     10.0,
		MaxDistance:     50000.0,
		MinPitch:        0.05,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	horiz := c.Distance * float32(gomath.Cos(float64(c.RotationX)))
	x := horiz * float32(gomath.Sin(float64(c.RotationY)))
	y := -horiz * float32(gomath.Cos(float64(c.RotationY)))
	z := c.Distance * float32(gomath.Sin(float64(c.RotationX)))

	return math.Vec3{
		X: c.CenterX + x,
		Y: c.CenterY + y,
		Z: c.CenterZ + z,
	}
}

// VerticalFOV returns the vertical field of view in degrees.
func (c *OrbitCamera) VerticalFOV() float32 {
	return c.FovY
}

// ViewportSize returns the viewport size in pixels.
func (c *OrbitCamera) ViewportSize() (width, height float32) {
	return c.ViewportWidth, c.ViewportHeight
}

// SetViewport records a new viewport size, e.g. after a window resize.
func (c *OrbitCamera) SetViewport(width, height int) {
	c.ViewportWidth = float32(width)
	c.ViewportHeight = float32(height)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	center := math.Vec3{X: c.CenterX, Y: c.CenterY, Z: c.CenterZ}
	return math.LookAt(c.Position(), center, math.Vec3{Z: 1})
}

// ProjectionMatrix returns the perspective projection for the current viewport.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	aspect := float32(1)
	if c.ViewportHeight > 0 {
		aspect = c.ViewportWidth / c.ViewportHeight
	}
	fov := c.FovY * gomath.Pi / 180
	return math.Perspective(fov, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the camera center across the terrain plane.
func (c *OrbitCamera) HandleMovement(forward, right float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01

	sin := float32(gomath.Sin(float64(c.RotationY)))
	cos := float32(gomath.Cos(float64(c.RotationY)))

	// Forward points from the camera towards the center, projected on XY.
	c.CenterX += (-sin*forward + cos*right) * speed
	c.CenterY += (cos*forward + sin*right) * speed
}

// SetCenter sets the camera's center point.
func (c *OrbitCamera) SetCenter(x, y, z float32) {
	c.CenterX = x
	c.CenterY = y
	c.CenterZ = z
}

// FitToBounds centers the camera over an XY extent and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(minX, minY, maxX, maxY, top float32) {
	c.CenterX = (minX + maxX) / 2
	c.CenterY = (minY + maxY) / 2
	c.CenterZ = top / 2

	size := max(maxX-minX, maxY-minY)
	fov := float64(c.FovY) * gomath.Pi / 180
	c.Distance = clamp(float32(float64(size)/2/gomath.Tan(fov/2)), c.MinDistance, c.MaxDistance)
	c.RotationX = 0.8
	c.RotationY = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
