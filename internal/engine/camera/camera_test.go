package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/terratile/pkg/math"
)

func approx(a, b, eps float32) bool {
	return float32(gomath.Abs(float64(a-b))) <= eps
}

func TestLODDistance(t *testing.T) {
	tests := []struct {
		fov, height, want float32
	}{
		{90, 1000, 500},
		{60, 1080, 540 * float32(gomath.Sqrt(3))},
		{45, 720, 360 / float32(gomath.Tan(gomath.Pi/8))},
	}
	for _, tt := range tests {
		if got := LODDistance(tt.fov, tt.height); !approx(got, tt.want, 0.01) {
			t.Errorf("LODDistance(%v, %v) = %v, want %v", tt.fov, tt.height, got, tt.want)
		}
	}
}

func TestLODDistanceMonotonic(t *testing.T) {
	prev := LODDistance(45, 100)
	for h := float32(200); h <= 4000; h += 100 {
		d := LODDistance(45, h)
		if d <= prev {
			t.Fatalf("LODDistance(45, %v) = %v not above %v", h, d, prev)
		}
		prev = d
	}

	prev = LODDistance(1, 1000)
	for fov := float32(2); fov < 180; fov++ {
		d := LODDistance(fov, 1000)
		if d >= prev {
			t.Fatalf("LODDistance(%v, 1000) = %v not below %v", fov, d, prev)
		}
		prev = d
	}
}

func TestOrbitPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.SetCenter(10, 20, 0)
	c.Distance = 100
	c.RotationX = 0
	c.RotationY = 0

	got := c.Position()
	want := math.Vec3{X: 10, Y: -80, Z: 0}
	if !approx(got.X, want.X, 1e-3) || !approx(got.Y, want.Y, 1e-3) || !approx(got.Z, want.Z, 1e-3) {
		t.Errorf("Position() = %v, want %v", got, want)
	}

	c.RotationX = gomath.Pi / 2
	if p := c.Position(); !approx(p.Z, 100, 1e-3) {
		t.Errorf("overhead Position().Z = %v, want 100", p.Z)
	}
}

func TestOrbitDistanceFromCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(37, -12)
	center := math.Vec3{X: c.CenterX, Y: c.CenterY, Z: c.CenterZ}
	if d := c.Position().Distance(center); !approx(d, c.Distance, 0.05) {
		t.Errorf("distance from center = %v, want %v", d, c.Distance)
	}
}

func TestHandleZoomClamps(t *testing.T) {
	c := NewOrbitCamera()
	for i := 0; i < 200; i++ {
		c.HandleZoom(5)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want MinDistance %v", c.Distance, c.MinDistance)
	}
	for i := 0; i < 200; i++ {
		c.HandleZoom(-5)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("Distance = %v, want MaxDistance %v", c.Distance, c.MaxDistance)
	}
}

func TestHandleMovementForward(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationY = 0
	c.HandleMovement(1, 0)
	if c.CenterY <= 0 || !approx(c.CenterX, 0, 1e-3) {
		t.Errorf("center after forward = (%v, %v), want +Y", c.CenterX, c.CenterY)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(-100, -50, 300, 150, 40)
	if c.CenterX != 100 || c.CenterY != 50 || c.CenterZ != 20 {
		t.Errorf("center = (%v, %v, %v), want (100, 50, 20)", c.CenterX, c.CenterY, c.CenterZ)
	}
	if c.Distance <= 200 {
		t.Errorf("Distance = %v, want far enough to frame 400 units", c.Distance)
	}
}

func TestProjectionMatrixAspect(t *testing.T) {
	c := NewOrbitCamera()
	c.SetViewport(1600, 800)
	p := c.ProjectionMatrix()
	if !approx(p[5]/p[0], 2, 1e-4) {
		t.Errorf("projection aspect = %v, want 2", p[5]/p[0])
	}
}
