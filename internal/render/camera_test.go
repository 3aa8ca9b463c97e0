package render

import (
	"math"
	"testing"

	"github.com/coreman2200/pulsestage/internal/clock"
	"github.com/coreman2200/pulsestage/internal/rng"
)

func apply(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

func TestCameraIdentityByDefault(t *testing.T) {
	c := NewCamera()
	c.Advance(0.1, clock.State{Energy: 0.5, Pulse: 1}, rng.New(1))
	if !c.Identity() {
		t.Fatalf("mode none without shake should be identity")
	}
}

func TestCameraOrbitKeepsCenter(t *testing.T) {
	c := NewCamera()
	c.Mode = CameraOrbit
	for i := 0; i < 10; i++ {
		c.Advance(0.1, clock.State{Energy: 0.5}, rng.New(1))
	}
	if want := 10 * 0.1 * 0.15 * 1.0; math.Abs(c.Rotation-want) > 1e-12 {
		t.Fatalf("rotation %v want %v", c.Rotation, want)
	}
	m := c.Matrix(200, 100, 1)
	x, y := apply(m, 100, 50)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Fatalf("center moved to %v,%v", x, y)
	}
	x, _ = apply(m, 150, 50)
	if math.Abs(x-150) < 1e-3 {
		t.Fatalf("rotation had no effect")
	}
}

func TestCameraShakeMagnitude(t *testing.T) {
	c := NewCamera()
	c.Shake = 2
	c.Advance(0.016, clock.State{Pulse: 0.5}, rng.New(3))
	ox, oy := c.Offset()
	if mag := math.Hypot(ox, oy); math.Abs(mag-2*(2+8*0.5)) > 1e-9 {
		t.Fatalf("shake magnitude %v", mag)
	}
	m := c.Matrix(100, 100, 2)
	x, y := apply(m, 50, 50)
	if math.Abs(x-50-2*ox) > 1e-9 || math.Abs(y-50-2*oy) > 1e-9 {
		t.Fatalf("device offset should scale with the render scale")
	}
	if c.Identity() {
		t.Fatalf("shaking camera is not identity")
	}
}

func TestCameraDollyZoom(t *testing.T) {
	c := NewCamera()
	c.Mode = CameraDolly
	c.Advance(0.016, clock.State{Time: math.Pi, Pulse: 1}, rng.New(1))
	if want := 1 + 0.06*math.Sin(math.Pi*0.5) + 0.04; math.Abs(c.Zoom-want) > 1e-12 {
		t.Fatalf("zoom %v want %v", c.Zoom, want)
	}
}
