package render

import (
	"math"
	"strings"

	"golang.org/x/image/math/f64"

	"github.com/coreman2200/pulsestage/internal/clock"
	"github.com/coreman2200/pulsestage/internal/rng"
)

type CameraMode int

const (
	CameraNone CameraMode = iota
	CameraOrbit
	CameraDolly
	CameraShake
)

func (m CameraMode) String() string {
	switch m {
	case CameraOrbit:
		return "orbit"
	case CameraDolly:
		return "dolly"
	case CameraShake:
		return "shake"
	}
	return "none"
}

func ParseCameraMode(s string) (CameraMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CameraNone, true
	case "orbit":
		return CameraOrbit, true
	case "dolly":
		return CameraDolly, true
	case "shake":
		return CameraShake, true
	}
	return CameraNone, false
}

// Camera is one global transform applied to the whole composite.
type Camera struct {
	Mode     CameraMode
	Shake    float64
	Rotation float64
	Zoom     float64
	Tilt     Tilt

	offX, offY float64
}

func NewCamera() Camera { return Camera{Zoom: 1} }

// Advance moves the camera one frame. Offsets are in logical pixels.
func (c *Camera) Advance(dt float64, st clock.State, r *rng.Source) {
	switch c.Mode {
	case CameraOrbit:
		c.Rotation += dt * 0.15 * (0.5 + st.Energy)
		c.Zoom = 1
	case CameraDolly:
		c.Zoom = 1 + 0.06*math.Sin(st.Time*0.5) + 0.04*st.Pulse
	default:
		c.Zoom = 1
	}
	c.offX, c.offY = 0, 0
	if c.Mode == CameraShake || c.Shake > 0 {
		mag := c.Shake * (2 + 8*st.Pulse)
		a := r.Float() * 2 * math.Pi
		c.offX, c.offY = math.Cos(a)*mag, math.Sin(a)*mag
	}
}

// Offset returns the shake offset of the last Advance.
func (c *Camera) Offset() (float64, float64) { return c.offX, c.offY }

// Identity reports whether the camera leaves the composite untouched.
func (c *Camera) Identity() bool {
	rot := c.Rotation
	if c.Mode != CameraOrbit {
		rot = 0
	}
	return rot == 0 && c.Zoom == 1 && c.offX == 0 && c.offY == 0
}

// Matrix maps stage pixels to output pixels for a pw×ph buffer at scale s:
// rotate and zoom about the center, then offset.
func (c *Camera) Matrix(pw, ph int, s float64) f64.Aff3 {
	cx, cy := float64(pw)/2, float64(ph)/2
	rot := 0.0
	if c.Mode == CameraOrbit {
		rot = c.Rotation
	}
	z := c.Zoom
	if z <= 0 || math.IsNaN(z) {
		z = 1
	}
	cos, sin := math.Cos(rot), math.Sin(rot)
	ox, oy := c.offX*s, c.offY*s
	return f64.Aff3{
		z * cos, -z * sin, cx + ox - z*(cos*cx-sin*cy),
		z * sin, z * cos, cy + oy - z*(sin*cx+cos*cy),
	}
}
