// Package governor trades render resolution for frame rate.
package governor

import "math"

// Defaults for the hysteresis band.
const (
	DefaultWindow = 2.0
	DefaultLowFPS = 28.0
	DefaultHigh   = 55.0
	DefaultStep   = 0.25
	MinScale      = 1.0
)

// Governor measures fps over a rolling window of real elapsed time and
// nudges the render scale. At most one change happens per window.
type Governor struct {
	Window  float64
	LowFPS  float64
	HighFPS float64
	Step    float64
	Enabled bool

	scale  float64
	max    float64
	frames int
	clock  float64
	last   float64 // fps measured in the last completed window
}

// New starts at the device cap.
func New(maxScale float64) *Governor {
	g := &Governor{
		Window:  DefaultWindow,
		LowFPS:  DefaultLowFPS,
		HighFPS: DefaultHigh,
		Step:    DefaultStep,
		Enabled: true,
	}
	g.SetMax(maxScale)
	g.scale = g.max
	return g
}

// SetMax changes the device cap and pulls the current scale under it.
func (g *Governor) SetMax(m float64) {
	if math.IsNaN(m) || m < MinScale {
		m = MinScale
	}
	g.max = m
	if g.scale > m {
		g.scale = m
	}
	if g.scale < MinScale {
		g.scale = MinScale
	}
}

// SetCap moves the cap and jumps the scale straight to it, as when the host
// picks a new device pixel ratio.
func (g *Governor) SetCap(m float64) {
	g.SetMax(m)
	g.scale = g.max
	g.Reset()
}

func (g *Governor) Max() float64   { return g.max }
func (g *Governor) Scale() float64 { return g.scale }

// FPS returns the rate measured over the last completed window.
func (g *Governor) FPS() float64 { return g.last }

// Reset drops the partial window.
func (g *Governor) Reset() {
	g.frames = 0
	g.clock = 0
}

// Observe records one frame that took dt seconds. It reports whether the
// scale changed at a window boundary.
func (g *Governor) Observe(dt float64) bool {
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	g.frames++
	g.clock += dt
	if g.clock < g.Window {
		return false
	}
	fps := float64(g.frames) / g.clock
	g.last = fps
	g.frames = 0
	g.clock = 0
	if !g.Enabled {
		return false
	}
	prev := g.scale
	switch {
	case fps < g.LowFPS && g.scale > MinScale:
		g.scale = math.Max(MinScale, g.scale-g.Step)
	case fps > g.HighFPS && g.scale < g.max:
		g.scale = math.Min(g.max, g.scale+g.Step)
	}
	return g.scale != prev
}
