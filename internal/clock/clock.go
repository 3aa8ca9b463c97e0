// Package clock turns wall-clock deltas plus tempo and energy into the
// per-frame motion state every scene consumes.
package clock

import "math"

const (
	MinTempo = 40.0
	MaxTempo = 220.0

	// attack lag so the pulse peak lines up with the perceived beat
	pulseLag = 0.02
)

// State is the per-frame driver snapshot.
type State struct {
	Time     float64 // seconds since start
	Pulse    float64
	Rotation float64
	Energy   float64
	Position float64 // playback position, seconds
}

// Clock accumulates elapsed time and rotation.
type Clock struct {
	Tempo       float64
	Energy      float64
	RotationMul float64
	PulseMul    float64

	elapsed  float64
	rotation float64
}

func New() *Clock {
	return &Clock{Tempo: 120, Energy: 0.6, RotationMul: 1, PulseMul: 1}
}

// ClampTempo maps any input, including NaN and non-positive values, into
// [MinTempo, MaxTempo].
func ClampTempo(bpm float64) float64 {
	if math.IsNaN(bpm) || bpm <= 0 {
		return MinTempo
	}
	return math.Min(MaxTempo, math.Max(MinTempo, bpm))
}

// ClampUnit clamps v into [0,1]; NaN becomes 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNeg(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return 0
	}
	return v
}

// BeatPeriod returns seconds per beat for the clamped tempo.
func BeatPeriod(tempo float64) float64 { return 60 / ClampTempo(tempo) }

// Pulse is a Gaussian bump peaking just after every beat boundary. It depends
// only on its arguments.
func Pulse(t, tempo, energy, pulseMul float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		t = 0
	}
	period := BeatPeriod(tempo)
	phase := math.Mod(t, period) / period
	if phase < 0 {
		phase += 1
	}
	d := phase - pulseLag
	return math.Exp(-10*d*d) * (0.5 + 0.8*ClampUnit(energy)) * nonNeg(pulseMul)
}

// Advance moves the clock forward by dt seconds. Negative or non-finite dt is
// treated as zero.
func (c *Clock) Advance(dt float64) {
	dt = nonNeg(dt)
	if dt == 0 {
		return
	}
	c.elapsed += dt
	base := ClampTempo(c.Tempo) / 120
	c.rotation += dt * base * (0.5 + ClampUnit(c.Energy)) * nonNeg(c.RotationMul)
}

// Reset zeroes elapsed time and rotation.
func (c *Clock) Reset() {
	c.elapsed = 0
	c.rotation = 0
}

func (c *Clock) Elapsed() float64  { return c.elapsed }
func (c *Clock) Rotation() float64 { return c.rotation }

// State samples the clock at its current elapsed time.
func (c *Clock) State(position float64) State {
	return State{
		Time:     c.elapsed,
		Pulse:    Pulse(c.elapsed, c.Tempo, c.Energy, c.PulseMul),
		Rotation: c.rotation,
		Energy:   ClampUnit(c.Energy),
		Position: position,
	}
}
