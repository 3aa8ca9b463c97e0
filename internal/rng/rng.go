// Package rng provides a small seeded generator so scenes, noise tables and
// grain produce the same output for the same seed.
package rng

// Source is a Mulberry32 generator.
type Source struct {
	state uint32
	seed  uint32
}

func New(seed uint32) *Source {
	return &Source{state: seed, seed: seed}
}

// Reseed sets a new seed and restarts the sequence.
func (r *Source) Reseed(seed uint32) {
	r.state = seed
	r.seed = seed
}

// Reset restarts the sequence from the current seed.
func (r *Source) Reset() { r.state = r.seed }

// Float returns the next value in [0,1).
func (r *Source) Float() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Range returns a value in [lo,hi).
func (r *Source) Range(lo, hi float64) float64 {
	return lo + r.Float()*(hi-lo)
}

// Intn returns a value in [0,n). n <= 0 yields 0.
func (r *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Float() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Derive mixes a base seed with a salt, e.g. a scene index.
func Derive(base uint32, salt int) uint32 {
	s := base ^ (uint32(salt) * 2654435761)
	s = (s ^ (s >> 16)) * 0x85ebca6b
	s = (s ^ (s >> 13)) * 0xc2b2ae35
	return s ^ (s >> 16)
}
