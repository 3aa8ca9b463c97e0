package sequence

import (
	"math"
	"sort"
)

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep: 6x^5 - 15x^4 + 10x^3
func smootherstep(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "linear", "":
		return x
	case "smooth":
		return x * x * (3 - 2*x)
	case "cubic":
		return smootherstep(x)
	default:
		return x
	}
}

// Number reports v as a float64 when it is numeric.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Tracks is a set of named keyframe tracks. The zero value is not usable;
// call NewTracks.
type Tracks struct {
	m map[string][]Keyframe
}

func NewTracks() *Tracks { return &Tracks{m: map[string][]Keyframe{}} }

// Set replaces the named track with a copy of frames strictly ascending in
// time. Frames with a non-finite time are dropped; of frames sharing a time the
// last one given wins. An empty list removes the track.
func (ts *Tracks) Set(name string, frames []Keyframe) {
	keys := make([]Keyframe, 0, len(frames))
	for _, k := range frames {
		if math.IsNaN(k.T) || math.IsInf(k.T, 0) {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		delete(ts.m, name)
		return
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
	out := keys[:1]
	for _, k := range keys[1:] {
		if k.T == out[len(out)-1].T {
			out[len(out)-1] = k
			continue
		}
		out = append(out, k)
	}
	ts.m[name] = out
}

// Clear removes every track.
func (ts *Tracks) Clear() { ts.m = map[string][]Keyframe{} }

// Names lists the tracks currently set.
func (ts *Tracks) Names() []string {
	out := make([]string, 0, len(ts.m))
	for k := range ts.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Eval returns the value of the named track at time t. ok is false when the
// track is unknown or empty.
func (ts *Tracks) Eval(name string, t float64) (v any, ok bool) {
	keys := ts.m[name]
	n := len(keys)
	if n == 0 {
		return nil, false
	}
	if t <= keys[0].T {
		return keys[0].V, true
	}
	if t >= keys[n-1].T {
		return keys[n-1].V, true
	}
	// first key strictly after t; keys[i-1].T <= t < keys[i].T
	i := sort.Search(n, func(i int) bool { return keys[i].T > t })
	a, b := keys[i-1], keys[i]
	den := b.T - a.T
	if den <= 0 {
		return b.V, true
	}
	u := clamp01((t - a.T) / den)
	av, aNum := Number(a.V)
	bv, bNum := Number(b.V)
	if !aNum || !bNum {
		if u < 0.5 {
			return a.V, true
		}
		return b.V, true
	}
	u = easeApply(a.Ease, u)
	return av + (bv-av)*u, true
}

// Float evaluates a numeric track. Non-numeric results report false.
func (ts *Tracks) Float(name string, t float64) (float64, bool) {
	v, ok := ts.Eval(name, t)
	if !ok {
		return 0, false
	}
	return Number(v)
}
