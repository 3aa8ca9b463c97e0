package analysis

// Interval is a timed span, the shape of a beat, bar or section entry in an
// audio-analysis payload.
type Interval struct {
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Timeline holds the analysis intervals for one track.
type Timeline struct {
	Beats    []Interval `json:"beats" yaml:"beats"`
	Bars     []Interval `json:"bars" yaml:"bars"`
	Sections []Interval `json:"sections" yaml:"sections"`
}

// FindIndexByTime returns the first interval that has not ended at t, the
// last index once t is past every interval, or -1 for an empty list.
func FindIndexByTime(list []Interval, t float64) int {
	if len(list) == 0 {
		return -1
	}
	for i, iv := range list {
		if t < iv.Start+iv.Duration {
			return i
		}
	}
	return len(list) - 1
}

// At derives the cursor update for playback position t.
func (tl Timeline) At(t float64) Update {
	u := Update{Time: &t}
	if i := FindIndexByTime(tl.Beats, t); i >= 0 {
		u.Beat = &i
	}
	if i := FindIndexByTime(tl.Bars, t); i >= 0 {
		u.Bar = &i
	}
	if i := FindIndexByTime(tl.Sections, t); i >= 0 {
		u.Section = &i
	}
	return u
}

// Uniform builds a timeline of evenly spaced beats, bars of beatsPerBar and
// sections of barsPerSection covering duration seconds. Used by demos and
// tests when no real analysis exists.
func Uniform(tempo, duration float64, beatsPerBar, barsPerSection int) Timeline {
	if tempo <= 0 || duration <= 0 {
		return Timeline{}
	}
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	if barsPerSection <= 0 {
		barsPerSection = 8
	}
	beat := 60 / tempo
	var tl Timeline
	span := func(step float64) []Interval {
		var out []Interval
		for s := 0.0; s < duration; s += step {
			out = append(out, Interval{Start: s, Duration: step})
		}
		return out
	}
	tl.Beats = span(beat)
	tl.Bars = span(beat * float64(beatsPerBar))
	tl.Sections = span(beat * float64(beatsPerBar*barsPerSection))
	return tl
}
