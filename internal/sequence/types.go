package sequence

// Keyframe is a value at time T (seconds). V is numeric (float64 or any Go
// integer) or an arbitrary value that switches at the segment midpoint. Ease
// applies to the numeric segment starting at this keyframe.
type Keyframe struct {
	T    float64 `json:"t" yaml:"t"`
	V    any     `json:"v" yaml:"v"`
	Ease string  `json:"ease,omitempty" yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Clip is one segment of a show: the layers it enables, option overrides,
// duration, optional crossfade into the NEXT clip and parameter automation.
type Clip struct {
	Name      string                        `json:"name" yaml:"name"`
	Layers    []string                      `json:"layers" yaml:"layers"`
	Options   map[string]map[string]float64 `json:"options,omitempty" yaml:"options,omitempty"`
	DurationS float64                       `json:"durationS" yaml:"duration_s"`
	XFadeS    float64                       `json:"xFadeS,omitempty" yaml:"xfade_s,omitempty"`
	Params    map[string][]Keyframe         `json:"params,omitempty" yaml:"params,omitempty"` // clip-local time
}

// Program is a full sequence of clips.
type Program struct {
	Version string `json:"version" yaml:"version"` // e.g., "show.v1"
	Loop    bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
	Clips   []Clip `json:"clips" yaml:"clips"`
}

// PlayerState enumerates show states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the render engine.
type Hooks struct {
	// Make this clip's layers the visible set immediately.
	ApplyClip func(c Clip)
	// Prepare the next clip's layers for a crossfade.
	ArmNext func(c Clip)
	// 0..1 mix between the active clip and the armed one.
	SetCrossfade func(alpha float64)
	// Numeric parameter automation for the ACTIVE clip.
	SetParam func(name string, v float64)
}

// Player owns the current Program timeline and uses Hooks to drive the engine.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within the current loop of the program
	idx  int     // current clip index

	// crossfade bookkeeping
	armedIndex int
	armed      bool
	lastAlpha  float64

	hooks  Hooks
	tracks map[int]*Tracks // per clip, built on Load
}
