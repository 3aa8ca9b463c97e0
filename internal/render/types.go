package render

import (
	"errors"
	"image"
	"sort"
	"strings"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/clock"
)

// Blend is a layer compositing mode.
type Blend int

const (
	BlendNormal Blend = iota
	BlendAdditive
	BlendScreen
)

func (b Blend) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	case BlendScreen:
		return "screen"
	}
	return "normal"
}

// ParseBlend accepts normal, additive (or lighter) and screen.
func ParseBlend(s string) (Blend, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "source-over", "":
		return BlendNormal, true
	case "additive", "lighter", "add":
		return BlendAdditive, true
	case "screen":
		return BlendScreen, true
	}
	return BlendNormal, false
}

// Effect flag names.
const (
	FXVignette = "vignette"
	FXGrain    = "grain"
	FXChroma   = "chroma"
	FXBloom    = "bloom"
	FXDOF      = "dof"
)

// FX holds the post-effect toggles.
type FX struct {
	Vignette bool `yaml:"vignette" json:"vignette"`
	Grain    bool `yaml:"grain" json:"grain"`
	Chroma   bool `yaml:"chroma" json:"chroma"`
	Bloom    bool `yaml:"bloom" json:"bloom"`
	DOF      bool `yaml:"dof" json:"dof"`
}

func (fx *FX) flag(name string) *bool {
	switch strings.ToLower(name) {
	case FXVignette:
		return &fx.Vignette
	case FXGrain:
		return &fx.Grain
	case FXChroma, "chromatic", "chromatic-aberration":
		return &fx.Chroma
	case FXBloom:
		return &fx.Bloom
	case FXDOF, "depth-of-field":
		return &fx.DOF
	}
	return nil
}

// Set toggles a named flag and reports whether the name is known.
func (fx *FX) Set(name string, on bool) bool {
	p := fx.flag(name)
	if p == nil {
		return false
	}
	*p = on
	return true
}

// Enabled reports a named flag; unknown names are off.
func (fx FX) Enabled(name string) bool {
	p := fx.flag(name)
	return p != nil && *p
}

// Tilt is the optional parallax input, each axis in [-1,1].
type Tilt struct{ X, Y float64 }

// Settings are the global multipliers shared by every scene.
type Settings struct {
	RotationMul   float64 `yaml:"rotation_mul" json:"rotationMul"`
	PulseMul      float64 `yaml:"pulse_mul" json:"pulseMul"`
	GlowOpacity   float64 `yaml:"glow_opacity" json:"glowOpacity"`
	TrailAlpha    float64 `yaml:"trail_alpha" json:"trailAlpha"`
	BloomStrength float64 `yaml:"bloom_strength" json:"bloomStrength"`
	Complexity    float64 `yaml:"complexity" json:"complexity"`
}

// DefaultSettings mirrors the stock look.
func DefaultSettings() Settings {
	return Settings{
		RotationMul:   1,
		PulseMul:      1,
		GlowOpacity:   0.28,
		TrailAlpha:    0.06,
		BloomStrength: 0.28,
		Complexity:    1.1,
	}
}

// Frame is the read-only snapshot handed to scenes and effects for one tick.
type Frame struct {
	clock.State
	Palette  Palette
	FX       FX
	Tilt     Tilt
	Settings Settings
	Scale    float64 // logical to device pixels
	Width    int     // logical
	Height   int
}

// Scene is one animated visual. Update mutates private state; Render only
// reads it and draws into dc in logical coordinates.
type Scene interface {
	Name() string
	Resize(w, h int)
	SetOption(key string, v float64)
	SetTexture(img image.Image)
	Update(dt float64, f *Frame)
	Render(dc *gg.Context, w, h int, f *Frame)
}

// Optional boundary reactions.
type (
	BeatReactor    interface{ OnBeat(f *Frame) }
	BarReactor     interface{ OnBar(f *Frame) }
	SectionReactor interface{ OnSection(f *Frame) }
)

// NoTexture can be embedded by scenes that ignore textures.
type NoTexture struct{}

func (NoTexture) SetTexture(image.Image) {}

// Factory builds a fresh scene; seed makes its randomness reproducible.
type Factory func(seed uint32) Scene

type Registry struct{ m map[string]Factory }

func NewRegistry() *Registry { return &Registry{m: map[string]Factory{}} }

func (r *Registry) Register(name string, f Factory) {
	if f == nil || name == "" {
		return
	}
	r.m[name] = f
}

func (r *Registry) Get(name string) (Factory, bool) { f, ok := r.m[name]; return f, ok }

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build instantiates a registered scene.
func (r *Registry) Build(name string, seed uint32) (Scene, error) {
	if r == nil {
		return nil, errors.New("registry is nil")
	}
	f, ok := r.m[name]
	if !ok {
		return nil, errors.New("scene not found: " + name)
	}
	return f(seed), nil
}
