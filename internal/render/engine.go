package render

import (
	"errors"
	"image"
	"math"
	"sort"
	"time"

	"github.com/gogpu/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/coreman2200/pulsestage/internal/analysis"
	"github.com/coreman2200/pulsestage/internal/clock"
	"github.com/coreman2200/pulsestage/internal/governor"
	"github.com/coreman2200/pulsestage/internal/rng"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

// Keyframe track names the engine reads every tick.
const (
	TrackRotationMul  = "rotationMul"
	TrackPulseMul     = "pulseMul"
	TrackPalettePhase = "palettePhase"

	PhaseAccent = "accent"
)

// Size limits. Logical sizes are clamped to MaxDim per axis, and the render
// scale drops below the governor's when a buffer would exceed MaxPixels.
const (
	MaxDim        = 8192
	MaxPixels     = 3840 * 2160
	DefaultMaxDPR = 3.0
)

// Options is a sparse Configure request; nil fields are left alone.
type Options struct {
	RotationMul   *float64 `json:"rotationMul,omitempty"`
	PulseMul      *float64 `json:"pulseMul,omitempty"`
	GlowOpacity   *float64 `json:"glowOpacity,omitempty"`
	TrailAlpha    *float64 `json:"trailAlpha,omitempty"`
	BloomStrength *float64 `json:"bloomStrength,omitempty"`
	Complexity    *float64 `json:"complexity,omitempty"`

	// Layers maps layer name to scene option key to value.
	Layers map[string]map[string]float64 `json:"layers,omitempty"`
}

// Engine composites the layer stack into one canvas every tick. It is not
// safe for concurrent use; the host serialises calls.
type Engine struct {
	Log zerolog.Logger

	// metrics (last durations in ms)
	Last struct {
		UpdateMS float64
		RenderMS float64
		PostMS   float64
		TotalMS  float64
	}

	reg      *Registry
	clk      *clock.Clock
	gov      *governor.Governor
	cursor   *analysis.Cursor
	timeline *analysis.Timeline
	tracks   *sequence.Tracks
	rnd      *rng.Source
	cam      Camera
	stack    Stack
	post     PostPipeline

	palette    Palette
	theme      string
	customMono string
	settings   Settings
	fx         FX
	texture    image.Image
	analysisOn bool
	position   float64

	w, h       int // logical
	pw, ph     int // device
	scale      float64
	maxDPR     float64
	reqW, reqH int
	resizeReq  bool

	// stage keeps the previous frame for trails; canvas is the output
	stage  *gg.Context
	canvas *gg.Context

	running  bool
	lastStep time.Time
	frame    Frame
}

// NewEngine builds one layer per registered scene, in LayerOrder first and
// then by name, each seeded from seed.
func NewEngine(w, h int, reg *Registry, seed uint32) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("registry is nil")
	}
	if w < 0 || h < 0 {
		return nil, errors.New("invalid dimensions")
	}
	w, h = clampDim(w), clampDim(h)
	e := &Engine{
		Log:        zerolog.Nop(),
		reg:        reg,
		clk:        clock.New(),
		gov:        governor.New(1),
		cursor:     analysis.NewCursor(),
		tracks:     sequence.NewTracks(),
		rnd:        rng.New(rng.Derive(seed, -1)),
		cam:        NewCamera(),
		palette:    DefaultPalette(),
		theme:      ThemeAlbum,
		customMono: DefaultMono,
		settings:   DefaultSettings(),
		fx:         FX{Vignette: true, Grain: true, Bloom: true},
		analysisOn: true,
		maxDPR:     DefaultMaxDPR,
	}
	for i, name := range layerNames(reg) {
		sc, err := reg.Build(name, rng.Derive(seed, i))
		if err != nil {
			return nil, err
		}
		d := DefaultLayer(name)
		e.stack.Add(&Layer{Name: name, Scene: sc, Enabled: d.Enabled, Opacity: d.Opacity, Blend: d.Blend, Fade: 1})
	}
	e.applySize(w, h)
	e.frame = e.snapshot(0)
	return e, nil
}

func layerNames(reg *Registry) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range LayerOrder {
		if _, ok := reg.Get(n); ok {
			out = append(out, n)
			seen[n] = true
		}
	}
	rest := []string{}
	for _, n := range reg.List() {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// ---- lifecycle ----

// Start resumes ticking; the next Step measures dt from zero.
func (e *Engine) Start() {
	if e.running {
		return
	}
	e.running = true
	e.lastStep = time.Time{}
	e.gov.Reset()
}

func (e *Engine) Stop()         { e.running = false }
func (e *Engine) Running() bool { return e.running }

// Step ticks with dt measured from the previous Step. It does nothing while
// stopped.
func (e *Engine) Step(now time.Time) {
	if !e.running {
		return
	}
	dt := 0.0
	if !e.lastStep.IsZero() {
		dt = now.Sub(e.lastStep).Seconds()
	}
	e.lastStep = now
	e.Tick(dt)
}

// Resize records a new logical size, applied at the start of the next tick.
// Each axis is clamped to [0, MaxDim].
func (e *Engine) Resize(w, h int) {
	e.reqW, e.reqH, e.resizeReq = clampDim(w), clampDim(h), true
}

func clampDim(v int) int {
	return max(0, min(MaxDim, v))
}

// Size returns the logical size in use.
func (e *Engine) Size() (int, int) { return e.w, e.h }

func (e *Engine) applySize(w, h int) {
	e.w, e.h = w, h
	s := e.gov.Scale()
	if area := float64(w) * float64(h); area*s*s > MaxPixels {
		s = math.Sqrt(MaxPixels / area)
	}
	e.scale = s
	e.pw, e.ph = int(math.Floor(float64(w)*s)), int(math.Floor(float64(h)*s))
	if e.pw > 0 && e.ph > 0 {
		e.stage = resizeContext(e.stage, e.pw, e.ph)
		e.canvas = resizeContext(e.canvas, e.pw, e.ph)
		e.stage.ClearWithColor(gg.Black)
		e.stack.resize(e.pw, e.ph)
	}
	for _, l := range e.stack.layers {
		l.Scene.Resize(w, h)
	}
}

func resizeContext(dc *gg.Context, w, h int) *gg.Context {
	if dc == nil {
		return gg.NewContext(w, h)
	}
	_ = dc.Resize(w, h)
	return dc
}

// ---- frame ----

// Tick advances one frame of dt seconds: update, composite, camera, post,
// governor. Negative or non-finite dt counts as zero.
func (e *Engine) Tick(dt float64) {
	start := time.Now()
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	if e.resizeReq {
		e.resizeReq = false
		e.applySize(e.reqW, e.reqH)
	}

	e.frame = e.snapshot(dt)
	f := &e.frame
	if e.analysisOn && e.timeline != nil {
		e.cursor.Apply(e.timeline.At(e.position), e.fire)
	}
	e.cam.Advance(dt, f.State, e.rnd)
	for _, l := range e.stack.layers {
		if l.Enabled {
			l.Scene.Update(dt, f)
		}
	}
	e.Last.UpdateMS = ms(time.Since(start))

	renderStart := time.Now()
	if e.stage != nil && e.w > 0 && e.h > 0 {
		e.background(f)
		for _, l := range e.stack.layers {
			if l.Enabled {
				l.draw(e.stage, f)
			}
		}
		e.present()
		e.Last.RenderMS = ms(time.Since(renderStart))

		postStart := time.Now()
		e.post.Run(e.canvas, f)
		e.Last.PostMS = ms(time.Since(postStart))
	}
	e.Last.TotalMS = ms(time.Since(start))

	if e.gov.Observe(dt) {
		e.Log.Debug().Float64("scale", e.gov.Scale()).Float64("fps", e.gov.FPS()).Msg("governor rescale")
		e.applySize(e.w, e.h)
	}
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }

// snapshot advances the clock with this frame's overrides and freezes the
// result for scenes.
func (e *Engine) snapshot(dt float64) Frame {
	set := e.settings
	p := e.position
	if v, ok := e.tracks.Float(TrackRotationMul, p); ok {
		set.RotationMul = nonNeg(v)
	}
	if v, ok := e.tracks.Float(TrackPulseMul, p); ok {
		set.PulseMul = nonNeg(v)
	}
	if v, ok := e.tracks.Float("glowOpacity", p); ok {
		set.GlowOpacity = clamp01(v)
	}
	if v, ok := e.tracks.Float("trailAlpha", p); ok {
		set.TrailAlpha = clamp01(v)
	}
	if v, ok := e.tracks.Float("bloomStrength", p); ok {
		set.BloomStrength = clamp01(v)
	}
	e.clk.RotationMul, e.clk.PulseMul = set.RotationMul, set.PulseMul
	e.clk.Advance(dt)

	pal := e.palette
	if v, ok := e.tracks.Eval(TrackPalettePhase, p); ok && v == PhaseAccent && len(pal) > 1 {
		pal = append(Palette(nil), pal...)
		pal[0], pal[1] = pal[1], pal[0]
	}
	return Frame{
		State:    e.clk.State(p),
		Palette:  pal,
		FX:       e.fx,
		Tilt:     e.cam.Tilt,
		Settings: set,
		Scale:    e.scale,
		Width:    e.w,
		Height:   e.h,
	}
}

// background applies trails, or clears, then paints the corner glow.
func (e *Engine) background(f *Frame) {
	if f.Settings.TrailAlpha > 0 {
		Darken(Pixels(e.stage), f.Settings.TrailAlpha)
	} else {
		e.stage.ClearWithColor(gg.Black)
	}
	if f.Settings.GlowOpacity <= 0 {
		return
	}
	s := f.Scale
	w, h := float64(f.Width)*s, float64(f.Height)*s
	cx, cy := w*0.8, -h*0.2
	g := gg.NewRadialGradientBrush(cx, cy, 50*s, math.Max(w, h)).
		AddColorStop(0, WithAlpha(f.Palette.At(0), f.Settings.GlowOpacity)).
		AddColorStop(1, gg.Transparent)
	e.stage.Identity()
	e.stage.ResetClip()
	e.stage.SetFillBrush(g)
	e.stage.DrawRectangle(0, 0, w, h)
	_ = e.stage.Fill()
}

// present copies the stage to the canvas through the camera transform.
func (e *Engine) present() {
	src, dst := Pixels(e.stage), Pixels(e.canvas)
	if e.cam.Identity() {
		copy(dst, src)
		return
	}
	e.canvas.ClearWithColor(gg.Black)
	draw.BiLinear.Transform(RGBAView(e.canvas), e.cam.Matrix(e.pw, e.ph, e.scale), RGBAView(e.stage), image.Rect(0, 0, e.pw, e.ph), draw.Over, nil)
}

// ---- output ----

// Canvas is the output context; nil until the size is non-zero.
func (e *Engine) Canvas() *gg.Context { return e.canvas }

// Image returns a copy of the output, or nil before the first non-empty size.
func (e *Engine) Image() image.Image {
	if e.canvas == nil || e.w == 0 || e.h == 0 {
		return nil
	}
	return e.canvas.Image()
}

// Scale is the render scale in use: the governor's, lowered when the buffers
// would exceed MaxPixels.
func (e *Engine) Scale() float64   { return e.scale }
func (e *Engine) FPS() float64     { return e.gov.FPS() }
func (e *Engine) Frame() Frame     { return e.frame }
func (e *Engine) Palette() Palette { return append(Palette(nil), e.palette...) }
func (e *Engine) Layers() []*Layer { return e.stack.Layers() }
func (e *Engine) Layer(name string) (*Layer, bool) {
	return e.stack.Get(name)
}

// ---- control surface ----

// SetPalette replaces the palette; an empty palette is ignored.
func (e *Engine) SetPalette(p Palette) bool {
	if len(p) == 0 {
		return false
	}
	e.palette = append(Palette(nil), p...)
	return true
}

// SetTheme applies a named theme. album uses colors when given; mono uses
// custom, or the last custom color when custom is empty.
func (e *Engine) SetTheme(name string, colors Palette, custom string) bool {
	if custom != "" {
		e.customMono = custom
	}
	if name == ThemeAlbum {
		e.theme = name
		if len(colors) > 0 {
			e.SetPalette(colors)
		}
		return true
	}
	p, ok := ThemePalette(name, e.customMono)
	if !ok {
		return false
	}
	e.theme = name
	e.SetPalette(p)
	e.Log.Debug().Str("theme", name).Strs("palette", p.Hex()).Msg("theme")
	return true
}

func (e *Engine) Theme() string { return e.theme }

// SetTempo ignores non-positive and non-finite bpm.
func (e *Engine) SetTempo(bpm float64) {
	if bpm > 0 && !math.IsInf(bpm, 0) {
		e.clk.Tempo = bpm
	}
}

func (e *Engine) SetEnergy(v float64) { e.clk.Energy = clamp01(v) }

// SetTexture hands img (nil clears) to every scene.
func (e *Engine) SetTexture(img image.Image) {
	e.texture = img
	for _, l := range e.stack.layers {
		l.Scene.SetTexture(img)
	}
}

// Configure applies sparse options. It reports false when a layer name in
// o.Layers is unknown; the known ones are still applied.
func (e *Engine) Configure(o Options) bool {
	set := func(dst *float64, v *float64, clamp func(float64) float64) {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			*dst = clamp(*v)
		}
	}
	set(&e.settings.RotationMul, o.RotationMul, nonNeg)
	set(&e.settings.PulseMul, o.PulseMul, nonNeg)
	set(&e.settings.GlowOpacity, o.GlowOpacity, clamp01)
	set(&e.settings.TrailAlpha, o.TrailAlpha, clamp01)
	set(&e.settings.BloomStrength, o.BloomStrength, clamp01)
	if o.Complexity != nil && *o.Complexity > 0 && !math.IsInf(*o.Complexity, 0) {
		e.settings.Complexity = *o.Complexity
		for _, l := range e.stack.layers {
			l.Scene.SetOption("complexity", *o.Complexity)
		}
	}
	ok := true
	for name, opts := range o.Layers {
		l, found := e.stack.Get(name)
		if !found {
			ok = false
			continue
		}
		for k, v := range opts {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				l.Scene.SetOption(k, v)
			}
		}
	}
	return ok
}

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) SetLayerEnabled(name string, on bool) bool {
	l, ok := e.stack.Get(name)
	if ok {
		l.Enabled = on
	}
	return ok
}

func (e *Engine) SetLayerOpacity(name string, v float64) bool {
	l, ok := e.stack.Get(name)
	if ok {
		l.Opacity = clamp01(v)
	}
	return ok
}

func (e *Engine) SetLayerBlend(name string, b Blend) bool {
	l, ok := e.stack.Get(name)
	if ok {
		l.Blend = b
	}
	return ok
}

// SetLayerFade sets the crossfade multiplier on a layer's opacity.
func (e *Engine) SetLayerFade(name string, v float64) bool {
	l, ok := e.stack.Get(name)
	if ok {
		l.Fade = clamp01(v)
	}
	return ok
}

func (e *Engine) SetFxEnabled(name string, on bool) bool { return e.fx.Set(name, on) }
func (e *Engine) FX() FX                                  { return e.fx }

func (e *Engine) SetCameraMode(m CameraMode) { e.cam.Mode = m }
func (e *Engine) SetCameraShake(v float64)   { e.cam.Shake = nonNeg(v) }

// SetCameraTilt takes the parallax vector, each axis clamped to [-1,1].
func (e *Engine) SetCameraTilt(x, y float64) {
	e.cam.Tilt = Tilt{X: clampSigned(x), Y: clampSigned(y)}
}

func (e *Engine) Camera() Camera { return e.cam }

// SetAnalysisEnabled turns the boundary bridge on or off. Turning it on
// forgets the last seen indices.
func (e *Engine) SetAnalysisEnabled(on bool) {
	if on && !e.analysisOn {
		e.cursor.Reset()
	}
	e.analysisOn = on
}

// UpdateAnalysis fires OnBeat, OnBar and OnSection on enabled layers for
// every index that changed. Time moves the play position for the next tick.
func (e *Engine) UpdateAnalysis(u analysis.Update) {
	if !e.analysisOn {
		return
	}
	if u.Time != nil {
		e.SetPlayPosition(*u.Time)
	}
	e.cursor.Apply(u, e.fire)
}

// SetTimeline makes every tick derive indices from the play position.
// nil detaches it.
func (e *Engine) SetTimeline(tl *analysis.Timeline) {
	e.timeline = tl
	e.cursor.Reset()
}

func (e *Engine) fire(k analysis.Kind) {
	f := &e.frame
	for _, l := range e.stack.layers {
		if !l.Enabled {
			continue
		}
		switch k {
		case analysis.Beat:
			if r, ok := l.Scene.(BeatReactor); ok {
				r.OnBeat(f)
			}
		case analysis.Bar:
			if r, ok := l.Scene.(BarReactor); ok {
				r.OnBar(f)
			}
		case analysis.Section:
			if r, ok := l.Scene.(SectionReactor); ok {
				r.OnSection(f)
			}
		}
	}
}

func (e *Engine) SetPlayPosition(s float64) {
	if !math.IsNaN(s) && !math.IsInf(s, 0) {
		e.position = s
	}
}

func (e *Engine) PlayPosition() float64 { return e.position }

// EnableKeyframeTrack installs or, with no frames, removes a track.
func (e *Engine) EnableKeyframeTrack(name string, frames []sequence.Keyframe) {
	e.tracks.Set(name, frames)
}

func (e *Engine) ClearKeyframes() { e.tracks.Clear() }

// EnableKeyframeDemo installs the stock rotation, pulse and palette phase
// tracks over d seconds (180 when d is not positive).
func (e *Engine) EnableKeyframeDemo(d float64) {
	if !(d > 0) || math.IsInf(d, 0) {
		d = 180
	}
	e.tracks.Set(TrackRotationMul, []sequence.Keyframe{{T: 0, V: 1.0}, {T: d / 2, V: 2.2}, {T: d, V: 1.0}})
	e.tracks.Set(TrackPulseMul, []sequence.Keyframe{
		{T: 0, V: 1.0}, {T: d / 4, V: 1.6}, {T: d / 2, V: 1.0}, {T: 3 * d / 4, V: 1.8}, {T: d, V: 1.0},
	})
	e.tracks.Set(TrackPalettePhase, []sequence.Keyframe{{T: 0, V: "base"}, {T: d / 2, V: PhaseAccent}})
}

// SetDPRCap sets the device cap for the governor, clamped to [1, MaxDPR],
// and resizes right away when the scale moves.
func (e *Engine) SetDPRCap(x float64) {
	if math.IsNaN(x) {
		x = governor.MinScale
	}
	x = math.Max(governor.MinScale, math.Min(e.maxDPR, x))
	prev := e.gov.Scale()
	e.gov.SetCap(x)
	if e.gov.Scale() != prev {
		e.applySize(e.w, e.h)
	}
}

// SetMaxDPR bounds every later SetDPRCap and pulls the current cap under it.
// Values below 1, NaN and Inf are ignored.
func (e *Engine) SetMaxDPR(m float64) bool {
	if !(m >= governor.MinScale) || math.IsInf(m, 0) {
		return false
	}
	e.maxDPR = m
	if e.gov.Max() > m {
		prev := e.gov.Scale()
		e.gov.SetMax(m)
		if e.gov.Scale() != prev {
			e.applySize(e.w, e.h)
		}
	}
	return true
}

func (e *Engine) MaxDPR() float64 { return e.maxDPR }

// SetAdaptive enables or disables governor adaptation.
func (e *Engine) SetAdaptive(on bool) { e.gov.Enabled = on }

// Governor exposes the thresholds for tuning; the scale itself only moves
// through ticks and SetDPRCap.
func (e *Engine) Governor() *governor.Governor { return e.gov }

func nonNeg(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampSigned(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
