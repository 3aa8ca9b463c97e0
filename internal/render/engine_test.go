package render

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/analysis"
	"github.com/coreman2200/pulsestage/internal/clock"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

// fakeScene paints a constant color straight into the layer bytes and counts calls.
type fakeScene struct {
	name    string
	r, g, b uint8

	updates, renders int
	beats, bars      int
	w, h             int
}

func (f *fakeScene) Name() string                { return f.name }
func (f *fakeScene) Resize(w, h int)             { f.w, f.h = w, h }
func (f *fakeScene) SetOption(string, float64)   {}
func (f *fakeScene) SetTexture(image.Image)      {}
func (f *fakeScene) Update(dt float64, fr *Frame) { f.updates++ }
func (f *fakeScene) Render(dc *gg.Context, w, h int, fr *Frame) {
	f.renders++
	px := Pixels(dc)
	for i := 0; i+3 < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = f.r, f.g, f.b, 255
	}
}
func (f *fakeScene) OnBeat(*Frame) { f.beats++ }
func (f *fakeScene) OnBar(*Frame)  { f.bars++ }

func zero() *float64 { v := 0.0; return &v }

// newTestEngine registers the given fakes and turns off the background pass.
func newTestEngine(t *testing.T, w, h int, scenes ...*fakeScene) *Engine {
	t.Helper()
	reg := NewRegistry()
	for _, s := range scenes {
		s := s
		reg.Register(s.name, func(uint32) Scene { return s })
	}
	e, err := NewEngine(w, h, reg, 7)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	e.Configure(Options{GlowOpacity: zero(), TrailAlpha: zero()})
	for _, s := range scenes {
		e.SetLayerEnabled(s.name, true)
	}
	return e
}

func pixel(e *Engine, x, y int) [4]uint8 {
	px := Pixels(e.Canvas())
	i := (y*e.Canvas().Width() + x) * 4
	return [4]uint8{px[i], px[i+1], px[i+2], px[i+3]}
}

func TestNewEngineErrors(t *testing.T) {
	if _, err := NewEngine(10, 10, nil, 1); err == nil {
		t.Fatalf("expected error for nil registry")
	}
	if _, err := NewEngine(-1, 10, NewRegistry(), 1); err == nil {
		t.Fatalf("expected error for negative size")
	}
}

func TestLayerDisable(t *testing.T) {
	a := &fakeScene{name: "a", r: 255}
	b := &fakeScene{name: "b", b: 255}
	e := newTestEngine(t, 4, 4, a, b)

	e.Tick(1.0 / 60)
	if got := pixel(e, 1, 1); got != [4]uint8{0, 0, 255, 255} {
		t.Fatalf("expected top layer blue, got %v", got)
	}

	if !e.SetLayerEnabled("b", false) {
		t.Fatalf("layer b should exist")
	}
	drawsB, updatesB := b.renders, b.updates
	e.Tick(1.0 / 60)
	if got := pixel(e, 1, 1); got != [4]uint8{255, 0, 0, 255} {
		t.Fatalf("expected red with b disabled, got %v", got)
	}
	if b.renders != drawsB || b.updates != updatesB {
		t.Fatalf("disabled layer still ran: renders %d->%d updates %d->%d", drawsB, b.renders, updatesB, b.updates)
	}
	if a.renders != 2 {
		t.Fatalf("expected a rendered twice, got %d", a.renders)
	}
}

func TestLayerOpacityAndFade(t *testing.T) {
	a := &fakeScene{name: "a", r: 255, g: 255, b: 255}
	e := newTestEngine(t, 2, 2, a)
	e.SetLayerOpacity("a", 1)
	e.SetLayerFade("a", 0.5)
	e.Tick(0)
	got := pixel(e, 0, 0)
	if got[0] < 126 || got[0] > 129 {
		t.Fatalf("expected half white over black, got %v", got)
	}
}

func TestUnknownNamesReportFalse(t *testing.T) {
	e := newTestEngine(t, 2, 2, &fakeScene{name: "a"})
	if e.SetLayerEnabled("nope", true) || e.SetLayerOpacity("nope", 1) || e.SetLayerBlend("nope", BlendScreen) {
		t.Fatalf("unknown layer accepted")
	}
	if e.SetFxEnabled("sparkle", true) {
		t.Fatalf("unknown fx accepted")
	}
	if e.Configure(Options{Layers: map[string]map[string]float64{"nope": {"count": 1}}}) {
		t.Fatalf("unknown layer in Configure should report false")
	}
	if e.SetTheme("plaid", nil, "") {
		t.Fatalf("unknown theme accepted")
	}
}

func TestDegenerateSize(t *testing.T) {
	a := &fakeScene{name: "a", r: 255}
	e := newTestEngine(t, 0, 0, a)
	e.Tick(0.016)
	if e.Canvas() != nil || e.Image() != nil {
		t.Fatalf("zero-size engine should have no output")
	}
	if a.renders != 0 {
		t.Fatalf("zero-size engine should not render")
	}
	e.Resize(8, 4)
	if w, _ := e.Size(); w != 0 {
		t.Fatalf("resize must wait for the next tick")
	}
	e.Tick(0.016)
	if e.Canvas() == nil || e.Canvas().Width() != 8 || e.Canvas().Height() != 4 {
		t.Fatalf("expected 8x4 canvas after resize")
	}
	if a.w != 8 || a.h != 4 {
		t.Fatalf("scene not resized: %dx%d", a.w, a.h)
	}
	e.Resize(0, 3)
	e.Tick(0.016)
	if e.Image() != nil {
		t.Fatalf("zero width should skip output")
	}
}

func TestDPRCapScalesBuffers(t *testing.T) {
	e := newTestEngine(t, 10, 6, &fakeScene{name: "a"})
	e.SetDPRCap(2)
	if e.Scale() != 2 {
		t.Fatalf("expected scale 2, got %v", e.Scale())
	}
	if e.Canvas().Width() != 20 || e.Canvas().Height() != 12 {
		t.Fatalf("expected 20x12 device buffer, got %dx%d", e.Canvas().Width(), e.Canvas().Height())
	}
	if w, h := e.Size(); w != 10 || h != 6 {
		t.Fatalf("logical size changed: %dx%d", w, h)
	}
}

func TestDPRCapIsBounded(t *testing.T) {
	e := newTestEngine(t, 8, 4, &fakeScene{name: "a"})
	e.SetDPRCap(1e6)
	if e.Scale() != DefaultMaxDPR {
		t.Fatalf("cap not limited to max dpr: %v", e.Scale())
	}
	if e.Canvas().Width() != 24 || e.Canvas().Height() != 12 {
		t.Fatalf("expected 24x12 device buffer, got %dx%d", e.Canvas().Width(), e.Canvas().Height())
	}
	e.Tick(0.016)

	e.SetDPRCap(math.NaN())
	if e.Scale() != 1 {
		t.Fatalf("NaN cap should fall back to 1, got %v", e.Scale())
	}
	e.SetDPRCap(math.Inf(1))
	if e.Scale() != DefaultMaxDPR {
		t.Fatalf("Inf cap should clamp to max dpr, got %v", e.Scale())
	}

	if !e.SetMaxDPR(1.5) || e.Scale() != 1.5 {
		t.Fatalf("lowering max dpr should pull the scale down, got %v", e.Scale())
	}
	for _, bad := range []float64{0.5, math.NaN(), math.Inf(1)} {
		if e.SetMaxDPR(bad) {
			t.Fatalf("max dpr %v accepted", bad)
		}
	}
	e.SetDPRCap(2)
	if e.Scale() != 1.5 {
		t.Fatalf("cap above max dpr: %v", e.Scale())
	}
}

func TestOversizedResizeIsClamped(t *testing.T) {
	e := newTestEngine(t, 4, 4)
	e.Resize(1<<40, 1<<40)
	e.Tick(0.016)
	if w, h := e.Size(); w != MaxDim || h != MaxDim {
		t.Fatalf("expected %dx%d logical size, got %dx%d", MaxDim, MaxDim, w, h)
	}
	cw, ch := e.Canvas().Width(), e.Canvas().Height()
	if cw*ch > MaxPixels || cw == 0 {
		t.Fatalf("device buffer %dx%d exceeds %d pixels", cw, ch, MaxPixels)
	}
	if e.Scale() >= 1 {
		t.Fatalf("render scale should drop below 1, got %v", e.Scale())
	}

	e.Resize(-3, 6)
	e.Tick(0.016)
	if w, h := e.Size(); w != 0 || h != 6 {
		t.Fatalf("negative width should clamp to 0, got %dx%d", w, h)
	}

	big, err := NewEngine(MaxDim*4, 2, NewRegistry(), 1)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if w, _ := big.Size(); w != MaxDim {
		t.Fatalf("NewEngine width not clamped: %d", w)
	}
}

func TestGovernorStepsDownUnderLoad(t *testing.T) {
	e := newTestEngine(t, 10, 10, &fakeScene{name: "a"})
	e.SetDPRCap(2)
	for i := 0; i < 45; i++ {
		e.Tick(0.05) // 20 fps
	}
	if e.Scale() != 1.75 {
		t.Fatalf("expected one step down to 1.75, got %v", e.Scale())
	}
	if e.Canvas().Width() != 17 {
		t.Fatalf("buffers not resized with scale: %d", e.Canvas().Width())
	}
}

func TestEndToEndPulse(t *testing.T) {
	e := newTestEngine(t, 16, 16, &fakeScene{name: "a"})
	pal, err := ParsePalette([]string{"#102030", "#8899aa"})
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	e.SetPalette(pal)
	e.SetTempo(120)
	e.SetEnergy(0.6)

	peak := 0.0
	for i := 0; i < 60; i++ {
		e.Tick(1.0 / 120)
		f := e.Frame()
		want := clock.Pulse(f.Time, 120, 0.6, 1)
		if math.Abs(f.Pulse-want) > 1e-12 {
			t.Fatalf("frame %d: pulse %v want %v", i, f.Pulse, want)
		}
		peak = math.Max(peak, f.Pulse)
	}
	if math.Abs(peak-0.98) > 0.01 {
		t.Fatalf("expected peak near 0.98, got %v", peak)
	}
	f := e.Frame()
	if f.Palette.At(0) != pal[0] || f.Palette.At(3) != pal[1] {
		t.Fatalf("frame palette mismatch: %v", f.Palette.Hex())
	}
	if f.Rotation <= 0 {
		t.Fatalf("rotation did not advance")
	}
}

func TestAnalysisFiresOncePerIndex(t *testing.T) {
	a := &fakeScene{name: "a"}
	off := &fakeScene{name: "off"}
	e := newTestEngine(t, 4, 4, a, off)
	e.SetLayerEnabled("off", false)

	one, two := 1, 2
	e.UpdateAnalysis(analysis.Update{Beat: &one})
	e.UpdateAnalysis(analysis.Update{Beat: &one, Bar: &one})
	e.UpdateAnalysis(analysis.Update{Beat: &two, Bar: &one})
	if a.beats != 2 || a.bars != 1 {
		t.Fatalf("expected 2 beats 1 bar, got %d %d", a.beats, a.bars)
	}
	if off.beats != 0 {
		t.Fatalf("disabled layer reacted")
	}

	e.SetAnalysisEnabled(false)
	three := 3
	e.UpdateAnalysis(analysis.Update{Beat: &three})
	if a.beats != 2 {
		t.Fatalf("disabled bridge fired")
	}
}

func TestAnalysisTimeRejectsNonFinite(t *testing.T) {
	e := newTestEngine(t, 4, 4, &fakeScene{name: "a"})
	at := 12.5
	e.UpdateAnalysis(analysis.Update{Time: &at})
	if e.PlayPosition() != 12.5 {
		t.Fatalf("expected position 12.5, got %v", e.PlayPosition())
	}
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		v := v
		e.UpdateAnalysis(analysis.Update{Time: &v})
		if e.PlayPosition() != 12.5 {
			t.Fatalf("time %v moved the position to %v", v, e.PlayPosition())
		}
	}
}

func TestTimelineDrivesReactions(t *testing.T) {
	a := &fakeScene{name: "a"}
	e := newTestEngine(t, 4, 4, a)
	tl := analysis.Uniform(120, 16, 4, 2)
	e.SetTimeline(&tl)
	e.SetPlayPosition(2.1)
	e.Tick(0)
	e.Tick(0)
	if a.beats != 1 || a.bars != 1 {
		t.Fatalf("expected one beat and one bar, got %d %d", a.beats, a.bars)
	}
	e.SetPlayPosition(2.6)
	e.Tick(0)
	if a.beats != 2 || a.bars != 1 {
		t.Fatalf("expected a second beat only, got %d %d", a.beats, a.bars)
	}
}

func TestKeyframeOverrides(t *testing.T) {
	e := newTestEngine(t, 4, 4, &fakeScene{name: "a"})
	e.EnableKeyframeTrack(TrackRotationMul, []sequence.Keyframe{{T: 0, V: 0.0}})
	for i := 0; i < 10; i++ {
		e.Tick(0.1)
	}
	if r := e.Frame().Rotation; r != 0 {
		t.Fatalf("rotationMul track of 0 should freeze rotation, got %v", r)
	}

	e.ClearKeyframes()
	e.EnableKeyframeDemo(100)
	base := e.Palette()
	e.SetPlayPosition(25)
	e.Tick(0)
	f := e.Frame()
	if math.Abs(f.Settings.PulseMul-1.6) > 1e-9 {
		t.Fatalf("expected pulseMul 1.6 at d/4, got %v", f.Settings.PulseMul)
	}
	e.SetPlayPosition(10)
	e.Tick(0)
	if e.Frame().Palette[0] != base[0] {
		t.Fatalf("palette swapped too early")
	}
	e.SetPlayPosition(60)
	e.Tick(0)
	f = e.Frame()
	if f.Palette[0] != base[1] || f.Palette[1] != base[0] {
		t.Fatalf("expected accent phase to swap base and accent")
	}
	if e.Palette()[0] != base[0] {
		t.Fatalf("engine palette must not change")
	}
}

func TestStepUsesZeroFirstDelta(t *testing.T) {
	e := newTestEngine(t, 4, 4, &fakeScene{name: "a"})
	e.Start()
	now := time.Now()
	e.Step(now)
	if e.Frame().Time != 0 {
		t.Fatalf("first step after start should have dt 0")
	}
	e.Stop()
	e.Step(now)
	if e.Running() {
		t.Fatalf("stopped engine reports running")
	}
}

func TestThemes(t *testing.T) {
	e := newTestEngine(t, 2, 2)
	if !e.SetTheme(ThemeMono, nil, "#ff0000") {
		t.Fatalf("mono rejected")
	}
	p := e.Palette()
	if len(p) != 3 || p[0] != gg.RGB(1, 0, 0) || p[2] != gg.RGB(1, 1, 1) {
		t.Fatalf("unexpected mono palette %v", p.Hex())
	}
	if !e.SetTheme("neon", nil, "") || e.Palette()[0] != MustPalette("#00ffd5")[0] {
		t.Fatalf("neon not applied")
	}
	e.SetTheme(ThemeAlbum, MustPalette("#123456"), "")
	if e.Palette().Hex()[0] != "#123456" {
		t.Fatalf("album palette not applied: %v", e.Palette().Hex())
	}
	if e.SetPalette(nil) {
		t.Fatalf("empty palette accepted")
	}
}
