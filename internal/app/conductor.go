package app

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

// Conductor drives the engine's layer set from a show program. During a
// crossfade the incoming clip's new layers fade in while layers it drops fade
// out.
type Conductor struct {
	Eng *render.Engine
	Seq *sequence.Player
	Log zerolog.Logger

	incoming []string
	outgoing []string
}

func NewConductor(eng *render.Engine) *Conductor {
	c := &Conductor{Eng: eng, Log: zerolog.Nop()}
	c.Seq = sequence.NewPlayer(sequence.Hooks{
		ApplyClip:    c.applyClip,
		ArmNext:      c.armNext,
		SetCrossfade: c.setCrossfade,
		SetParam:     c.setParam,
	})
	return c
}

func (c *Conductor) Load(p sequence.Program) error { return c.Seq.Load(p) }
func (c *Conductor) Start()                        { c.Seq.Start() }
func (c *Conductor) Pause()                        { c.Seq.Pause() }
func (c *Conductor) Resume()                       { c.Seq.Resume() }
func (c *Conductor) Seek(t float64)                { c.Seq.Seek(t) }
func (c *Conductor) Tick(dt float64)               { c.Seq.Tick(dt) }

// Stop halts the show and leaves every layer fully faded in.
func (c *Conductor) Stop() {
	c.Seq.Stop()
	for _, l := range c.Eng.Layers() {
		l.Fade = 1
	}
	c.incoming, c.outgoing = nil, nil
}

func (c *Conductor) applyClip(clip sequence.Clip) {
	on := set(clip.Layers)
	for _, l := range c.Eng.Layers() {
		l.Enabled = on[l.Name]
		l.Fade = 1
	}
	if len(clip.Options) > 0 && !c.Eng.Configure(render.Options{Layers: clip.Options}) {
		c.Log.Warn().Str("clip", clip.Name).Msg("clip options name an unknown layer")
	}
	c.incoming, c.outgoing = nil, nil
	c.Log.Debug().Str("clip", clip.Name).Strs("layers", clip.Layers).Msg("clip")
}

func (c *Conductor) armNext(clip sequence.Clip) {
	next := set(clip.Layers)
	c.incoming, c.outgoing = nil, nil
	for _, l := range c.Eng.Layers() {
		switch {
		case next[l.Name] && !l.Enabled:
			l.Enabled = true
			l.Fade = 0
			c.incoming = append(c.incoming, l.Name)
		case !next[l.Name] && l.Enabled:
			c.outgoing = append(c.outgoing, l.Name)
		}
	}
	c.Log.Debug().Str("clip", clip.Name).Strs("in", c.incoming).Strs("out", c.outgoing).Msg("arm")
}

func (c *Conductor) setCrossfade(a float64) {
	for _, n := range c.incoming {
		c.Eng.SetLayerFade(n, a)
	}
	for _, n := range c.outgoing {
		c.Eng.SetLayerFade(n, 1-a)
	}
}

// setParam routes automation: engine settings by name, tempo and energy, and
// "<layer>.<option>" to a scene option.
func (c *Conductor) setParam(name string, v float64) {
	if SetParam(c.Eng, name, v) {
		return
	}
	c.Log.Debug().Str("param", name).Msg("unknown show param")
}

// SetParam applies one named numeric parameter to eng. It reports whether the
// name was understood.
func SetParam(eng *render.Engine, name string, v float64) bool {
	var o render.Options
	switch name {
	case "rotationMul":
		o.RotationMul = &v
	case "pulseMul":
		o.PulseMul = &v
	case "glowOpacity":
		o.GlowOpacity = &v
	case "trailAlpha":
		o.TrailAlpha = &v
	case "bloomStrength":
		o.BloomStrength = &v
	case "complexity":
		o.Complexity = &v
	case "tempo":
		eng.SetTempo(v)
		return true
	case "energy":
		eng.SetEnergy(v)
		return true
	default:
		layer, key, ok := strings.Cut(name, ".")
		if !ok || layer == "" || key == "" {
			return false
		}
		return eng.Configure(render.Options{Layers: map[string]map[string]float64{layer: {key: v}}})
	}
	eng.Configure(o)
	return true
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
