package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/pulsestage/internal/config"
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/render/scenes/tunnel"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

func engine(t *testing.T) *render.Engine {
	t.Helper()
	eng, err := NewEngine(config.Default())
	require.NoError(t, err)
	return eng
}

func layer(t *testing.T, e *render.Engine, name string) *render.Layer {
	t.Helper()
	l, ok := e.Layer(name)
	require.True(t, ok, name)
	return l
}

func TestConductorCrossfade(t *testing.T) {
	e := engine(t)
	c := NewConductor(e)
	require.NoError(t, c.Load(sequence.Program{Clips: []sequence.Clip{
		{Name: "A", Layers: []string{"rings"}, DurationS: 4, XFadeS: 2},
		{Name: "B", Layers: []string{"tunnel"}, DurationS: 4,
			Options: map[string]map[string]float64{"tunnel": {"density": 9}}},
	}}))
	c.Start()
	for _, l := range e.Layers() {
		assert.Equal(t, l.Name == "rings", l.Enabled, l.Name)
	}

	c.Tick(3) // one second left of A, half way through the fade
	rings, tun := layer(t, e, "rings"), layer(t, e, "tunnel")
	assert.True(t, tun.Enabled)
	assert.InDelta(t, 0.5, tun.Fade, 1e-9)
	assert.InDelta(t, 0.5, rings.Fade, 1e-9)

	c.Tick(1.5) // into B
	assert.False(t, rings.Enabled)
	assert.True(t, tun.Enabled)
	assert.Equal(t, 1.0, tun.Fade)
	assert.Equal(t, 1.0, rings.Fade)
	assert.Equal(t, 9, tun.Scene.(*tunnel.Scene).Density())

	c.Stop()
	for _, l := range e.Layers() {
		assert.Equal(t, 1.0, l.Fade)
	}
}

func TestSetParam(t *testing.T) {
	e := engine(t)
	assert.True(t, SetParam(e, "pulseMul", 1.7))
	assert.Equal(t, 1.7, e.Settings().PulseMul)
	assert.True(t, SetParam(e, "glowOpacity", 3))
	assert.Equal(t, 1.0, e.Settings().GlowOpacity)
	assert.True(t, SetParam(e, "tunnel.density", 33))
	assert.Equal(t, 33, layer(t, e, "tunnel").Scene.(*tunnel.Scene).Density())
	assert.False(t, SetParam(e, "bogus", 1))
	assert.False(t, SetParam(e, "nope.x", 1))
	assert.False(t, SetParam(e, ".x", 1))
}

func TestApplyConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Width, cfg.Engine.Height = 64, 36
	on, op := true, 0.3
	cfg.Layers = map[string]config.Layer{"orbit": {Enabled: &on, Opacity: &op, Blend: "screen"}}
	cfg.FX["chroma"] = true
	cfg.Camera.Mode = "dolly"
	cfg.Engine.Theme = "mono"
	cfg.Engine.MonoColor = "#ff0000"
	cfg.Governor.LowFPS = 20
	cfg.Engine.KeyframeDemo = 60

	e, err := NewEngine(cfg)
	require.NoError(t, err)
	orbit := layer(t, e, "orbit")
	assert.True(t, orbit.Enabled)
	assert.Equal(t, 0.3, orbit.Opacity)
	assert.Equal(t, render.BlendScreen, orbit.Blend)
	assert.True(t, e.FX().Chroma)
	assert.Equal(t, render.CameraDolly, e.Camera().Mode)
	assert.Equal(t, "mono", e.Theme())
	assert.Equal(t, []string{"#ff0000", "#ff0000", "#ffffff"}, e.Palette().Hex())
	assert.Equal(t, 20.0, e.Governor().LowFPS)
	assert.Equal(t, 2.0, e.Scale(), "stock cap leaves the governor room to adapt")
	assert.Equal(t, render.DefaultMaxDPR, e.MaxDPR())

	cfg.Governor.DPRCap, cfg.Governor.MaxDPR = 9, 1.5
	e, err = NewEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.5, e.Scale(), "dpr_cap is limited to max_dpr")

	bad := []func(c *config.Config){
		func(c *config.Config) { c.FX["sparkle"] = true },
		func(c *config.Config) { c.Layers = map[string]config.Layer{"nope": {}} },
		func(c *config.Config) { c.Camera.Mode = "crane" },
		func(c *config.Config) { c.Engine.Theme = "plaid" },
		func(c *config.Config) { c.Engine.Palette = []string{"#xyz"} },
		func(c *config.Config) { c.Layers = map[string]config.Layer{"rings": {Blend: "multiply"}} },
		func(c *config.Config) { c.Governor.MaxDPR = 0.5 },
	}
	for i, mut := range bad {
		c := config.Default()
		c.Engine.Width, c.Engine.Height = 16, 9
		mut(c)
		_, err := NewEngine(c)
		assert.Error(t, err, "case %d", i)
	}
}

func TestInitCoreWithShow(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Width, cfg.Engine.Height = 64, 36
	cfg.Show.Autostart = true
	cfg.Show.Program = &sequence.Program{Clips: []sequence.Clip{{Name: "only", Layers: []string{"ripples"}, DurationS: 2}}}
	core, err := InitCore(cfg)
	require.NoError(t, err)
	assert.Nil(t, core.Strip)
	assert.Equal(t, sequence.Running, core.Show.Seq.State)
	assert.True(t, layer(t, core.Eng, "ripples").Enabled)
	assert.False(t, layer(t, core.Eng, "rings").Enabled)

	cfg.Show.Program = &sequence.Program{}
	_, err = InitCore(cfg)
	assert.Error(t, err)
}
