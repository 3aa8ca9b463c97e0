package app

import (
	"fmt"

	"github.com/coreman2200/pulsestage/internal/config"
	"github.com/coreman2200/pulsestage/internal/render"
)

// ApplyConfig pushes the engine, layer, fx, camera and governor sections of
// cfg onto eng. Names it does not recognise are errors so typos in a config
// file surface at startup.
func ApplyConfig(eng *render.Engine, cfg *config.Config) error {
	ec := cfg.Engine
	eng.SetTempo(ec.Tempo)
	eng.SetEnergy(ec.Energy)

	var colors render.Palette
	if len(ec.Palette) > 0 {
		p, err := render.ParsePalette(ec.Palette)
		if err != nil {
			return fmt.Errorf("engine.palette: %w", err)
		}
		colors = p
	}
	theme := ec.Theme
	if theme == "" {
		theme = render.ThemeAlbum
	}
	if !eng.SetTheme(theme, colors, ec.MonoColor) {
		return fmt.Errorf("engine.theme: unknown theme %q", theme)
	}

	st := ec.Settings
	eng.Configure(render.Options{
		RotationMul:   &st.RotationMul,
		PulseMul:      &st.PulseMul,
		GlowOpacity:   &st.GlowOpacity,
		TrailAlpha:    &st.TrailAlpha,
		BloomStrength: &st.BloomStrength,
		Complexity:    &st.Complexity,
	})

	for name, lc := range cfg.Layers {
		if _, ok := eng.Layer(name); !ok {
			return fmt.Errorf("layers: unknown layer %q", name)
		}
		if lc.Enabled != nil {
			eng.SetLayerEnabled(name, *lc.Enabled)
		}
		if lc.Opacity != nil {
			eng.SetLayerOpacity(name, *lc.Opacity)
		}
		if lc.Blend != "" {
			b, ok := render.ParseBlend(lc.Blend)
			if !ok {
				return fmt.Errorf("layers.%s.blend: unknown mode %q", name, lc.Blend)
			}
			eng.SetLayerBlend(name, b)
		}
		if len(lc.Options) > 0 {
			eng.Configure(render.Options{Layers: map[string]map[string]float64{name: lc.Options}})
		}
	}

	for name, on := range cfg.FX {
		if !eng.SetFxEnabled(name, on) {
			return fmt.Errorf("fx: unknown effect %q", name)
		}
	}

	mode, ok := render.ParseCameraMode(cfg.Camera.Mode)
	if !ok {
		return fmt.Errorf("camera.mode: unknown mode %q", cfg.Camera.Mode)
	}
	eng.SetCameraMode(mode)
	eng.SetCameraShake(cfg.Camera.Shake)

	gc := cfg.Governor
	g := eng.Governor()
	if gc.WindowS > 0 {
		g.Window = gc.WindowS
	}
	if gc.LowFPS > 0 {
		g.LowFPS = gc.LowFPS
	}
	if gc.HighFPS > 0 {
		g.HighFPS = gc.HighFPS
	}
	if gc.Step > 0 {
		g.Step = gc.Step
	}
	eng.SetAdaptive(gc.Adaptive)
	if gc.MaxDPR != 0 && !eng.SetMaxDPR(gc.MaxDPR) {
		return fmt.Errorf("governor.max_dpr: %v is below 1", gc.MaxDPR)
	}
	if gc.DPRCap > 0 {
		eng.SetDPRCap(gc.DPRCap)
	}

	eng.SetAnalysisEnabled(ec.Analysis)
	if ec.KeyframeDemo > 0 {
		eng.EnableKeyframeDemo(ec.KeyframeDemo)
	}
	return nil
}
