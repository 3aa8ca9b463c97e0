package ws

import (
	"encoding/json"
	"sort"

	"github.com/coreman2200/pulsestage/internal/analysis"
	"github.com/coreman2200/pulsestage/internal/config"
	diag "github.com/coreman2200/pulsestage/internal/diagnostics"
	"github.com/coreman2200/pulsestage/internal/led"
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

type themeMsg struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors,omitempty"`
	Custom string   `json:"custom,omitempty"`
}

type layerMsg struct {
	Name    string   `json:"name"`
	Enabled *bool    `json:"enabled,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Blend   *string  `json:"blend,omitempty"`
}

type cameraMsg struct {
	Mode  *string  `json:"mode,omitempty"`
	Shake *float64 `json:"shake,omitempty"`
}

type tiltMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type sizeMsg struct {
	W int `json:"w"`
	H int `json:"h"`
}

type showMsg struct {
	Action  string            `json:"action"` // start | stop | pause | resume | seek
	T       float64           `json:"t,omitempty"`
	Program *sequence.Program `json:"program,omitempty"`
}

// applyControl maps one control message onto the engine. Keys are applied in
// sorted order; unknown keys and bad values are reported on /diag and
// skipped. mu must be held.
func (s *State) applyControl(msg map[string]json.RawMessage) {
	keys := make([]string, 0, len(msg))
	for k := range msg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ok, err := s.control(k, msg[k])
		switch {
		case err != nil:
			s.pushDiag(diag.New(diag.Warn, diag.ControlInvalid, "bad control value").
				With("key", k).With("error", err.Error()))
		case !ok:
			s.pushDiag(diag.New(diag.Warn, diag.ControlUnknown, "unknown control key or name").
				With("key", k).With("value", string(msg[k])))
		}
	}
}

// control applies one key. ok is false when the key, or a name inside its
// value, is not known.
func (s *State) control(key string, raw json.RawMessage) (ok bool, err error) {
	e := s.Eng
	switch key {
	case "palette":
		var hex []string
		if err := json.Unmarshal(raw, &hex); err != nil {
			return true, err
		}
		p, err := render.ParsePalette(hex)
		if err != nil {
			return true, err
		}
		return e.SetPalette(p), nil

	case "theme":
		var t themeMsg
		if err := json.Unmarshal(raw, &t.Name); err != nil {
			if err := json.Unmarshal(raw, &t); err != nil {
				return true, err
			}
		}
		var colors render.Palette
		if len(t.Colors) > 0 {
			if colors, err = render.ParsePalette(t.Colors); err != nil {
				return true, err
			}
		}
		return e.SetTheme(t.Name, colors, t.Custom), nil

	case "tempo", "energy", "position", "dprCap", "keyframeDemo":
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return true, err
		}
		switch key {
		case "tempo":
			e.SetTempo(v)
		case "energy":
			e.SetEnergy(v)
		case "position":
			e.SetPlayPosition(v)
		case "dprCap":
			e.SetDPRCap(v)
		case "keyframeDemo":
			e.EnableKeyframeDemo(v)
		}
		return true, nil

	case "running", "playing", "adaptive", "analysisEnabled", "clearKeyframes", "save":
		var on bool
		if err := json.Unmarshal(raw, &on); err != nil {
			return true, err
		}
		switch key {
		case "running":
			if on {
				e.Start()
			} else {
				e.Stop()
			}
		case "playing":
			s.playing = on
		case "adaptive":
			e.SetAdaptive(on)
		case "analysisEnabled":
			e.SetAnalysisEnabled(on)
		case "clearKeyframes":
			if on {
				e.ClearKeyframes()
			}
		case "save":
			if on {
				return true, s.save()
			}
		}
		return true, nil

	case "layer":
		var l layerMsg
		if err := json.Unmarshal(raw, &l); err != nil {
			return true, err
		}
		if _, found := e.Layer(l.Name); !found {
			return false, nil
		}
		if l.Enabled != nil {
			e.SetLayerEnabled(l.Name, *l.Enabled)
		}
		if l.Opacity != nil {
			e.SetLayerOpacity(l.Name, *l.Opacity)
		}
		if l.Blend != nil {
			b, known := render.ParseBlend(*l.Blend)
			if !known {
				return false, nil
			}
			e.SetLayerBlend(l.Name, b)
		}
		return true, nil

	case "fx":
		var fx map[string]bool
		if err := json.Unmarshal(raw, &fx); err != nil {
			return true, err
		}
		ok = true
		for name, on := range fx {
			ok = e.SetFxEnabled(name, on) && ok
		}
		return ok, nil

	case "camera":
		var c cameraMsg
		if err := json.Unmarshal(raw, &c); err != nil {
			return true, err
		}
		if c.Shake != nil {
			e.SetCameraShake(*c.Shake)
		}
		if c.Mode != nil {
			m, known := render.ParseCameraMode(*c.Mode)
			if !known {
				return false, nil
			}
			e.SetCameraMode(m)
		}
		return true, nil

	case "tilt":
		var t tiltMsg
		if err := json.Unmarshal(raw, &t); err != nil {
			return true, err
		}
		e.SetCameraTilt(t.X, t.Y)
		return true, nil

	case "analysis":
		var u analysis.Update
		if err := json.Unmarshal(raw, &u); err != nil {
			return true, err
		}
		e.UpdateAnalysis(u)
		return true, nil

	case "timeline":
		var tl analysis.Timeline
		if err := json.Unmarshal(raw, &tl); err != nil {
			return true, err
		}
		e.SetTimeline(&tl)
		return true, nil

	case "keyframes":
		var tracks map[string][]sequence.Keyframe
		if err := json.Unmarshal(raw, &tracks); err != nil {
			return true, err
		}
		for name, frames := range tracks {
			e.EnableKeyframeTrack(name, frames)
		}
		return true, nil

	case "configure":
		var o render.Options
		if err := json.Unmarshal(raw, &o); err != nil {
			return true, err
		}
		return e.Configure(o), nil

	case "resize":
		var sz sizeMsg
		if err := json.Unmarshal(raw, &sz); err != nil {
			return true, err
		}
		e.Resize(sz.W, sz.H)
		return true, nil

	case "ledTest":
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return true, err
		}
		p, known := led.ParsePattern(name)
		if s.Sink == nil || !known {
			return false, nil
		}
		s.ledTest = led.NewRunner(p)
		return true, nil

	case "show":
		if s.Show == nil {
			return false, nil
		}
		var m showMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return true, err
		}
		if m.Program != nil {
			if err := s.Show.Load(*m.Program); err != nil {
				s.pushDiag(diag.New(diag.Err, diag.ShowError, "show rejected").With("error", err.Error()))
				return true, nil
			}
			s.pushDiag(diag.New(diag.Info, diag.ShowLoaded, "show loaded").With("clips", len(m.Program.Clips)))
		}
		switch m.Action {
		case "":
		case "start":
			s.Show.Start()
		case "stop":
			s.Show.Stop()
		case "pause":
			s.Show.Pause()
		case "resume":
			s.Show.Resume()
		case "seek":
			s.Show.Seek(m.T)
		default:
			return false, nil
		}
		return true, nil
	}
	return false, nil
}

// save writes the live look back into Cfg and persists it.
func (s *State) save() error {
	if s.ConfigPath == "" || s.Cfg == nil {
		return nil
	}
	e := s.Eng
	c := s.Cfg
	c.Engine.Theme = e.Theme()
	c.Engine.Palette = e.Palette().Hex()
	c.Engine.Settings = e.Settings()
	fx := e.FX()
	c.FX = map[string]bool{
		render.FXVignette: fx.Vignette,
		render.FXGrain:    fx.Grain,
		render.FXChroma:   fx.Chroma,
		render.FXBloom:    fx.Bloom,
		render.FXDOF:      fx.DOF,
	}
	c.Camera.Mode = e.Camera().Mode.String()
	c.Camera.Shake = e.Camera().Shake
	if c.Layers == nil {
		c.Layers = map[string]config.Layer{}
	}
	for _, l := range e.Layers() {
		cl := c.Layers[l.Name]
		on, op := l.Enabled, l.Opacity
		cl.Enabled, cl.Opacity, cl.Blend = &on, &op, l.Blend.String()
		c.Layers[l.Name] = cl
	}
	return config.Save(s.ConfigPath, c)
}
