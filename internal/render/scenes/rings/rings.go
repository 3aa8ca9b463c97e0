// Package rings draws concentric rings of radial bars with a center bloom.
package rings

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
)

const Name = "rings"

type Scene struct {
	render.NoTexture
	rings, bars int
}

func New(uint32) *Scene { return &Scene{rings: 3, bars: 60} }

func (s *Scene) Name() string    { return Name }
func (s *Scene) Resize(w, h int) {}

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "rings":
		s.rings = render.OptCount(v, 1, 32)
	case "bars":
		s.bars = render.OptCount(v, 8, 1024)
	case "complexity":
		s.bars = render.OptCount(40+20*v, 8, 1024)
	}
}

func (s *Scene) Rings() int { return s.rings }
func (s *Scene) Bars() int  { return s.bars }

func (s *Scene) Update(dt float64, f *render.Frame) {}

func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	rm, pm := f.Settings.RotationMul, f.Settings.PulseMul
	dc.Push()
	defer dc.Pop()
	dc.Translate(float64(w)/2, float64(h)/2)
	dc.Rotate(f.Rotation * 0.2)

	for r := 0; r < s.rings; r++ {
		rf := float64(r)
		radius := 80 + rf*60 + f.Pulse*8*(rf+1)*pm
		wBar := 3.0
		if r == 0 {
			wBar = 4
		}
		for i := 0; i < s.bars; i++ {
			a := float64(i)/float64(s.bars)*2*math.Pi + f.Rotation*(0.1+rf*0.05)*rm
			length := 12 + math.Sin(2*a+f.Time*(1.5+rf*0.4))*8 + f.Pulse*22*(0.6+f.Energy)

			dc.Push()
			dc.Translate(math.Cos(a)*radius, math.Sin(a)*radius)
			dc.Rotate(a)
			render.Paint(dc, f.Palette.At(i+r), 0.9)
			dc.DrawRectangle(-wBar/2, -length/2, wBar, length)
			_ = dc.Fill()
			dc.Pop()
		}
	}

	bloom := render.RadialBrush(dc, f.Scale, 0, 0, 4, 70+f.Pulse*30).
		AddColorStop(0, render.WithAlpha(f.Palette.At(1), f.Settings.BloomStrength)).
		AddColorStop(1, gg.Transparent)
	dc.SetFillBrush(bloom)
	dc.DrawCircle(0, 0, 120+f.Pulse*10)
	_ = dc.Fill()
}
