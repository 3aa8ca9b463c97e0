// Package calib is a static channel sweep for checking LED wiring and color
// order: three bands (red, green, blue) that darken left to right and pull
// toward white near each band's bottom edge.
package calib

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
)

const Name = "calib"

type Scene struct {
	render.NoTexture

	LRGamma    float64 // left→right darkening curve
	TopPow     float64 // band top→bottom white blend curve
	TopMix     float64 // 0..1 how hard to pull toward white
	RightFloor float64 // minimum brightness at the far right
	Base       float64 // overall intensity
	FlipX      bool
	FlipY      bool
}

func New(uint32) *Scene {
	return &Scene{LRGamma: 1.2, TopPow: 0.6, TopMix: 1, Base: 1}
}

func (s *Scene) Name() string                        { return Name }
func (s *Scene) Resize(w, h int)                     {}
func (s *Scene) Update(dt float64, f *render.Frame) {}

func (s *Scene) SetOption(k string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	switch k {
	case "lrgamma":
		if v > 0 {
			s.LRGamma = v
		}
	case "toppow":
		if v > 0 {
			s.TopPow = v
		}
	case "topmix":
		s.TopMix = render.Clamp01(v)
	case "floor":
		s.RightFloor = render.Clamp01(v)
	case "base":
		s.Base = render.Clamp01(v)
	case "flipx":
		s.FlipX = v > 0.5
	case "flipy":
		s.FlipY = v > 0.5
	}
}

func norm(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Color returns the sweep color at device pixel (x, y) of a w×h buffer.
func (s *Scene) Color(x, y, w, h int) (r, g, b float64) {
	if s.FlipX {
		x = w - 1 - x
	}
	if s.FlipY {
		y = h - 1 - y
	}
	band := 0
	bandH := max(1, h/3)
	if h >= 3 {
		band = min(2, y/bandH)
	}
	var c [3]float64
	c[band] = 1

	lr := 1 - math.Pow(norm(x, w), s.LRGamma)
	lr = s.RightFloor + (1-s.RightFloor)*lr

	rowInBand := y - band*bandH
	rows := bandH
	if band == 2 {
		rows = h - 2*bandH
	}
	bt := math.Pow(norm(rowInBand, rows), s.TopPow) * s.TopMix

	for i := range c {
		v := c[i] * lr
		v += (1 - v) * bt
		c[i] = v * s.Base
	}
	return c[0], c[1], c[2]
}

// Render writes device pixels directly so each LED sees an exact value.
func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	pw, ph := dc.Width(), dc.Height()
	if w <= 0 || h <= 0 || pw == 0 || ph == 0 {
		return
	}
	px := render.Pixels(dc)
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			r, g, b := s.Color(x, y, pw, ph)
			i := (y*pw + x) * 4
			px[i] = uint8(math.Round(r * 255))
			px[i+1] = uint8(math.Round(g * 255))
			px[i+2] = uint8(math.Round(b * 255))
			px[i+3] = 255
		}
	}
}
