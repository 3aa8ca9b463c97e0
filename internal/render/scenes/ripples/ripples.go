// Package ripples spawns expanding rings on beats and sections.
package ripples

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const Name = "ripples"

type ripple struct{ x, y, born float64 }

type Scene struct {
	render.NoTexture
	max  int
	life float64
	q    []ripple
	now  float64
	w, h float64
	rnd  *rng.Source
}

func New(seed uint32) *Scene {
	return &Scene{max: 24, life: 2.4, rnd: rng.New(seed)}
}

func (s *Scene) Name() string { return Name }
func (s *Scene) Len() int     { return len(s.q) }

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "max":
		s.max = render.OptCount(v, 1, 512)
	case "life":
		if v > 0 && !math.IsInf(v, 0) {
			s.life = v
		}
	case "complexity":
		s.max = render.OptCount(12+12*v, 1, 512)
	}
	s.trim()
}

func (s *Scene) Resize(w, h int) { s.w, s.h = float64(w), float64(h) }

func (s *Scene) push(t float64) {
	s.q = append(s.q, ripple{x: s.rnd.Range(0, s.w), y: s.rnd.Range(0, s.h), born: t})
	s.trim()
}

func (s *Scene) trim() {
	if over := len(s.q) - s.max; over > 0 {
		s.q = append(s.q[:0], s.q[over:]...)
	}
}

func (s *Scene) OnBeat(f *render.Frame) { s.push(f.Time) }

func (s *Scene) OnSection(f *render.Frame) {
	for i := 0; i < 4; i++ {
		s.push(f.Time)
	}
}

// Update drops expired ripples from the front of the queue.
func (s *Scene) Update(dt float64, f *render.Frame) {
	s.now = f.Time
	i := 0
	for i < len(s.q) && s.now-s.q[i].born >= s.life {
		i++
	}
	if i > 0 {
		s.q = append(s.q[:0], s.q[i:]...)
	}
}

func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	dc.SetLineWidth(2)
	spread := 120 + 240*f.Energy
	for i, r := range s.q {
		age := f.Time - r.born
		if age < 0 || age >= s.life {
			continue
		}
		radius := age * spread
		alpha := (1 - age/s.life) * 0.8
		for j := 0; j < 3; j++ {
			rr := radius - float64(j)*14
			if rr <= 0 {
				break
			}
			render.Paint(dc, f.Palette.At(i+j), alpha)
			dc.DrawCircle(r.x, r.y, rr)
			_ = dc.Stroke()
		}
	}
}
