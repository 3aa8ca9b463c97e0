// Package particles is a noise-steered particle field pulled toward the
// center and drawn additively.
package particles

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/noise"
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const Name = "particles"

type particle struct {
	x, y, vx, vy float64
	hue, life    float64
}

type Scene struct {
	render.NoTexture
	n    int
	size float64
	ps   []particle
	w, h float64

	rnd   *rng.Source
	field *noise.Field
}

func New(seed uint32) *Scene {
	return &Scene{
		n:     300,
		size:  1.4,
		rnd:   rng.New(seed),
		field: noise.New(rng.Derive(seed, 1)),
	}
}

func (s *Scene) Name() string { return Name }
func (s *Scene) Len() int     { return len(s.ps) }
func (s *Scene) Target() int  { return s.n }

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "count":
		s.n = render.OptCount(v, 10, 20000)
	case "size":
		if v > 0 && !math.IsInf(v, 0) {
			s.size = v
		}
	case "complexity":
		s.n = render.OptCount(200*v, 0, 20000)
	}
}

func (s *Scene) Resize(w, h int) {
	s.w, s.h = float64(w), float64(h)
	s.ensure()
}

func (s *Scene) ensure() {
	for len(s.ps) < s.n {
		s.ps = append(s.ps, particle{
			x:    s.rnd.Range(-s.w, 2*s.w),
			y:    s.rnd.Range(-s.h, 2*s.h),
			vx:   s.rnd.Range(-0.2, 0.2),
			vy:   s.rnd.Range(-0.2, 0.2),
			hue:  s.rnd.Float(),
			life: s.rnd.Float(),
		})
	}
	if len(s.ps) > s.n {
		s.ps = s.ps[:s.n]
	}
}

func (s *Scene) Update(dt float64, f *render.Frame) {
	s.ensure()
	cx, cy := s.w/2, s.h/2
	attract := 10 * (0.5 + f.Energy)
	speed := 40 + 200*f.Energy + f.Pulse*160
	for i := range s.ps {
		p := &s.ps[i]
		dx, dy := cx-p.x, cy-p.y
		dist := math.Hypot(dx, dy) + 1
		heading := s.field.Noise2(p.x*0.003, p.y*0.003+f.Time*0.1) * 2 * math.Pi
		p.vx += dx/dist*attract*dt + math.Cos(heading)*0.05
		p.vy += dy/dist*attract*dt + math.Sin(heading)*0.05
		p.x += p.vx * speed * dt
		p.y += p.vy * speed * dt
		p.life += dt * (0.2 + 0.8*f.Energy)
		if p.x < -100 || p.x > s.w+100 || p.y < -100 || p.y > s.h+100 {
			p.x, p.y = s.rnd.Range(0, s.w), s.rnd.Range(0, s.h)
			p.vx, p.vy = s.rnd.Range(-0.2, 0.2), s.rnd.Range(-0.2, 0.2)
			p.life = 0
		}
	}
}

// OnBeat kicks every particle away from the center, harder at high energy.
func (s *Scene) OnBeat(f *render.Frame) {
	cx, cy := s.w/2, s.h/2
	k := 0.4 * f.Energy
	for i := range s.ps {
		p := &s.ps[i]
		dx, dy := p.x-cx, p.y-cy
		dist := math.Hypot(dx, dy) + 1
		p.vx += dx / dist * k
		p.vy += dy / dist * k
	}
}

// Render splats straight into the layer bytes so overlaps add up.
func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	px := render.Pixels(dc)
	pw, ph := dc.Width(), dc.Height()
	sc := f.Scale
	n := len(f.Palette)
	for _, p := range s.ps {
		t := math.Sin(p.life*math.Pi)*0.5 + 0.5
		col := f.Palette.At(int(p.hue * float64(n)))
		r := s.size + t*2.5 + f.Pulse*0.6
		render.AddDisk(px, pw, ph, p.x*sc, p.y*sc, r*sc, col, 0.12+t*0.6)
	}
}
