// Package tunnel draws a twisting spiral of spokes over a starfield flying
// toward the viewer.
package tunnel

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const Name = "tunnel"

type star struct{ x, y, z float64 }

type Scene struct {
	render.NoTexture
	density int
	twist   float64
	nStars  int
	stars   []star
	w, h    float64
	rnd     *rng.Source
}

func New(seed uint32) *Scene {
	return &Scene{density: 40, twist: 0.6, nStars: 200, rnd: rng.New(seed)}
}

func (s *Scene) Name() string { return Name }
func (s *Scene) Len() int     { return len(s.stars) }
func (s *Scene) Target() int  { return s.nStars }
func (s *Scene) Density() int { return s.density }

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "density":
		s.density = render.OptCount(v, 0, 2000)
	case "twist":
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			s.twist = v
		}
	case "stars":
		s.nStars = render.OptCount(v, 0, 5000)
	case "complexity":
		s.density = render.OptCount(30*v+20, 0, 2000)
	}
}

func (s *Scene) Resize(w, h int) {
	s.w, s.h = float64(w), float64(h)
	s.ensure()
}

// spread is the half-extent stars are placed in at z=1.
func (s *Scene) spread() float64 { return math.Max(s.w, s.h) * 0.5 }

func (s *Scene) spawn(z float64) star {
	sp := s.spread()
	return star{x: s.rnd.Range(-sp, sp), y: s.rnd.Range(-sp, sp), z: z}
}

func (s *Scene) ensure() {
	for len(s.stars) < s.nStars {
		s.stars = append(s.stars, s.spawn(s.rnd.Range(0.05, 1)))
	}
	if len(s.stars) > s.nStars {
		s.stars = s.stars[:s.nStars]
	}
}

func (s *Scene) Update(dt float64, f *render.Frame) {
	s.ensure()
	dz := dt * (0.2 + 1.3*f.Energy) * (1 + f.Pulse*0.5)
	for i := range s.stars {
		st := &s.stars[i]
		st.z -= dz
		if st.z <= 0 {
			*st = s.spawn(1)
		}
	}
}

func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	fw, fh := float64(w), float64(h)
	dc.Push()
	defer dc.Pop()
	dc.Translate(fw/2, fh/2)

	maxR := math.Hypot(fw, fh) * 0.6
	for i := 0; i < s.density; i++ {
		t := float64(i) / float64(s.density)
		r := maxR * t
		a := f.Rotation*(0.5+s.twist) + t*8*math.Pi
		x, y := math.Cos(a)*r, math.Sin(a)*r
		render.Paint(dc, f.Palette.At(i), 0.15+0.6*(1-t))
		dc.SetLineWidth(2 + 3*(1-t))
		dc.MoveTo(x, y)
		dc.LineTo(x*0.85, y*0.85)
		_ = dc.Stroke()
	}

	for i, st := range s.stars {
		x, y := st.x/st.z, st.y/st.z
		if math.Abs(x) > fw/2+4 || math.Abs(y) > fh/2+4 {
			continue
		}
		near := 1 - math.Min(1, st.z)
		render.Paint(dc, f.Palette.At(i+1), 0.2+0.8*near)
		dc.DrawCircle(x, y, 0.5+2*near)
		_ = dc.Fill()
	}
}
