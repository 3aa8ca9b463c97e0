// Package orbit draws nodes circling the center, linked when close.
package orbit

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const (
	Name = "orbit"

	// edges are O(N²)
	maxNodes = 400
)

type node struct {
	r, a, speed float64
	x, y        float64
}

type Scene struct {
	render.NoTexture
	nodes int
	link  float64
	pts   []node
	w, h  float64
	rnd   *rng.Source
}

func New(seed uint32) *Scene {
	return &Scene{nodes: 60, link: 160, rnd: rng.New(seed)}
}

func (s *Scene) Name() string { return Name }
func (s *Scene) Len() int     { return len(s.pts) }
func (s *Scene) Target() int  { return s.nodes }

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "nodes":
		s.nodes = render.OptCount(v, 4, maxNodes)
	case "link":
		if v >= 0 && !math.IsInf(v, 0) {
			s.link = v
		}
	case "complexity":
		s.nodes = render.OptCount(40*v+20, 4, maxNodes)
	}
}

// Resize scatters new nodes only when the logical size or the count changed;
// render-scale changes keep the current layout.
func (s *Scene) Resize(w, h int) {
	fw, fh := float64(w), float64(h)
	if fw == s.w && fh == s.h && len(s.pts) == s.nodes {
		return
	}
	s.w, s.h = fw, fh
	s.regen()
}

func (s *Scene) regen() {
	cx, cy := s.w/2, s.h/2
	hi := math.Min(s.w, s.h) * 0.45
	s.pts = s.pts[:0]
	for i := 0; i < s.nodes; i++ {
		r := s.rnd.Range(60, hi)
		a := s.rnd.Range(0, 2*math.Pi)
		s.pts = append(s.pts, node{
			r: r, a: a, speed: s.rnd.Range(0.2, 1.2),
			x: cx + math.Cos(a)*r, y: cy + math.Sin(a)*r,
		})
	}
}

func (s *Scene) Update(dt float64, f *render.Frame) {
	if len(s.pts) != s.nodes {
		s.regen()
	}
	cx, cy := s.w/2, s.h/2
	wobble := 0.05 * (0.2 + 0.6*f.Energy)
	for i := range s.pts {
		p := &s.pts[i]
		p.a += dt * p.speed * (0.3 + f.Energy) * (1 + 0.2*f.Pulse)
		rr := p.r * (1 + math.Sin(f.Time*0.5+p.r*0.01)*wobble)
		p.x = cx + math.Cos(p.a)*rr
		p.y = cy + math.Sin(p.a)*rr
	}
}

func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	dc.SetLineWidth(1.2)
	for i := range s.pts {
		a := s.pts[i]
		for j := i + 1; j < len(s.pts); j++ {
			b := s.pts[j]
			d := math.Hypot(a.x-b.x, a.y-b.y)
			if d >= s.link {
				continue
			}
			render.Paint(dc, f.Palette.At(i+j), 0.15+0.45*(1-d/s.link))
			dc.MoveTo(a.x, a.y)
			dc.LineTo(b.x, b.y)
			_ = dc.Stroke()
		}
	}
	r := 1.4 + 0.8*f.Pulse
	for i, p := range s.pts {
		render.Paint(dc, f.Palette.At(i), 0.9)
		dc.DrawCircle(p.x, p.y, r)
		_ = dc.Fill()
	}
}
