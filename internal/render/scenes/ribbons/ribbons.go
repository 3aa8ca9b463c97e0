// Package ribbons draws horizontal noise-driven curves across the frame.
package ribbons

import (
	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/noise"
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const Name = "ribbons"

type point struct{ x, y float64 }

type Scene struct {
	render.NoTexture
	count, points int
	lines         [][]point
	w, h          float64
	field         *noise.Field
}

func New(seed uint32) *Scene {
	return &Scene{count: 5, points: 7, field: noise.New(rng.Derive(seed, 1))}
}

func (s *Scene) Name() string { return Name }
func (s *Scene) Len() int     { return len(s.lines) }

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "count":
		s.count = render.OptCount(v, 1, 64)
	case "points":
		s.points = render.OptCount(v, 4, 256)
	case "complexity":
		s.count = render.OptCount(3+3*v, 1, 64)
	}
}

func (s *Scene) Resize(w, h int) {
	s.w, s.h = float64(w), float64(h)
	s.ensure()
}

func (s *Scene) ensure() {
	for len(s.lines) < s.count {
		s.lines = append(s.lines, nil)
	}
	s.lines = s.lines[:s.count]
	for r := range s.lines {
		if len(s.lines[r]) != s.points {
			s.lines[r] = make([]point, s.points)
		}
	}
}

func (s *Scene) Update(dt float64, f *render.Frame) {
	s.ensure()
	amp := s.h*0.25*(0.5+f.Energy) + f.Pulse*20
	step := s.w / float64(s.points-1)
	for r, line := range s.lines {
		rf := float64(r)
		base := s.h * (rf + 1) / float64(s.count+1)
		for i := range line {
			fi := float64(i)
			line[i] = point{
				x: fi*step + s.field.Noise2(fi*0.7+f.Time*0.2, rf*3.1)*step*0.25,
				y: base + s.field.Noise2(fi*0.35+f.Time*0.4, rf*1.7+f.Time*0.25)*amp,
			}
		}
	}
}

// Render strokes each ribbon as quadratic segments through midpoints.
func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	dc.SetLineWidth(2 + f.Pulse*2)
	dc.SetLineCap(gg.LineCapRound)
	for r, line := range s.lines {
		if len(line) < 2 {
			continue
		}
		render.Paint(dc, f.Palette.At(r), 0.85)
		dc.MoveTo(line[0].x, line[0].y)
		for i := 1; i < len(line)-1; i++ {
			mx, my := (line[i].x+line[i+1].x)/2, (line[i].y+line[i+1].y)/2
			dc.QuadraticTo(line[i].x, line[i].y, mx, my)
		}
		last := line[len(line)-1]
		dc.LineTo(last.x, last.y)
		_ = dc.Stroke()
	}
}
