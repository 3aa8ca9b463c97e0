// Package covers floats rotating album-art sprites with depth, tilt parallax
// and optional depth-of-field blur.
package covers

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const (
	Name = "covers"

	thumbSize = 128
	margin    = 200
	maxVel    = 0.6
	tiltBias  = 0.02
	focusZ    = 0.7
)

type sprite struct {
	x, y, z    float64
	rot        float64
	vx, vy, vr float64
}

type Scene struct {
	n       int
	maxSize float64
	sprites []sprite
	w, h    float64

	tex    *image.RGBA
	blurry map[int]*image.RGBA // DOF levels of tex

	rnd *rng.Source
}

func New(seed uint32) *Scene {
	return &Scene{n: 16, maxSize: 160, rnd: rng.New(seed)}
}

func (s *Scene) Name() string { return Name }
func (s *Scene) Len() int     { return len(s.sprites) }
func (s *Scene) Target() int  { return s.n }

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "count":
		s.n = render.OptCount(v, 1, 512)
	case "size":
		if v > 0 && !math.IsInf(v, 0) {
			s.maxSize = v
		}
	case "complexity":
		s.n = render.OptCount(10*v+8, 1, 512)
	}
}

// SetTexture swaps the sprite image and spins every sprite to a new angle.
func (s *Scene) SetTexture(img image.Image) {
	s.tex = render.CoverFit(img, thumbSize)
	s.blurry = map[int]*image.RGBA{}
	for i := range s.sprites {
		s.sprites[i].rot = s.rnd.Range(-math.Pi, math.Pi)
	}
}

func (s *Scene) Resize(w, h int) {
	s.w, s.h = float64(w), float64(h)
	s.ensure()
}

func (s *Scene) ensure() {
	for len(s.sprites) < s.n {
		s.sprites = append(s.sprites, sprite{
			x: s.rnd.Range(0, s.w), y: s.rnd.Range(0, s.h), z: s.rnd.Range(0.2, 1),
			rot: s.rnd.Range(-math.Pi, math.Pi),
			vx:  s.rnd.Range(-0.3, 0.3), vy: s.rnd.Range(-0.3, 0.3), vr: s.rnd.Range(-0.3, 0.3),
		})
	}
	if len(s.sprites) > s.n {
		s.sprites = s.sprites[:s.n]
	}
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func (s *Scene) Update(dt float64, f *render.Frame) {
	s.ensure()
	vel := 60 + 200*f.Energy + f.Pulse*120
	for i := range s.sprites {
		sp := &s.sprites[i]
		sp.vx = clamp(sp.vx+f.Tilt.X*tiltBias, -maxVel, maxVel)
		sp.vy = clamp(sp.vy+f.Tilt.Y*tiltBias, -maxVel, maxVel)
		sp.x += sp.vx * vel * dt
		sp.y += sp.vy * vel * dt
		sp.rot += sp.vr * dt * (0.2 + f.Energy)
		if sp.x < -margin {
			sp.x = s.w + margin
		}
		if sp.x > s.w+margin {
			sp.x = -margin
		}
		if sp.y < -margin {
			sp.y = s.h + margin
		}
		if sp.y > s.h+margin {
			sp.y = -margin
		}
		sp.z = clamp(sp.z+math.Sin(f.Time*0.6+sp.rot)*0.002, 0.2, 1.2)
		if f.FX.DOF && s.tex != nil {
			s.level(sp.z)
		}
	}
}

// level returns the texture blurred for depth z, building it on first use.
func (s *Scene) level(z float64) *image.RGBA {
	lvl := int(math.Round(math.Abs(z-focusZ) * 6))
	if lvl == 0 {
		return s.tex
	}
	if img, ok := s.blurry[lvl]; ok {
		return img
	}
	img := render.Soften(s.tex, float64(1+lvl))
	s.blurry[lvl] = img
	return img
}

func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	if w <= 0 || h <= 0 {
		return
	}
	sc := f.Scale
	for _, sp := range s.sprites {
		size := s.maxSize * (0.3 + sp.z) * (0.8 + 0.2*f.Pulse)
		alpha := math.Min(1, 0.7+0.3*sp.z)
		angle := sp.rot + f.Rotation*0.05

		dc.Push()
		dc.Translate(sp.x, sp.y)
		dc.Rotate(angle)
		if s.tex == nil {
			render.Paint(dc, f.Palette.At(0), 0.8*alpha)
			dc.DrawRectangle(-size/2, -size/2, size, size)
			_ = dc.Fill()
			dc.Pop()
			continue
		}

		tex := s.tex
		if f.FX.DOF {
			if img, ok := s.blurry[int(math.Round(math.Abs(sp.z-focusZ)*6))]; ok {
				tex = img
			}
		}
		cx, cy := dc.TransformPoint(0, 0)
		cos, sin := math.Cos(-angle), math.Sin(-angle)
		k := float64(tex.Rect.Dx()) / size
		n := float64(tex.Rect.Dx())
		dc.SetFillBrush(gg.NewCustomBrush(func(x, y float64) gg.RGBA {
			lx, ly := (x-cx)/sc, (y-cy)/sc
			u, v := lx*cos-ly*sin, lx*sin+ly*cos
			c := render.Sample(tex, u*k+n/2, v*k+n/2, false)
			c.A *= alpha
			return c
		}))
		dc.DrawRectangle(-size/2, -size/2, size, size)
		_ = dc.Fill()

		render.Paint(dc, f.Palette.At(1), 0.25*alpha)
		dc.SetLineWidth(clamp(size*0.02, 1, 6))
		dc.DrawRectangle(-size/2, -size/2, size, size)
		_ = dc.Stroke()
		dc.Pop()
	}
}
