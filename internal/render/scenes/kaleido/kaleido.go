// Package kaleido mirrors a source image, the texture or a palette pattern,
// into rotating wedges.
package kaleido

import (
	"image"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

const (
	Name = "kaleido"

	texSize      = 512
	fallbackSize = 256
)

type Scene struct {
	segments int
	zoom     float64

	tex      *image.RGBA // cover-fit texture, nil when unset
	fallback *image.RGBA
	palKey   string

	rnd *rng.Source
}

func New(seed uint32) *Scene {
	return &Scene{segments: 8, zoom: 1, rnd: rng.New(seed)}
}

func (s *Scene) Name() string   { return Name }
func (s *Scene) Segments() int  { return s.segments }
func (s *Scene) Resize(w, h int) {}

func even(n int) int {
	if n%2 == 1 {
		n++
	}
	return n
}

func (s *Scene) SetOption(k string, v float64) {
	switch k {
	case "segments":
		s.segments = even(render.OptCount(v, 4, 24))
	case "zoom":
		if v > 0 && !math.IsInf(v, 0) {
			s.zoom = v
		}
	case "complexity":
		s.segments = even(render.OptCount(2*math.Floor(3+2*v), 4, 24))
	}
}

func (s *Scene) SetTexture(img image.Image) { s.tex = render.CoverFit(img, texSize) }

// OnBar switches to a different even segment count in [6,16].
func (s *Scene) OnBar(f *render.Frame) {
	i := s.rnd.Intn(6)
	n := 6 + 2*i
	if n == s.segments {
		n = 6 + 2*((i+1)%6)
	}
	s.segments = n
}

func (s *Scene) Update(dt float64, f *render.Frame) {
	if s.tex != nil {
		return
	}
	if key := strings.Join(f.Palette.Hex(), ","); key != s.palKey || s.fallback == nil {
		s.palKey = key
		s.fallback = pattern(f.Palette)
	}
}

// pattern paints a diagonal palette gradient with a few soft discs; it depends
// only on the palette.
func pattern(p render.Palette) *image.RGBA {
	n := float64(fallbackSize)
	dc := gg.NewContext(fallbackSize, fallbackSize)
	g := gg.NewLinearGradientBrush(0, 0, n, n)
	if len(p) == 0 {
		p = render.Palette{gg.White}
	}
	for i, c := range p {
		off := 0.0
		if len(p) > 1 {
			off = float64(i) / float64(len(p)-1)
		}
		g.AddColorStop(off, c)
	}
	dc.SetFillBrush(g)
	dc.DrawRectangle(0, 0, n, n)
	_ = dc.Fill()

	r := rng.New(0x6b616c)
	for i := 0; i < 9; i++ {
		render.Paint(dc, p.At(i+1), 0.55)
		dc.DrawCircle(r.Range(0, n), r.Range(0, n), r.Range(n*0.05, n*0.2))
		_ = dc.Fill()
	}
	return render.RGBAView(dc)
}

func (s *Scene) source() *image.RGBA {
	if s.tex != nil {
		return s.tex
	}
	return s.fallback
}

func (s *Scene) Render(dc *gg.Context, w, h int, f *render.Frame) {
	src := s.source()
	if w <= 0 || h <= 0 || src == nil || s.segments <= 0 {
		return
	}
	fw, fh := float64(w), float64(h)
	cx, cy := fw/2, fh/2
	radius := math.Hypot(fw, fh)/2 + 2
	span := 2 * math.Pi / float64(s.segments)
	zoom := s.zoom * (1 + 0.05*f.Pulse)
	sc := f.Scale
	dcx, dcy := dc.TransformPoint(cx, cy)
	n := float64(src.Rect.Dx())
	texel := n / math.Max(fw, fh) / zoom

	for k := 0; k < s.segments; k++ {
		theta := f.Rotation*0.3 + float64(k)*span
		cos, sin := math.Cos(-theta), math.Sin(-theta)
		flip := k%2 == 1
		dc.SetFillBrush(gg.NewCustomBrush(func(x, y float64) gg.RGBA {
			lx, ly := (x-dcx)/sc, (y-dcy)/sc
			u, v := lx*cos-ly*sin, lx*sin+ly*cos
			if flip {
				u = -u
			}
			return render.Sample(src, u*texel+n/2, v*texel+n/2, true)
		}))

		a0 := float64(k) * span
		dc.MoveTo(cx, cy)
		const arcSteps = 12
		for j := 0; j <= arcSteps; j++ {
			a := a0 + span*float64(j)/arcSteps
			dc.LineTo(cx+math.Cos(a)*radius, cy+math.Sin(a)*radius)
		}
		dc.ClosePath()
		_ = dc.Fill()
	}
}
