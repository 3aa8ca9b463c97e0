// Package post holds the full-frame effects run after compositing: bloom,
// vignette, chromatic aberration and grain, in that order.
package post

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/rng"
)

// Default returns the stock pipeline. seed drives the grain pattern.
func Default(seed uint32) render.PostPipeline {
	return render.PostPipeline{&Bloom{}, Vignette{}, &Chroma{}, NewGrain(seed)}
}

// Bloom adds a blurred quarter-size copy back onto the frame.
type Bloom struct {
	small, up *image.RGBA
}

func (*Bloom) Name() string { return render.FXBloom }

func (b *Bloom) Apply(dc *gg.Context, f *render.Frame) {
	k := f.Settings.BloomStrength
	if k <= 0 {
		return
	}
	img := render.RGBAView(dc)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	sw, sh := max(1, w/4), max(1, h/4)
	b.small = scratch(b.small, sw, sh)
	b.up = scratch(b.up, w, h)

	draw.ApproxBiLinear.Scale(b.small, b.small.Rect, img, img.Rect, draw.Src, nil)
	boxBlur(b.small, 2)
	boxBlur(b.small, 2)
	draw.ApproxBiLinear.Scale(b.up, b.up.Rect, b.small, b.small.Rect, draw.Src, nil)

	px, add := img.Pix, b.up.Pix
	for i := 0; i+3 < len(px); i += 4 {
		for c := 0; c < 3; c++ {
			px[i+c] = sat(float64(px[i+c]) + float64(add[i+c])*k)
		}
	}
}

// Vignette darkens toward the corners with a radial gradient.
type Vignette struct{}

func (Vignette) Name() string { return render.FXVignette }

func (Vignette) Apply(dc *gg.Context, f *render.Frame) {
	w, h := float64(dc.Width()), float64(dc.Height())
	if w == 0 || h == 0 {
		return
	}
	inner := 0.45 * math.Min(w, h)
	outer := math.Hypot(w, h) / 2
	if outer <= inner {
		return
	}
	g := gg.NewRadialGradientBrush(w/2, h/2, inner, outer).
		AddColorStop(0, gg.Transparent).
		AddColorStop(1, gg.RGBA2(0, 0, 0, 0.55))
	dc.Push()
	dc.Identity()
	dc.SetFillBrush(g)
	dc.DrawRectangle(0, 0, w, h)
	_ = dc.Fill()
	dc.Pop()
}

// Chroma adds the red channel shifted right and the blue channel shifted
// left, k = 1+2*pulse logical pixels.
type Chroma struct {
	src []uint8
}

func (*Chroma) Name() string { return render.FXChroma }

func (c *Chroma) Apply(dc *gg.Context, f *render.Frame) {
	w, h := dc.Width(), dc.Height()
	px := render.Pixels(dc)
	if w == 0 || h == 0 || len(px) < w*h*4 {
		return
	}
	k := int(math.Round((1 + 2*f.Pulse) * f.Scale))
	if k <= 0 {
		return
	}
	if cap(c.src) < len(px) {
		c.src = make([]uint8, len(px))
	}
	c.src = c.src[:len(px)]
	copy(c.src, px)
	const a = 0.35
	for y := 0; y < h; y++ {
		row := y * w * 4
		for x := 0; x < w; x++ {
			i := row + x*4
			if xr := x - k; xr >= 0 {
				px[i] = sat(float64(px[i]) + float64(c.src[row+xr*4])*a)
			}
			if xb := x + k; xb < w {
				px[i+2] = sat(float64(px[i+2]) + float64(c.src[row+xb*4+2])*a)
			}
		}
	}
}

// Grain scatters small light and dark specks.
type Grain struct {
	Max int
	rnd *rng.Source
}

func NewGrain(seed uint32) *Grain { return &Grain{Max: 160, rnd: rng.New(seed)} }

func (*Grain) Name() string { return render.FXGrain }

func (g *Grain) Apply(dc *gg.Context, f *render.Frame) {
	w, h := float64(dc.Width()), float64(dc.Height())
	if w == 0 || h == 0 {
		return
	}
	n := g.Max
	if area := int(w * h / 64); area < n {
		n = area
	}
	s := math.Max(1, f.Scale)
	dc.Push()
	dc.Identity()
	for i := 0; i < n; i++ {
		x, y := g.rnd.Range(0, w), g.rnd.Range(0, h)
		size := math.Floor(g.rnd.Range(1, 4)) * s
		a := g.rnd.Range(0.04, 0.1)
		if g.rnd.Float() < 0.5 {
			dc.SetRGBA(1, 1, 1, a)
		} else {
			dc.SetRGBA(0, 0, 0, a)
		}
		dc.DrawRectangle(math.Floor(x), math.Floor(y), size, size)
		_ = dc.Fill()
	}
	dc.Pop()
}

func scratch(img *image.RGBA, w, h int) *image.RGBA {
	if img != nil && img.Rect.Dx() == w && img.Rect.Dy() == h {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func sat(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}
