package render

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Buffers are straight-alpha RGBA bytes, the layout of gg's software pixmap.

// Pixels returns the backing bytes of dc.
func Pixels(dc *gg.Context) []uint8 { return dc.ResizeTarget().Data() }

// RGBAView aliases dc's pixels as an *image.RGBA without copying. Writes
// through the view land in the context.
func RGBAView(dc *gg.Context) *image.RGBA {
	w, h := dc.Width(), dc.Height()
	return &image.RGBA{Pix: Pixels(dc), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// Composite draws src onto dst at opacity. Normal and screen go through gg's
// image blend; additive has no gg mode and is summed in place. src must be
// dst's size. dst's transform is reset.
func Composite(dst *gg.Context, src *gg.ImageBuf, opacity float64, mode Blend) {
	op := clamp01(opacity)
	if op == 0 || src == nil {
		return
	}
	if w, h := src.Bounds(); w != dst.Width() || h != dst.Height() {
		return
	}
	if mode == BlendAdditive {
		Add(Pixels(dst), src.Data(), op)
		return
	}
	bm := gg.BlendNormal
	if mode == BlendScreen {
		bm = gg.BlendScreen
	}
	dst.Identity()
	dst.DrawImageEx(src, gg.DrawImageOptions{
		Interpolation: gg.InterpNearest,
		Opacity:       op,
		BlendMode:     bm,
	})
}

// Add sums src into dst at opacity, the canvas "lighter" operator. Both
// buffers are straight-alpha RGBA of the same length.
func Add(dst, src []uint8, opacity float64) {
	op := clamp01(opacity)
	if op == 0 || len(dst) != len(src) {
		return
	}
	for i := 0; i+3 < len(src); i += 4 {
		sa := float64(src[i+3]) / 255 * op
		if sa == 0 {
			continue
		}
		da := float64(dst[i+3]) / 255
		oa := math.Min(1, sa+da)
		for c := 0; c < 3; c++ {
			v := float64(src[i+c])*sa + float64(dst[i+c])*da
			dst[i+c] = byteOf(v / oa)
		}
		dst[i+3] = byteOf(oa * 255)
	}
}

// Darken scales the color channels toward black by a, leaving alpha alone.
func Darken(buf []uint8, a float64) {
	k := 1 - clamp01(a)
	if k == 1 {
		return
	}
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i] = byteOf(float64(buf[i]) * k)
		buf[i+1] = byteOf(float64(buf[i+1]) * k)
		buf[i+2] = byteOf(float64(buf[i+2]) * k)
	}
}

// AddDisk adds a soft disk of color c into buf (w×h) in device pixels.
// Overlapping disks accumulate and clamp.
func AddDisk(buf []uint8, w, h int, cx, cy, r float64, c gg.RGBA, alpha float64) {
	if r <= 0 || alpha <= 0 || w <= 0 || h <= 0 || len(buf) < w*h*4 {
		return
	}
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	r2 := r * r
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 >= r2 {
				continue
			}
			// linear falloff over the outer pixel
			cov := clamp01(r - math.Sqrt(d2))
			a := alpha * cov
			i := (y*w + x) * 4
			da := float64(buf[i+3]) / 255
			oa := math.Min(1, a+da)
			buf[i] = byteOf((c.R*255*a + float64(buf[i])*da) / oa)
			buf[i+1] = byteOf((c.G*255*a + float64(buf[i+1])*da) / oa)
			buf[i+2] = byteOf((c.B*255*a + float64(buf[i+2])*da) / oa)
			buf[i+3] = byteOf(oa * 255)
		}
	}
}

func byteOf(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp01 clamps v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 { return clamp01(v) }
