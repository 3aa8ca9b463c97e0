package render

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// CoverFit scales the centered square crop of img into an n×n RGBA.
func CoverFit(img image.Image, n int) *image.RGBA {
	if img == nil || n <= 0 {
		return nil
	}
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side <= 0 {
		return nil
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	dst := image.NewRGBA(image.Rect(0, 0, n, n))
	draw.CatmullRom.Scale(dst, dst.Rect, img, image.Rect(x0, y0, x0+side, y0+side), draw.Src, nil)
	return dst
}

// Soften blurs img by shrinking it by factor and scaling back up.
func Soften(img *image.RGBA, factor float64) *image.RGBA {
	if img == nil || factor <= 1 {
		return img
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	sw := max(1, int(math.Round(float64(w)/factor)))
	sh := max(1, int(math.Round(float64(h)/factor)))
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.ApproxBiLinear.Scale(small, small.Rect, img, img.Rect, draw.Src, nil)
	out := image.NewRGBA(img.Rect)
	draw.BiLinear.Scale(out, out.Rect, small, small.Rect, draw.Src, nil)
	return out
}

// Sample reads the nearest texel of img as a straight-alpha color. Outside
// the image it is transparent unless mirror is set, which reflects the
// coordinates so the image tiles seamlessly.
func Sample(img *image.RGBA, u, v float64, mirror bool) gg.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 || math.IsNaN(u) || math.IsNaN(v) {
		return gg.Transparent
	}
	x, y := int(math.Floor(u)), int(math.Floor(v))
	if mirror {
		x, y = reflect(x, w), reflect(y, h)
	} else if x < 0 || y < 0 || x >= w || y >= h {
		return gg.Transparent
	}
	i := y*img.Stride + x*4
	a := float64(img.Pix[i+3])
	if a == 0 {
		return gg.Transparent
	}
	return gg.RGBA{
		R: float64(img.Pix[i]) / a,
		G: float64(img.Pix[i+1]) / a,
		B: float64(img.Pix[i+2]) / a,
		A: a / 255,
	}
}

func reflect(i, n int) int {
	p := 2 * n
	i %= p
	if i < 0 {
		i += p
	}
	if i >= n {
		i = p - 1 - i
	}
	return i
}
