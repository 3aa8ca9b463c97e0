package led

import (
	"image"
	"image/color"
)

// Pattern names a wiring check.
type Pattern string

const (
	IndexSweep  Pattern = "index_sweep"  // one white pixel walking in raster order
	RGBChannels Pattern = "rgb_channels" // full red, green, blue frames
	RowSweep    Pattern = "row_sweep"    // one cyan row at a time
)

func ParsePattern(s string) (Pattern, bool) {
	switch p := Pattern(s); p {
	case IndexSweep, RGBChannels, RowSweep:
		return p, true
	}
	return "", false
}

// Runner steps a pattern frame by frame. A correctly configured Matrix shows
// the sweep moving left to right, top to bottom.
type Runner struct {
	Pattern Pattern
	step    int
	img     *image.RGBA
}

func NewRunner(p Pattern) *Runner { return &Runner{Pattern: p} }

// Step renders the next frame for m. It returns false when the pattern is
// complete.
func (r *Runner) Step(m Matrix) (image.Image, bool) {
	n := m.Count()
	if n == 0 {
		return nil, false
	}
	if r.img == nil || r.img.Rect.Dx() != m.W || r.img.Rect.Dy() != m.H {
		r.img = image.NewRGBA(image.Rect(0, 0, m.W, m.H))
	}
	clear(r.img.Pix)
	for i := 3; i < len(r.img.Pix); i += 4 {
		r.img.Pix[i] = 0xff
	}

	switch r.Pattern {
	case IndexSweep:
		if r.step >= n {
			return nil, false
		}
		r.img.SetRGBA(r.step%m.W, r.step/m.W, color.RGBA{255, 255, 255, 255})
	case RGBChannels:
		if r.step >= 3 {
			return nil, false
		}
		for i := r.step; i < len(r.img.Pix); i += 4 {
			r.img.Pix[i] = 255
		}
	case RowSweep:
		if r.step >= m.H {
			return nil, false
		}
		for x := 0; x < m.W; x++ {
			r.img.SetRGBA(x, r.step, color.RGBA{0, 255, 255, 255})
		}
	default:
		return nil, false
	}
	r.step++
	return r.img, true
}
