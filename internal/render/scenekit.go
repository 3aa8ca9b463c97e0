package render

import (
	"math"

	"github.com/gogpu/gg"
)

// OptCount floors v into [lo, hi]. hi <= 0 leaves the top open; NaN gives lo.
func OptCount(v float64, lo, hi int) int {
	if math.IsNaN(v) || math.IsInf(v, -1) {
		return lo
	}
	if math.IsInf(v, 1) {
		if hi > 0 {
			return hi
		}
		return lo
	}
	n := int(math.Floor(v))
	if n < lo {
		n = lo
	}
	if hi > 0 && n > hi {
		n = hi
	}
	return n
}

// Paint sets c at alpha a for the next fill or stroke.
func Paint(dc *gg.Context, c gg.RGBA, a float64) {
	dc.SetRGBA(c.R, c.G, c.B, clamp01(a))
}

// RadialBrush centers a radial gradient on the logical point (x, y). Brushes
// are sampled in device pixels, so the center goes through dc's transform and
// the radii through scale.
func RadialBrush(dc *gg.Context, scale, x, y, r0, r1 float64) *gg.RadialGradientBrush {
	cx, cy := dc.TransformPoint(x, y)
	return gg.NewRadialGradientBrush(cx, cy, r0*scale, r1*scale)
}
