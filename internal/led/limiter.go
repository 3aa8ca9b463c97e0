package led

import "math"

// Limiter keeps a frame inside the strip's power envelope in two stages:
//  1. a per-LED white cap scales (R,G,B) so R+G+B <= WhiteCap
//  2. a global budget estimates current and scales the whole frame so it
//     stays under BudgetMA, compressing smoothly from Knee*BudgetMA
//
// Channels are linear 0..1. WS2812 draws about 20 mA per channel at full scale.
type Limiter struct {
	WhiteCap float64 // sum of channels, 3 = no cap
	ChanMA   float64
	BudgetMA float64 // 0 disables the global stage
	Knee     float64 // in (0,1)
}

func DefaultLimiter() Limiter {
	return Limiter{WhiteCap: 3, ChanMA: 20, Knee: 0.9}
}

// Current estimates the draw in mA of rgb (packed triples).
func Current(rgb []float64, chanMA float64) float64 {
	var total float64
	for _, v := range rgb {
		total += v * chanMA
	}
	return total
}

// Apply limits rgb in place.
func (l Limiter) Apply(rgb []float64) {
	whiteCap := l.WhiteCap
	if whiteCap <= 0 {
		whiteCap = 3
	}
	chanMA := l.ChanMA
	if chanMA <= 0 {
		chanMA = 20
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}

	for i := 0; i+2 < len(rgb); i += 3 {
		s := rgb[i] + rgb[i+1] + rgb[i+2]
		if s > whiteCap && s > 0 {
			k := whiteCap / s
			rgb[i] *= k
			rgb[i+1] *= k
			rgb[i+2] *= k
		}
	}

	if l.BudgetMA <= 0 {
		return
	}
	total := Current(rgb, chanMA)
	if total <= 0 {
		return
	}
	r := total / l.BudgetMA
	if r <= knee {
		return
	}
	// above the knee the load is compressed toward the budget, never past it
	soft := 1 - knee
	f := knee + soft*(1-math.Exp(-(r-knee)/soft))
	scale(rgb, f/r)
}

func scale(rgb []float64, s float64) {
	if s >= 1 {
		return
	}
	for i := range rgb {
		rgb[i] *= s
	}
}
