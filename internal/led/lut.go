package led

import "math"

// LUT maps an 8 bit channel through a gamma curve.
type LUT [256]uint8

// NewLUT builds out = 255*(in/255)^gamma. gamma <= 0 gives the identity.
func NewLUT(gamma float64) *LUT {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		gamma = 1
	}
	var l LUT
	for i := range l {
		l[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, gamma)))
	}
	return &l
}
