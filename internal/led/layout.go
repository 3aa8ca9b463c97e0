package led

// Matrix describes how a WxH grid of pixels is wired onto one strip.
type Matrix struct {
	W, H int

	// Serpentine reverses every odd row, as most flexible panels are wired.
	Serpentine bool
	FlipX      bool
	FlipY      bool
}

// Index maps x,y -> strip position (0..N-1).
func (m Matrix) Index(x, y int) int {
	xx, yy := x, y
	if m.FlipX {
		xx = m.W - 1 - xx
	}
	if m.FlipY {
		yy = m.H - 1 - yy
	}
	if m.Serpentine && yy%2 == 1 {
		xx = m.W - 1 - xx
	}
	return yy*m.W + xx
}

func (m Matrix) Count() int {
	if m.W <= 0 || m.H <= 0 {
		return 0
	}
	return m.W * m.H
}
