// Package noise implements seeded 2D value noise.
package noise

import (
	"math"

	"github.com/coreman2200/pulsestage/internal/rng"
)

const size = 256

// Field is a value-noise field. Each scene owns its own Field so flow
// patterns never couple across scenes.
type Field struct {
	perm [size * 2]uint8
	vals [size]float64
}

// New builds the permutation and lattice tables from seed.
func New(seed uint32) *Field {
	f := &Field{}
	r := rng.New(seed)
	var p [size]uint8
	for i := range p {
		p[i] = uint8(i)
		f.vals[i] = r.Range(-1, 1)
	}
	// Fisher-Yates
	for i := size - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := 0; i < size*2; i++ {
		f.perm[i] = p[i&(size-1)]
	}
	return f
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func (f *Field) lattice(ix, iy int) float64 {
	return f.vals[f.perm[int(f.perm[ix&(size-1)])+iy&(size-1)]]
}

// Noise2 returns a continuous value in [-1,1].
func (f *Field) Noise2(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0
	}
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	v00 := f.lattice(ix, iy)
	v10 := f.lattice(ix+1, iy)
	v01 := f.lattice(ix, iy+1)
	v11 := f.lattice(ix+1, iy+1)

	u, v := fade(fx), fade(fy)
	a := v00 + (v10-v00)*u
	b := v01 + (v11-v01)*u
	return a + (b-a)*v
}
