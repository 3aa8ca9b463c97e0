package led

import (
	"image"
	"testing"
)

func TestIndexSweepWalksTheStrip(t *testing.T) {
	m := Matrix{W: 3, H: 2, Serpentine: true}
	rec := &recorder{n: m.Count()}
	s := NewStrip(rec, m, 1)
	r := NewRunner(IndexSweep)

	var lit []int
	for {
		img, ok := r.Step(m)
		if !ok {
			break
		}
		if err := s.Write(img); err != nil {
			t.Fatalf("write: %v", err)
		}
		for i := 0; i < m.Count(); i++ {
			if rec.last[i*3] == 255 {
				lit = append(lit, i)
			}
		}
	}
	want := []int{0, 1, 2, 5, 4, 3}
	if len(lit) != len(want) {
		t.Fatalf("lit %v want %v", lit, want)
	}
	for i := range want {
		if lit[i] != want[i] {
			t.Fatalf("lit %v want %v", lit, want)
		}
	}
}

func TestRGBChannelsAndRows(t *testing.T) {
	m := Matrix{W: 2, H: 3}
	r := NewRunner(RGBChannels)
	for c := 0; c < 3; c++ {
		img, ok := r.Step(m)
		if !ok {
			t.Fatalf("channel %d missing", c)
		}
		px := img.(*image.RGBA).Pix
		if px[c] != 255 || px[(c+1)%3] != 0 {
			t.Fatalf("channel %d frame wrong: %v", c, px[:4])
		}
	}
	if _, ok := r.Step(m); ok {
		t.Fatalf("rgb pattern should end after three frames")
	}

	rows := NewRunner(RowSweep)
	n := 0
	for {
		if _, ok := rows.Step(m); !ok {
			break
		}
		n++
	}
	if n != 3 {
		t.Fatalf("row sweep took %d frames, want 3", n)
	}
	if _, ok := ParsePattern("plane_z"); ok {
		t.Fatalf("unknown pattern parsed")
	}
}
