package governor

import "testing"

// run feeds whole windows at a fixed fps and returns the scale after each.
func run(g *Governor, fps float64, windows int) []float64 {
	var out []float64
	dt := 1 / fps
	for w := 0; w < windows; w++ {
		n := int(g.Window*fps) + 1
		for i := 0; i < n; i++ {
			g.Observe(dt)
		}
		out = append(out, g.Scale())
	}
	return out
}

func TestLowFPSStepsDownToMinimum(t *testing.T) {
	g := New(2)
	scales := run(g, 20, 8)
	prev := 2.0
	for i, s := range scales {
		if s > prev {
			t.Fatalf("window %d: scale rose %v -> %v", i, prev, s)
		}
		if s < MinScale {
			t.Fatalf("window %d: scale %v below minimum", i, s)
		}
		prev = s
	}
	if scales[len(scales)-1] != MinScale {
		t.Fatalf("expected to settle at %v, got %v", MinScale, scales[len(scales)-1])
	}
	if scales[0] != 1.75 {
		t.Fatalf("expected a single 0.25 step in the first window, got %v", scales[0])
	}
}

func TestHighFPSStepsUpToCap(t *testing.T) {
	g := New(2)
	g.scale = 1
	scales := run(g, 60, 8)
	prev := 1.0
	for i, s := range scales {
		if s < prev || s > 2 {
			t.Fatalf("window %d: bad scale %v (prev %v)", i, s, prev)
		}
		prev = s
	}
	if prev != 2 {
		t.Fatalf("expected cap 2, got %v", prev)
	}
}

func TestMidBandHolds(t *testing.T) {
	g := New(2)
	g.scale = 1.5
	for _, s := range run(g, 40, 5) {
		if s != 1.5 {
			t.Fatalf("expected steady 1.5, got %v", s)
		}
	}
}

func TestNoChangeInsideWindow(t *testing.T) {
	g := New(2)
	for i := 0; i < 30; i++ {
		if g.Observe(0.05) {
			t.Fatalf("changed before the window elapsed")
		}
	}
}

func TestDisabledOnlyMeasures(t *testing.T) {
	g := New(2)
	g.Enabled = false
	run(g, 10, 3)
	if g.Scale() != 2 {
		t.Fatalf("disabled governor changed scale to %v", g.Scale())
	}
	if g.FPS() <= 0 {
		t.Fatalf("expected fps measurement, got %v", g.FPS())
	}
}

func TestCapBelowOne(t *testing.T) {
	g := New(0.5)
	if g.Max() != 1 || g.Scale() != 1 {
		t.Fatalf("expected cap and scale of 1, got %v/%v", g.Max(), g.Scale())
	}
}
