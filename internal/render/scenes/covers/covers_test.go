package covers

import (
	"testing"

	"github.com/coreman2200/pulsestage/internal/render"
)

func TestTiltBiasIsClamped(t *testing.T) {
	s := New(4)
	s.Resize(400, 300)
	f := &render.Frame{Tilt: render.Tilt{X: 1, Y: -1}, Scale: 1, Width: 400, Height: 300}
	for i := 0; i < 500; i++ {
		s.Update(0.001, f)
	}
	for _, sp := range s.sprites {
		if sp.vx != maxVel || sp.vy != -maxVel {
			t.Fatalf("velocity not pinned to the tilt clamp: %v,%v", sp.vx, sp.vy)
		}
	}
}

func TestSpritesWrapAroundMargin(t *testing.T) {
	s := New(4)
	s.Resize(100, 100)
	s.sprites[0].x = -margin - 1
	s.sprites[0].vx = 0
	s.sprites[0].vy = 0
	s.Update(0, &render.Frame{Scale: 1})
	if s.sprites[0].x != 100+margin {
		t.Fatalf("expected wrap to right edge, got %v", s.sprites[0].x)
	}
}
