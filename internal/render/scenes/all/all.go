// Package all registers every built-in scene.
package all

import (
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/render/scenes/calib"
	"github.com/coreman2200/pulsestage/internal/render/scenes/covers"
	"github.com/coreman2200/pulsestage/internal/render/scenes/kaleido"
	"github.com/coreman2200/pulsestage/internal/render/scenes/orbit"
	"github.com/coreman2200/pulsestage/internal/render/scenes/particles"
	"github.com/coreman2200/pulsestage/internal/render/scenes/ribbons"
	"github.com/coreman2200/pulsestage/internal/render/scenes/rings"
	"github.com/coreman2200/pulsestage/internal/render/scenes/ripples"
	"github.com/coreman2200/pulsestage/internal/render/scenes/tunnel"
)

// Registry returns a registry holding the eight stock scenes plus calib.
func Registry() *render.Registry {
	r := render.NewRegistry()
	r.Register(rings.Name, func(seed uint32) render.Scene { return rings.New(seed) })
	r.Register(particles.Name, func(seed uint32) render.Scene { return particles.New(seed) })
	r.Register(orbit.Name, func(seed uint32) render.Scene { return orbit.New(seed) })
	r.Register(tunnel.Name, func(seed uint32) render.Scene { return tunnel.New(seed) })
	r.Register(ripples.Name, func(seed uint32) render.Scene { return ripples.New(seed) })
	r.Register(ribbons.Name, func(seed uint32) render.Scene { return ribbons.New(seed) })
	r.Register(kaleido.Name, func(seed uint32) render.Scene { return kaleido.New(seed) })
	r.Register(covers.Name, func(seed uint32) render.Scene { return covers.New(seed) })
	r.Register(calib.Name, func(seed uint32) render.Scene { return calib.New(seed) })
	return r
}
