package render

import (
	"github.com/gogpu/gg"
)

// Layer is one scene with its own offscreen buffer.
type Layer struct {
	Name    string
	Scene   Scene
	Enabled bool
	Opacity float64
	Blend   Blend

	// Fade multiplies Opacity; the show player ramps it during crossfades.
	Fade float64

	// Draws counts frames this layer was rendered; handy for tests and diag.
	Draws int

	dc  *gg.Context
	img *gg.ImageBuf // dc's pixels handed to gg's image blend
}

// LayerDefaults describes the stock state of a named layer.
type LayerDefaults struct {
	Enabled bool
	Opacity float64
	Blend   Blend
}

// LayerOrder is the stock compositing order.
var LayerOrder = []string{"rings", "particles", "orbit", "tunnel", "ripples", "ribbons", "kaleido", "covers"}

// DefaultLayer returns the stock state for name; unknown names get an
// enabled-off, opaque, normal layer.
func DefaultLayer(name string) LayerDefaults {
	d := LayerDefaults{Opacity: 1, Blend: BlendNormal}
	switch name {
	case "rings", "tunnel":
		d.Enabled = true
	case "particles":
		d.Enabled, d.Opacity = true, 0.9
	case "covers":
		d.Enabled, d.Opacity = true, 0.85
	}
	switch name {
	case "particles":
		d.Blend = BlendAdditive
	case "tunnel":
		d.Blend = BlendScreen
	}
	return d
}

func (l *Layer) resize(pw, ph int) {
	if pw <= 0 || ph <= 0 {
		return
	}
	if l.dc == nil {
		l.dc = gg.NewContext(pw, ph)
	} else {
		_ = l.dc.Resize(pw, ph)
	}
	if w, h := l.imgSize(); w != pw || h != ph {
		l.img, _ = gg.NewImageBuf(pw, ph, gg.FormatRGBA8)
	}
}

func (l *Layer) imgSize() (int, int) {
	if l.img == nil {
		return 0, 0
	}
	return l.img.Bounds()
}

// draw clears the buffer, renders the scene at scale s and composites onto dst.
func (l *Layer) draw(dst *gg.Context, f *Frame) {
	if l.dc == nil || l.img == nil || f.Width <= 0 || f.Height <= 0 {
		return
	}
	l.dc.Clear()
	l.dc.Identity()
	l.dc.ResetClip()
	l.dc.Push()
	l.dc.Scale(f.Scale, f.Scale)
	l.Scene.Render(l.dc, f.Width, f.Height, f)
	l.dc.Pop()
	copy(l.img.Data(), Pixels(l.dc))
	l.img.InvalidatePremulCache()
	Composite(dst, l.img, l.Opacity*l.Fade, l.Blend)
	l.Draws++
}

// Stack is the ordered list of layers; list order is composite order.
type Stack struct {
	layers []*Layer
}

// Add appends a layer, replacing any existing one with the same name in place.
func (s *Stack) Add(l *Layer) {
	for i, x := range s.layers {
		if x.Name == l.Name {
			s.layers[i] = l
			return
		}
	}
	s.layers = append(s.layers, l)
}

func (s *Stack) Get(name string) (*Layer, bool) {
	for _, l := range s.layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

func (s *Stack) Layers() []*Layer { return s.layers }

func (s *Stack) Names() []string {
	out := make([]string, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Name
	}
	return out
}

func (s *Stack) resize(pw, ph int) {
	for _, l := range s.layers {
		l.resize(pw, ph)
	}
}
