package render

import "github.com/gogpu/gg"

// Effect is one full-frame post stage. Name must match an FX flag; the
// stage only runs while that flag is on.
type Effect interface {
	Name() string
	Apply(dc *gg.Context, f *Frame)
}

// PostPipeline runs its effects in order.
type PostPipeline []Effect

func (p PostPipeline) Run(dc *gg.Context, f *Frame) {
	for _, fx := range p {
		if fx != nil && f.FX.Enabled(fx.Name()) {
			fx.Apply(dc, f)
		}
	}
}

// Names lists the stages in run order.
func (p PostPipeline) Names() []string {
	out := make([]string, 0, len(p))
	for _, fx := range p {
		if fx != nil {
			out = append(out, fx.Name())
		}
	}
	return out
}
