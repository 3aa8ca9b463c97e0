package sequence

import (
	"errors"
	"math"
	"sync"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State:      Idle,
		hooks:      h,
		armedIndex: -1,
	}
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return errors.New("program has no clips")
	}
	for _, c := range prog.Clips {
		if c.DurationS <= 0 || math.IsNaN(c.DurationS) {
			return errors.New("clip " + c.Name + " has no duration")
		}
	}
	p.prog = prog
	p.tracks = make(map[int]*Tracks, len(prog.Clips))
	for i, c := range prog.Clips {
		ts := NewTracks()
		for name, keys := range c.Params {
			ts.Set(name, keys)
		}
		p.tracks[i] = ts
	}
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	p.armed = false
	p.armedIndex = -1
	p.lastAlpha = 0
	return nil
}

// Program returns the loaded program.
func (p *Player) Program() Program { return p.prog }

// Position is the time within the current program loop.
func (p *Player) Position() float64 { return p.nowS }

// Current returns the active clip index.
func (p *Player) Current() int { return p.idx }

// Start moves to Running and primes the current clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	if p.State == Paused {
		p.State = Running
		return
	}
	p.State = Running
	p.applyCurrent()
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
	p.armed = false
	p.armedIndex = -1
	p.lastAlpha = 0
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(0)
	}
}

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	total := p.totalDuration()
	if t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := 0
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	p.applyCurrent()
}

// Tick advances the show by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 {
		return
	}
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	p.nowS += dt

	clip, localT := p.currentClipAndLocalT()
	if p.hooks.SetParam != nil {
		ts := p.tracks[p.idx]
		for _, name := range ts.Names() {
			if v, ok := ts.Float(name, localT); ok {
				p.hooks.SetParam(name, v)
			}
		}
	}

	if clip.XFadeS > 0 {
		remain := clip.DurationS - localT
		if remain <= clip.XFadeS && remain >= 0 {
			nextIdx := p.nextIndex()
			if !p.armed && nextIdx != -1 && p.hooks.ArmNext != nil {
				p.hooks.ArmNext(p.prog.Clips[nextIdx])
				p.armed = true
				p.armedIndex = nextIdx
			}
			if p.armed {
				alpha := clamp01(1.0 - (remain / clip.XFadeS))
				if p.hooks.SetCrossfade != nil && alpha != p.lastAlpha {
					p.hooks.SetCrossfade(alpha)
					p.lastAlpha = alpha
				}
			}
		}
	}

	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

func (p *Player) applyCurrent() {
	p.armed = false
	p.armedIndex = -1
	p.lastAlpha = 0
	if p.hooks.ApplyClip != nil {
		p.hooks.ApplyClip(p.prog.Clips[p.idx])
	}
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(0)
	}
}

func (p *Player) clipStart(idx int) float64 {
	acc := 0.0
	for i := 0; i < idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	return acc
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	return p.prog.Clips[p.idx], p.nowS - p.clipStart(p.idx)
}

func (p *Player) totalDuration() float64 {
	return p.clipStart(len(p.prog.Clips))
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		p.State = Idle
		if p.hooks.SetCrossfade != nil {
			p.hooks.SetCrossfade(0)
		}
		return
	}
	if next == 0 {
		p.nowS -= p.totalDuration()
		if p.nowS < 0 {
			p.nowS = 0
		}
	}
	p.idx = next
	p.applyCurrent()
}

// SafePlayer serialises access for callers on other goroutines.
type SafePlayer struct {
	mu sync.Mutex
	P  *Player
}

func NewSafePlayer(h Hooks) *SafePlayer {
	return &SafePlayer{P: NewPlayer(h)}
}

func (s *SafePlayer) With(f func(p *Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.P)
}
