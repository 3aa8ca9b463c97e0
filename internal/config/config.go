package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

type Engine struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Seed   uint32  `yaml:"seed"`
	Tempo  float64 `yaml:"tempo"`
	Energy float64 `yaml:"energy"`

	Theme     string   `yaml:"theme"`                // album | mono | neon | ...
	Palette   []string `yaml:"palette,omitempty"`    // hex colors for album
	MonoColor string   `yaml:"mono_color,omitempty"` // custom color for mono

	Settings render.Settings `yaml:"settings"`

	Analysis     bool    `yaml:"analysis"`
	KeyframeDemo float64 `yaml:"keyframe_demo,omitempty"` // seconds; 0 leaves it off
}

type Layer struct {
	Enabled *bool              `yaml:"enabled,omitempty"`
	Opacity *float64           `yaml:"opacity,omitempty"`
	Blend   string             `yaml:"blend,omitempty"`
	Options map[string]float64 `yaml:"options,omitempty"`
}

type Camera struct {
	Mode  string  `yaml:"mode"` // none | orbit | dolly | shake
	Shake float64 `yaml:"shake"`
}

type Governor struct {
	Adaptive bool    `yaml:"adaptive"`
	DPRCap   float64 `yaml:"dpr_cap"`
	MaxDPR   float64 `yaml:"max_dpr"` // upper bound for dpr_cap and /control dprCap
	WindowS  float64 `yaml:"window_s"`
	LowFPS   float64 `yaml:"low_fps"`
	HighFPS  float64 `yaml:"high_fps"`
	Step     float64 `yaml:"step"`
}

type Host struct {
	Addr        string `yaml:"addr"`
	FPS         int    `yaml:"fps"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	PublicURL   string `yaml:"public_url,omitempty"` // encoded into /qr.png
}

type SPI struct {
	Dev     string `yaml:"dev"`      // "" picks the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Power struct {
	WhiteCap float64 `yaml:"white_cap"` // max R+G+B per LED, 3 = off
	ChanMA   float64 `yaml:"chan_ma"`   // mA per channel at full scale
	BudgetMA float64 `yaml:"budget_ma"` // 0 disables the global budget
	Knee     float64 `yaml:"knee"`      // fraction of budget where soft limiting starts
}

type LED struct {
	Enabled    bool    `yaml:"enabled"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Serpentine bool    `yaml:"serpentine"`
	FlipX      bool    `yaml:"flip_x"`
	FlipY      bool    `yaml:"flip_y"`
	Gamma      float64 `yaml:"gamma"`
	Brightness float64 `yaml:"brightness"`
	Power      Power   `yaml:"power"`
	SPI        SPI     `yaml:"spi,omitempty"`
}

type Show struct {
	Path      string            `yaml:"path,omitempty"` // standalone show file
	Autostart bool              `yaml:"autostart"`
	Program   *sequence.Program `yaml:"program,omitempty"`
}

type Config struct {
	Engine   Engine           `yaml:"engine"`
	Layers   map[string]Layer `yaml:"layers,omitempty"`
	FX       map[string]bool  `yaml:"fx,omitempty"`
	Camera   Camera           `yaml:"camera"`
	Governor Governor         `yaml:"governor"`
	Host     Host             `yaml:"host"`
	LED      LED              `yaml:"led"`
	Show     Show             `yaml:"show"`
}

// Default returns the stock configuration. Load starts from it, so a file
// only needs the keys it changes.
func Default() *Config {
	return &Config{
		Engine: Engine{
			Width:    1280,
			Height:   720,
			Seed:     1,
			Tempo:    120,
			Energy:   0.5,
			Theme:    render.ThemeAlbum,
			Palette:  render.DefaultPalette().Hex(),
			Settings: render.DefaultSettings(),
			Analysis: true,
		},
		FX: map[string]bool{
			render.FXVignette: true,
			render.FXGrain:    true,
			render.FXBloom:    true,
		},
		Camera: Camera{Mode: render.CameraNone.String()},
		Governor: Governor{
			Adaptive: true,
			DPRCap:   2,
			MaxDPR:   render.DefaultMaxDPR,
			WindowS:  2,
			LowFPS:   28,
			HighFPS:  55,
			Step:     0.25,
		},
		Host: Host{Addr: ":8080", FPS: 60, JPEGQuality: 70},
		LED: LED{
			Width:      32,
			Height:     8,
			Serpentine: true,
			Gamma:      2.2,
			Brightness: 0.5,
			Power:      Power{WhiteCap: 3, ChanMA: 20, Knee: 0.9},
			SPI:        SPI{SpeedHz: 2500000},
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Show.Program == nil && c.Show.Path != "" {
		p, err := LoadShow(c.Show.Path)
		if err != nil {
			return nil, err
		}
		c.Show.Program = p
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadShow reads a standalone show file.
func LoadShow(path string) (*sequence.Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show: %w", err)
	}
	var p sequence.Program
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse show %s: %w", path, err)
	}
	return &p, nil
}
