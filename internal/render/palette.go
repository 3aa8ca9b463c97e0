package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// Palette is an ordered list of opaque colors. Index 0 is the base, index 1
// the accent; scenes cycle through the rest by modulo.
type Palette []gg.RGBA

var white = gg.RGB(1, 1, 1)

// At returns the i-th color modulo the length; white when empty.
func (p Palette) At(i int) gg.RGBA {
	if len(p) == 0 {
		return white
	}
	i %= len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}

// Hex renders the palette as #rrggbb strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
	}
	return out
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// WithAlpha returns c at alpha a.
func WithAlpha(c gg.RGBA, a float64) gg.RGBA {
	c.A = clamp01(a)
	return c
}

// ParseHex parses #rgb or #rrggbb (leading # optional).
func ParseHex(s string) (gg.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return gg.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return gg.RGB(float64(v>>16&0xff)/255, float64(v>>8&0xff)/255, float64(v&0xff)/255), nil
}

// ParsePalette parses every entry; an empty list is an error.
func ParsePalette(hex []string) (Palette, error) {
	if len(hex) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	out := make(Palette, 0, len(hex))
	for _, s := range hex {
		c, err := ParseHex(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustPalette is ParsePalette for literals.
func MustPalette(hex ...string) Palette {
	p, err := ParsePalette(hex)
	if err != nil {
		panic(err)
	}
	return p
}

// Theme names with special handling.
const (
	ThemeAlbum = "album"
	ThemeMono  = "mono"

	DefaultMono = "#1db954"
)

var themes = map[string][]string{
	"neon":      {"#00ffd5", "#a259ff", "#ffec19", "#ff3366"},
	"midnight":  {"#0f1020", "#2b2d42", "#8d99ae", "#edf2f4"},
	"sunset":    {"#ff7e5f", "#feb47b", "#ffd166", "#ef476f"},
	"ocean":     {"#0a9396", "#94d2bd", "#e9d8a6", "#ee9b00"},
	"vaporwave": {"#ff71ce", "#01cdfe", "#05ffa1", "#b967ff"},
	"cyber":     {"#00e1ff", "#ff00e1", "#00ff9f", "#ffe600"},
	"candy":     {"#ff9aa2", "#ffb7b2", "#ffdac1", "#e2f0cb"},
	"noir":      {"#0f0f12", "#2b2b30", "#c9c9d1", "#ffffff"},
}

// DefaultPalette is used until the host supplies one.
func DefaultPalette() Palette { return MustPalette("#1db954", "#3ddc97", "#ffffff") }

// Themes lists the named palettes plus album and mono.
func Themes() []string {
	out := []string{ThemeAlbum, ThemeMono}
	for k := range themes {
		out = append(out, k)
	}
	sort.Strings(out[2:])
	return out
}

// ThemePalette resolves a named theme. mono builds [c, c, white] from custom;
// album has no fixed palette and reports false.
func ThemePalette(name, custom string) (Palette, bool) {
	if name == ThemeMono {
		c, err := ParseHex(custom)
		if err != nil {
			c, _ = ParseHex(DefaultMono)
		}
		return Palette{c, c, white}, true
	}
	hex, ok := themes[name]
	if !ok {
		return nil, false
	}
	return MustPalette(hex...), true
}
