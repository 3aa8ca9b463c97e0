package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#abc")
	require.NoError(t, err)
	assert.Equal(t, "#aabbcc", Palette{c}.Hex()[0])

	c, err = ParseHex("1db954")
	require.NoError(t, err)
	assert.Equal(t, "#1db954", Palette{c}.Hex()[0])

	for _, bad := range []string{"", "#12", "#zzzzzz", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestPaletteAtWraps(t *testing.T) {
	p := MustPalette("#000000", "#ffffff", "#ff0000")
	assert.Equal(t, p[1], p.At(4))
	assert.Equal(t, p[2], p.At(-1))
	assert.Equal(t, white, Palette(nil).At(3))
}

func TestThemePalettes(t *testing.T) {
	for _, name := range Themes() {
		if name == ThemeAlbum {
			_, ok := ThemePalette(name, "")
			assert.False(t, ok)
			continue
		}
		p, ok := ThemePalette(name, "")
		require.True(t, ok, name)
		assert.NotEmpty(t, p, name)
	}
	p, _ := ThemePalette(ThemeMono, "not-a-color")
	assert.Equal(t, []string{DefaultMono, DefaultMono, "#ffffff"}, p.Hex())
}
