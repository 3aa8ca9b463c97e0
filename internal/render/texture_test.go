package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverFitCropsCenter(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 30, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			c := color.RGBA{0, 0, 255, 255}
			if x >= 10 && x < 20 {
				c = color.RGBA{255, 0, 0, 255}
			}
			src.Set(x, y, c)
		}
	}
	out := CoverFit(src, 8)
	require.NotNil(t, out)
	assert.Equal(t, 8, out.Rect.Dx())
	c := out.RGBAAt(4, 4)
	assert.Greater(t, c.R, uint8(200))
	assert.Less(t, c.B, uint8(50))
	assert.Nil(t, CoverFit(nil, 8))
}

func TestSampleMirror(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 0, 255, 255})
	assert.Equal(t, 1.0, Sample(img, 0.5, 0.5, false).R)
	assert.Equal(t, 0.0, Sample(img, 5, 0, false).A)
	// reflect: 2 -> 1, 3 -> 0, -1 -> 0
	assert.Equal(t, 1.0, Sample(img, 2.5, 0, true).B)
	assert.Equal(t, 1.0, Sample(img, 3.5, 0, true).R)
	assert.Equal(t, 1.0, Sample(img, -0.5, 0, true).R)
}

func TestSoftenKeepsSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	out := Soften(img, 3)
	assert.Equal(t, img.Rect, out.Rect)
	assert.Same(t, img, Soften(img, 1))
}
