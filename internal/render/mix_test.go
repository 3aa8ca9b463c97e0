package render

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
)

func TestCompositeModes(t *testing.T) {
	cases := []struct {
		name    string
		mode    Blend
		dst     []uint8
		src     []uint8
		opacity float64
		want    []uint8
	}{
		{"normal opaque", BlendNormal, []uint8{10, 20, 30, 255}, []uint8{200, 100, 0, 255}, 1, []uint8{200, 100, 0, 255}},
		{"normal half", BlendNormal, []uint8{0, 0, 0, 255}, []uint8{200, 100, 50, 255}, 0.5, []uint8{100, 50, 25, 255}},
		{"additive clamps", BlendAdditive, []uint8{200, 100, 0, 255}, []uint8{100, 100, 100, 255}, 1, []uint8{255, 200, 100, 255}},
		{"screen", BlendScreen, []uint8{128, 0, 255, 255}, []uint8{128, 255, 0, 255}, 1, []uint8{192, 255, 255, 255}},
		{"transparent source", BlendNormal, []uint8{1, 2, 3, 255}, []uint8{200, 200, 200, 0}, 1, []uint8{1, 2, 3, 255}},
		{"zero opacity", BlendAdditive, []uint8{1, 2, 3, 255}, []uint8{200, 200, 200, 255}, 0, []uint8{1, 2, 3, 255}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dc := gg.NewContext(1, 1)
			copy(Pixels(dc), c.dst)
			src, err := gg.NewImageBuf(1, 1, gg.FormatRGBA8)
			if err != nil {
				t.Fatalf("image buf: %v", err)
			}
			copy(src.Data(), c.src)
			Composite(dc, src, c.opacity, c.mode)
			dst := Pixels(dc)
			for i := range c.want {
				assert.InDelta(t, c.want[i], dst[i], 1, "channel %d", i)
			}
		})
	}
}

func TestCompositeIgnoresTransformAndSizeMismatch(t *testing.T) {
	dc := gg.NewContext(2, 2)
	dc.ClearWithColor(gg.Black)
	dc.Scale(3, 3)
	src, err := gg.NewImageBuf(2, 2, gg.FormatRGBA8)
	if err != nil {
		t.Fatalf("image buf: %v", err)
	}
	for i := 0; i < len(src.Data()); i += 4 {
		copy(src.Data()[i:], []uint8{255, 0, 0, 255})
	}
	Composite(dc, src, 1, BlendNormal)
	px := Pixels(dc)
	for i := 0; i < len(px); i += 4 {
		assert.Equal(t, []uint8{255, 0, 0, 255}, px[i:i+4], "pixel %d", i/4)
	}

	small, _ := gg.NewImageBuf(1, 1, gg.FormatRGBA8)
	copy(small.Data(), []uint8{0, 255, 0, 255})
	Composite(dc, small, 1, BlendNormal)
	assert.Equal(t, uint8(255), Pixels(dc)[0], "mismatched buffers are skipped")
}

func TestDarken(t *testing.T) {
	buf := []uint8{200, 100, 50, 255}
	Darken(buf, 0.5)
	assert.Equal(t, []uint8{100, 50, 25, 255}, buf)
}

func TestAddDiskAccumulates(t *testing.T) {
	w, h := 9, 9
	buf := make([]uint8, w*h*4)
	red := gg.RGB(1, 0, 0)
	AddDisk(buf, w, h, 4.5, 4.5, 3, red, 0.4)
	i := (4*w + 4) * 4
	first := buf[i]
	AddDisk(buf, w, h, 4.5, 4.5, 3, red, 0.4)
	assert.Greater(t, buf[i+3], uint8(0))
	assert.GreaterOrEqual(t, buf[i], first)
	assert.Equal(t, uint8(0), buf[1], "corner outside the disk stays empty")
	// off-canvas disks are clipped, not a panic
	AddDisk(buf, w, h, -50, 200, 4, red, 1)
}

func TestBlendParse(t *testing.T) {
	for in, want := range map[string]Blend{"lighter": BlendAdditive, "Screen": BlendScreen, "normal": BlendNormal} {
		got, ok := ParseBlend(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseBlend("multiply")
	assert.False(t, ok)
}
