package led

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

// recorder is a display.Drawer that keeps the last frame.
type recorder struct {
	n      int
	last   []uint8
	halted bool
}

func (r *recorder) String() string { return "recorder" }

func (r *recorder) Halt() error {
	r.halted = true
	return nil
}

func (r *recorder) ColorModel() color.Model { return color.NRGBAModel }
func (r *recorder) Bounds() image.Rectangle { return image.Rect(0, 0, r.n, 1) }
func (r *recorder) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	r.last = r.last[:0]
	for x := 0; x < r.n; x++ {
		c := color.NRGBAModel.Convert(src.At(x, 0)).(color.NRGBA)
		r.last = append(r.last, c.R, c.G, c.B)
	}
	return nil
}

func TestMatrixIndex(t *testing.T) {
	m := Matrix{W: 3, H: 2}
	assert.Equal(t, 4, m.Index(1, 1))
	m.Serpentine = true
	assert.Equal(t, []int{0, 1, 2, 5, 4, 3}, []int{
		m.Index(0, 0), m.Index(1, 0), m.Index(2, 0),
		m.Index(0, 1), m.Index(1, 1), m.Index(2, 1),
	})
	m.FlipX = true
	assert.Equal(t, 2, m.Index(0, 0))
	m.FlipX, m.FlipY = false, true
	assert.Equal(t, 3, m.Index(2, 0), "row 0 lands on the reversed second strip row")
	assert.Equal(t, 0, Matrix{W: 0, H: 5}.Count())
}

func TestLUT(t *testing.T) {
	id := NewLUT(0)
	for i := range id {
		if int(id[i]) != i {
			t.Fatalf("identity lut broken at %d: %d", i, id[i])
		}
	}
	g := NewLUT(2.2)
	assert.Equal(t, uint8(0), g[0])
	assert.Equal(t, uint8(255), g[255])
	assert.Less(t, g[128], uint8(128))
}

func TestStripRemapsToSerpentine(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{10, 0, 0, 255})
	img.Set(1, 0, color.RGBA{20, 0, 0, 255})
	img.Set(0, 1, color.RGBA{30, 0, 0, 255})
	img.Set(1, 1, color.RGBA{40, 0, 0, 255})

	rec := &recorder{n: 4}
	s := NewStrip(rec, Matrix{W: 2, H: 2, Serpentine: true}, 1)
	require.NoError(t, s.Write(img))
	assert.Equal(t, []uint8{10, 0, 0, 20, 0, 0, 40, 0, 0, 30, 0, 0}, rec.last)

	s.Brightness = 0.5
	require.NoError(t, s.Write(img))
	assert.Equal(t, uint8(5), rec.last[0])

	require.NoError(t, s.Close())
	assert.True(t, rec.halted)
}

func TestStripDownsamplesAndLimits(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	rec := &recorder{n: 8}
	s := NewStrip(rec, Matrix{W: 4, H: 2}, 1)
	s.Limiter = Limiter{ChanMA: 20, BudgetMA: 240, Knee: 0.9}
	require.NoError(t, s.Write(img))
	require.Len(t, rec.last, 24)

	lin := make([]float64, len(rec.last))
	for i, v := range rec.last {
		lin[i] = float64(v) / 255
	}
	// full white would draw 8*60 mA
	assert.LessOrEqual(t, Current(lin, 20), 240.0+1)
	assert.Greater(t, Current(lin, 20), 200.0)

	assert.NoError(t, s.Write(image.NewRGBA(image.Rectangle{})), "empty frames are skipped")
}

func TestStripOverNRZ(t *testing.T) {
	var buf bytes.Buffer
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &nrzled.Opts{NumPixels: 4, Channels: 3, Freq: 2500 * physic.KiloHertz})
	require.NoError(t, err)
	s := NewStrip(d, Matrix{W: 2, H: 2, Serpentine: true}, 2.2)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	require.NoError(t, s.Write(img))
	assert.Greater(t, buf.Len(), 0)
}
