// Package led mirrors rendered frames onto a WS2812 matrix.
package led

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// Sink abstracts an LED output.
type Sink interface {
	// Write pushes one frame. The image is resampled to the sink's size.
	Write(img image.Image) error
	Close() error
}

// Opts configures Open.
type Opts struct {
	Dev        string // "" picks the first SPI port
	SpeedHz    int
	Matrix     Matrix
	Gamma      float64
	Brightness float64
	Limiter    Limiter
}

// Strip downsamples frames to the matrix, corrects gamma, applies the power
// limiter and draws them in strip order.
type Strip struct {
	Matrix     Matrix
	Brightness float64
	Limiter    Limiter

	gamma    *LUT
	dev      display.Drawer
	port     io.Closer
	fallback bool

	small *image.RGBA
	lin   []float64
	out   *image.NRGBA
}

// NewStrip wraps an already opened drawer whose bounds are Count()x1.
func NewStrip(dev display.Drawer, m Matrix, gamma float64) *Strip {
	n := m.Count()
	return &Strip{
		Matrix:     m,
		Brightness: 1,
		Limiter:    DefaultLimiter(),
		gamma:      NewLUT(gamma),
		dev:        dev,
		small:      image.NewRGBA(image.Rect(0, 0, max(m.W, 0), max(m.H, 0))),
		lin:        make([]float64, n*3),
		out:        image.NewNRGBA(image.Rect(0, 0, n, 1)),
	}
}

// Open initialises periph, opens the SPI port and an nrzled device on it.
// Without a port it falls back to printing the strip at the console.
func Open(o Opts) (*Strip, error) {
	n := o.Matrix.Count()
	if n == 0 {
		return nil, errors.New("led matrix has no pixels")
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	var s *Strip
	port, err := spireg.Open(o.Dev)
	if err != nil {
		log.Warn().Err(err).Str("dev", o.Dev).Msg("no SPI port; printing LEDs at the console")
		s = NewStrip(screen.New(n), o.Matrix, o.Gamma)
		s.fallback = true
	} else {
		freq := 2500 * physic.KiloHertz
		if o.SpeedHz > 0 {
			freq = physic.Frequency(o.SpeedHz) * physic.Hertz
		}
		d, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: n, Channels: 3, Freq: freq})
		if err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("nrzled on %s: %w", port, err)
		}
		s = NewStrip(d, o.Matrix, o.Gamma)
		s.port = port
	}
	if o.Brightness > 0 {
		s.Brightness = o.Brightness
	}
	s.Limiter = o.Limiter
	return s, nil
}

// Fallback reports whether output goes to the console instead of a strip.
func (s *Strip) Fallback() bool { return s.fallback }

func (s *Strip) String() string { return s.dev.String() }

func (s *Strip) Write(img image.Image) error {
	n := s.Matrix.Count()
	sb := img.Bounds()
	if n == 0 || sb.Empty() {
		return nil
	}
	if sb.Dx() == s.Matrix.W && sb.Dy() == s.Matrix.H {
		draw.Copy(s.small, image.Point{}, img, sb, draw.Src, nil)
	} else {
		draw.ApproxBiLinear.Scale(s.small, s.small.Bounds(), img, sb, draw.Src, nil)
	}

	br := s.Brightness
	for y := 0; y < s.Matrix.H; y++ {
		for x := 0; x < s.Matrix.W; x++ {
			p := s.small.PixOffset(x, y)
			i := s.Matrix.Index(x, y) * 3
			for c := 0; c < 3; c++ {
				s.lin[i+c] = float64(s.gamma[s.small.Pix[p+c]]) / 255 * br
			}
		}
	}
	s.Limiter.Apply(s.lin)

	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			s.out.Pix[i*4+c] = uint8(math.Round(math.Max(0, math.Min(1, s.lin[i*3+c])) * 255))
		}
		s.out.Pix[i*4+3] = 0xff
	}
	if err := s.dev.Draw(s.dev.Bounds(), s.out, image.Point{}); err != nil {
		return fmt.Errorf("led draw: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *Strip) Close() error {
	err := s.dev.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
