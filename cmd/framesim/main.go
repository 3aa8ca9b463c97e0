// framesim renders frames headless and writes them as PNG files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/pulsestage/internal/analysis"
	"github.com/coreman2200/pulsestage/internal/app"
	"github.com/coreman2200/pulsestage/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional config.yaml")
		showPath   = flag.String("show", "", "optional show file")
		outDir     = flag.String("out", "frames", "output directory")
		frames     = flag.Int("frames", 300, "frames to render")
		fps        = flag.Int("fps", 30, "simulated frames per second")
		every      = flag.Int("every", 10, "write every k-th frame")
		width      = flag.Int("width", 640, "logical width")
		height     = flag.Int("height", 360, "logical height")
		theme      = flag.String("theme", "", "palette theme")
		demo       = flag.Float64("demo", 0, "install the keyframe demo over this many seconds")
		energy     = flag.Float64("energy", 0.6, "energy 0..1")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config")
		}
		cfg = c
	}
	cfg.Engine.Width, cfg.Engine.Height = *width, *height
	cfg.Engine.Energy = *energy
	cfg.Governor.Adaptive = false
	if *theme != "" {
		cfg.Engine.Theme = *theme
	}
	if *demo > 0 {
		cfg.Engine.KeyframeDemo = *demo
	}

	eng, err := app.NewEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}
	show := app.NewConductor(eng)
	if *showPath != "" {
		prog, err := config.LoadShow(*showPath)
		if err != nil {
			log.Fatal().Err(err).Msg("show")
		}
		if err := show.Load(*prog); err != nil {
			log.Fatal().Err(err).Msg("show")
		}
		show.Start()
	}

	dt := 1 / float64(max(1, *fps))
	total := float64(*frames) * dt
	eng.SetTimeline(ptr(analysis.Uniform(cfg.Engine.Tempo, total+1, 4, 8)))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("output dir")
	}

	start := time.Now()
	written := 0
	for i := 0; i < *frames; i++ {
		pos := float64(i) * dt
		show.Tick(dt)
		eng.SetPlayPosition(pos)
		eng.Tick(dt)
		if *every <= 0 || i%*every != 0 {
			continue
		}
		cv := eng.Canvas()
		if cv == nil {
			continue
		}
		path := filepath.Join(*outDir, fmt.Sprintf("frame_%05d.png", i))
		if err := writePNG(cv.EncodePNG, path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("write")
		}
		written++
		log.Debug().
			Int("frame", i).
			Float64("update_ms", eng.Last.UpdateMS).
			Float64("render_ms", eng.Last.RenderMS).
			Float64("post_ms", eng.Last.PostMS).
			Msg("frame")
	}
	elapsed := time.Since(start)
	log.Info().
		Int("frames", *frames).
		Int("written", written).
		Dur("elapsed", elapsed).
		Float64("ms_per_frame", float64(elapsed.Microseconds())/1000/float64(max(1, *frames))).
		Str("out", *outDir).
		Msg("done")
}

func writePNG(encode func(w io.Writer) error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ptr[T any](v T) *T { return &v }
