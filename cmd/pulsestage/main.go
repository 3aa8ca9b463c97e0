package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/pulsestage/internal/app"
	"github.com/coreman2200/pulsestage/internal/config"
)

func main() {
	// ---- Flags (explicitly set flags win over config.yaml) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		fps        = flag.Int("fps", 60, "target frames per second")
		width      = flag.Int("width", 1280, "logical canvas width")
		height     = flag.Int("height", 720, "logical canvas height")
		theme      = flag.String("theme", "album", "palette theme")
		tempo      = flag.Float64("tempo", 120, "initial tempo (bpm)")
		showPath   = flag.String("show", "", "show file to load and start")
		ledOn      = flag.Bool("led", false, "mirror frames to the LED matrix")
		spiDev     = flag.String("spi", "", "SPI port for the LED matrix (empty picks the first)")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults and flags")
		cfg = config.Default()
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Host.Addr = *addr
		case "fps":
			cfg.Host.FPS = *fps
		case "width":
			cfg.Engine.Width = *width
		case "height":
			cfg.Engine.Height = *height
		case "theme":
			cfg.Engine.Theme = *theme
		case "tempo":
			cfg.Engine.Tempo = *tempo
		case "led":
			cfg.LED.Enabled = *ledOn
		case "spi":
			cfg.LED.SPI.Dev = *spiDev
		}
	})
	if *showPath != "" {
		prog, err := config.LoadShow(*showPath)
		if err != nil {
			log.Fatal().Err(err).Msg("show")
		}
		cfg.Show.Program = prog
		cfg.Show.Autostart = true
	}

	core, err := app.InitCore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	core.State.ConfigPath = *configPath

	// ---- Run until SIGINT/SIGTERM ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := core.Run(ctx); err != nil {
		log.Error().Err(err).Msg("stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("shut down")
}
