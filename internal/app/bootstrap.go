package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/pulsestage/internal/config"
	diag "github.com/coreman2200/pulsestage/internal/diagnostics"
	"github.com/coreman2200/pulsestage/internal/led"
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/render/post"
	"github.com/coreman2200/pulsestage/internal/render/scenes/all"
	"github.com/coreman2200/pulsestage/internal/ws"
)

type Core struct {
	Eng   *render.Engine
	Show  *Conductor
	State *ws.State
	Strip *led.Strip
	Cfg   *config.Config
}

// NewEngine builds an engine with every stock scene and the default post
// chain, configured from cfg.
func NewEngine(cfg *config.Config) (*render.Engine, error) {
	ec := cfg.Engine
	eng, err := render.NewEngine(ec.Width, ec.Height, all.Registry(), ec.Seed)
	if err != nil {
		return nil, err
	}
	eng.Log = log.Logger.With().Str("component", "engine").Logger()
	eng.SetPost(post.Default(ec.Seed))
	if err := ApplyConfig(eng, cfg); err != nil {
		return nil, err
	}
	return eng, nil
}

// InitCore wires engine, show player, host state and the optional LED strip.
// A strip that fails to open is logged and skipped.
func InitCore(cfg *config.Config) (*Core, error) {
	eng, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	show := NewConductor(eng)
	show.Log = log.Logger.With().Str("component", "show").Logger()
	if p := cfg.Show.Program; p != nil {
		if err := show.Load(*p); err != nil {
			return nil, fmt.Errorf("show: %w", err)
		}
		if cfg.Show.Autostart {
			show.Start()
		}
	}

	st := ws.NewState(eng, cfg.Host.FPS)
	st.Show = show
	st.Cfg = cfg
	st.PublicURL = cfg.Host.PublicURL
	if cfg.Host.JPEGQuality > 0 {
		st.Quality = cfg.Host.JPEGQuality
	}

	c := &Core{Eng: eng, Show: show, State: st, Cfg: cfg}
	if cfg.LED.Enabled {
		lc := cfg.LED
		strip, err := led.Open(led.Opts{
			Dev:        lc.SPI.Dev,
			SpeedHz:    lc.SPI.SpeedHz,
			Matrix:     led.Matrix{W: lc.Width, H: lc.Height, Serpentine: lc.Serpentine, FlipX: lc.FlipX, FlipY: lc.FlipY},
			Gamma:      lc.Gamma,
			Brightness: lc.Brightness,
			Limiter: led.Limiter{
				WhiteCap: lc.Power.WhiteCap,
				ChanMA:   lc.Power.ChanMA,
				BudgetMA: lc.Power.BudgetMA,
				Knee:     lc.Power.Knee,
			},
		})
		if err != nil {
			log.Warn().Err(err).Msg("LED strip unavailable; preview only")
		} else {
			log.Info().Str("strip", strip.String()).Bool("console", strip.Fallback()).Msg("LED output")
			c.Strip = strip
			st.Sink = strip
			st.Matrix = strip.Matrix
			if strip.Fallback() {
				st.Report(diag.New(diag.Warn, diag.LEDFallback, "no SPI port; LED frames go to the console").
					With("dev", lc.SPI.Dev))
			}
		}
	}
	return c, nil
}

// Run renders and serves until ctx is cancelled, then shuts the server down
// and blanks the strip.
func (c *Core) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         c.Cfg.Host.Addr,
		Handler:      withCORS(c.State.Routes()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.State.Run(ctx) })
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err := g.Wait()
	if c.Strip != nil {
		if cerr := c.Strip.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close LED strip")
		}
	}
	return err
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
