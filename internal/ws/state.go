package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/skip2/go-qrcode"

	"github.com/coreman2200/pulsestage/internal/config"
	diag "github.com/coreman2200/pulsestage/internal/diagnostics"
	"github.com/coreman2200/pulsestage/internal/led"
	"github.com/coreman2200/pulsestage/internal/render"
	"github.com/coreman2200/pulsestage/internal/sequence"
)

const writeWait = 200 * time.Millisecond

// Show is the cue player the host drives next to the engine.
type Show interface {
	Load(p sequence.Program) error
	Start()
	Stop()
	Pause()
	Resume()
	Seek(t float64)
	Tick(dt float64)
}

// State owns the engine for the host. Every engine call goes through mu.
type State struct {
	mu      sync.Mutex
	Eng     *render.Engine
	Show    Show
	Sink    led.Sink
	// Matrix is the geometry of Sink, used by LED test patterns.
	Matrix  led.Matrix
	FPS     int
	Quality int // JPEG quality of the preview stream

	PublicURL  string
	ConfigPath string
	Cfg        *config.Config // saved back on {"save":true}

	playing   bool
	last      time.Time
	frameID   uint64
	lastScale float64
	startTime time.Time
	jpeg      bytes.Buffer
	ledTest   *led.Runner
	ledErr    bool

	cmu         sync.Mutex // guards the client sets and writes to them
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
}

func NewState(eng *render.Engine, fps int) *State {
	return &State{
		Eng:         eng,
		FPS:         fps,
		Quality:     70,
		lastScale:   eng.Scale(),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

// Routes returns the host's endpoints.
func (s *State) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/qr.png", s.HandleQR)
	return mux
}

// Run ticks the engine at FPS until ctx is done.
func (s *State) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(max(1, s.FPS)))
	defer ticker.Stop()
	s.mu.Lock()
	s.Eng.Start()
	s.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if frame := s.Step(now); frame != nil {
				s.broadcastFrame(frame)
			}
		}
	}
}

// Step advances the show, the play position and the engine by the time since
// the previous step, then encodes the frame. It returns nil while stopped.
func (s *State) Step(now time.Time) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Eng.Running() {
		s.last = time.Time{}
		return nil
	}
	dt := 0.0
	if !s.last.IsZero() {
		dt = now.Sub(s.last).Seconds()
	}
	s.last = now

	if s.Show != nil {
		s.Show.Tick(dt)
	}
	if s.playing {
		s.Eng.SetPlayPosition(s.Eng.PlayPosition() + dt)
	}
	s.Eng.Tick(dt)
	s.frameID++

	if sc := s.Eng.Scale(); sc != s.lastScale {
		s.pushDiag(diag.New(diag.Info, diag.GovernorScale, "render scale changed").
			With("from", s.lastScale).With("to", sc).With("fps", s.Eng.FPS()))
		s.lastScale = sc
	}

	cv := s.Eng.Canvas()
	if w, h := s.Eng.Size(); cv == nil || w == 0 || h == 0 {
		return nil
	}
	if s.Sink != nil {
		s.writeLED()
	}
	s.jpeg.Reset()
	if err := cv.EncodeJPEG(&s.jpeg, s.Quality); err != nil {
		log.Debug().Err(err).Msg("encode frame")
		return nil
	}
	return append([]byte(nil), s.jpeg.Bytes()...)
}

// writeLED sends the engine frame, or the next test pattern frame while a
// test runs, to the sink. mu must be held.
func (s *State) writeLED() {
	img := s.Eng.Image()
	if s.ledTest != nil {
		frame, ok := s.ledTest.Step(s.Matrix)
		if !ok {
			s.pushDiag(diag.New(diag.Info, diag.LEDTestDone, "LED test pattern finished").
				With("pattern", string(s.ledTest.Pattern)))
			s.ledTest = nil
		} else {
			img = frame
		}
	}
	err := s.Sink.Write(img)
	switch {
	case err != nil && !s.ledErr:
		s.pushDiag(diag.New(diag.Err, diag.LEDWrite, "LED write failed").With("error", err.Error()))
	case err == nil && s.ledErr:
		log.Info().Msg("LED writes recovered")
	}
	s.ledErr = err != nil
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.track(s.clients, conn)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.track(s.diagClients, conn)
}

// track registers conn in set and drops it once the peer goes away.
func (s *State) track(set map[*websocket.Conn]bool, conn *websocket.Conn) {
	s.cmu.Lock()
	set[conn] = true
	s.cmu.Unlock()
	go func() {
		defer func() {
			s.cmu.Lock()
			delete(set, conn)
			s.cmu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]json.RawMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.pushDiag(diag.New(diag.Warn, diag.ControlInvalid, "control message is not a JSON object").With("error", err.Error()))
			continue
		}
		s.mu.Lock()
		s.applyControl(msg)
		st := s.status()
		s.mu.Unlock()
		b, _ := json.Marshal(st)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Status is the reply to every control message and part of /health.
type Status struct {
	FrameID  uint64          `json:"frame_id"`
	Running  bool            `json:"running"`
	Playing  bool            `json:"playing"`
	Position float64         `json:"position"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Scale    float64         `json:"scale"`
	FPS      float64         `json:"fps"`
	Theme    string          `json:"theme"`
	Palette  []string        `json:"palette"`
	Settings render.Settings `json:"settings"`
	FX       render.FX       `json:"fx"`
	Camera   string          `json:"camera"`
	Layers   []LayerStatus   `json:"layers"`
	Timing   Timing          `json:"timing_ms"`
}

type LayerStatus struct {
	Name    string  `json:"name"`
	Enabled bool    `json:"enabled"`
	Opacity float64 `json:"opacity"`
	Blend   string  `json:"blend"`
	Fade    float64 `json:"fade"`
}

type Timing struct {
	Update float64 `json:"update"`
	Render float64 `json:"render"`
	Post   float64 `json:"post"`
	Total  float64 `json:"total"`
}

// status must be called with mu held.
func (s *State) status() Status {
	e := s.Eng
	w, h := e.Size()
	st := Status{
		FrameID:  s.frameID,
		Running:  e.Running(),
		Playing:  s.playing,
		Position: e.PlayPosition(),
		Width:    w,
		Height:   h,
		Scale:    e.Scale(),
		FPS:      e.FPS(),
		Theme:    e.Theme(),
		Palette:  e.Palette().Hex(),
		Settings: e.Settings(),
		FX:       e.FX(),
		Camera:   e.Camera().Mode.String(),
		Timing:   Timing{e.Last.UpdateMS, e.Last.RenderMS, e.Last.PostMS, e.Last.TotalMS},
	}
	for _, l := range e.Layers() {
		st.Layers = append(st.Layers, LayerStatus{l.Name, l.Enabled, l.Opacity, l.Blend.String(), l.Fade})
	}
	return st
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.status()
	s.mu.Unlock()
	resp := map[string]any{
		"uptime_s": time.Since(s.startTime).Seconds(),
		"engine":   st,
		"led":      s.Sink != nil,
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		resp["cpu_pct"] = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp["mem_used_pct"] = vm.UsedPercent
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleQR serves a QR code of the preview URL so a phone can open it.
func (s *State) HandleQR(w http.ResponseWriter, r *http.Request) {
	url := s.PublicURL
	if url == "" {
		url = "http://" + r.Host + "/"
	}
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *State) broadcastFrame(jpeg []byte) {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.BinaryMessage, jpeg); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// Report logs d and sends it to /diag subscribers.
func (s *State) Report(d diag.Diagnostic) { s.pushDiag(d) }

func (s *State) pushDiag(d diag.Diagnostic) {
	switch d.Severity {
	case diag.Info:
		log.Debug().Str("code", d.Code).Interface("evidence", d.Evidence).Msg(d.Summary)
	default:
		log.Warn().Str("code", d.Code).Interface("evidence", d.Evidence).Msg(d.Summary)
	}
	b, _ := json.Marshal(d)
	s.cmu.Lock()
	defer s.cmu.Unlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
