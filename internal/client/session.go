package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"netpong/internal/game"
	"netpong/internal/net"
)

var (
	// ErrReplay is returned by Run when the player asked for a fresh match.
	ErrReplay = errors.New("replay requested")
	// ErrDisconnected is reported, and returned by Run, when the server
	// closes the socket.
	ErrDisconnected = errors.New("disconnected from server")
)

// Frame is one websocket message as received.
type Frame struct {
	Binary bool
	Data   []byte
}

// Sender delivers encoded text frames to the server.
type Sender interface {
	Send(frame []byte) error
}

// Intent is a local player action produced by the input adapter.
type Intent int

const (
	IntentUp Intent = iota
	IntentDown
	IntentReset
	IntentReplay
)

// Settings are the timing and layout constants of a session.
type Settings struct {
	Layout          game.Layout
	TickPeriod      time.Duration
	BroadcastPeriod time.Duration
	PaddleStep      float64
	// Meter receives the dispatch counters. Nil uses the global meter.
	Meter metric.Meter
}

func DefaultSettings() Settings {
	return Settings{
		Layout:          game.DefaultLayout(),
		TickPeriod:      game.TickPeriod,
		BroadcastPeriod: game.BroadcastPeriod,
		PaddleStep:      game.PaddleStep,
	}
}

// Diagnostic is a non-fatal problem surfaced for debugging.
type Diagnostic struct {
	Kind   string
	Type   string
	Err    error
	Detail string
}

func (d Diagnostic) String() string {
	switch {
	case d.Err != nil && d.Type != "":
		return fmt.Sprintf("%s %s: %v", d.Kind, d.Type, d.Err)
	case d.Err != nil:
		return fmt.Sprintf("%s: %v", d.Kind, d.Err)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
}

// Snapshot is an immutable copy of the session for rendering.
type Snapshot struct {
	State      game.MatchState
	SessionID  string
	LocalSide  game.Side
	Won        bool
	Ball       game.Ball
	Paddles    [2]game.Paddle
	Halted     bool
	Diagnostic string
}

// Session owns one client's match: the state machine, the ball and both
// paddles. Only the goroutine running Run (or a test driving the Handle*
// methods directly) may touch them.
type Session struct {
	settings Settings
	out      Sender
	store    SessionStore
	log      zerolog.Logger
	metrics  *dispatchMetrics

	match   *game.Match
	paddles [2]*game.Paddle
	sim     *game.Simulator

	tick      *time.Ticker
	broadcast *time.Ticker

	intents chan Intent
	diag    chan Diagnostic
	lastErr string

	snapMu sync.RWMutex
	snap   Snapshot
}

// NewSession creates a session. A non-empty resume id recovers a persisted
// match that is waiting for the server to send the game again.
func NewSession(settings Settings, out Sender, store SessionStore, resume string, log zerolog.Logger) (*Session, error) {
	metrics, err := newDispatchMetrics(settings.Meter)
	if err != nil {
		return nil, err
	}

	s := &Session{
		settings: settings,
		out:      out,
		store:    store,
		log:      log,
		metrics:  metrics,
		match:    game.NewMatch(),
		paddles:  settings.Layout.NewPaddles(),
		intents:  make(chan Intent, 32),
		diag:     make(chan Diagnostic, 64),
	}
	if resume != "" {
		s.match = game.RecoverMatch(resume)
	}
	s.sim = game.NewSimulator(settings.Layout.Court, s.paddles)
	s.rehome()
	s.publish()
	return s, nil
}

// Run drives the session until ctx is done, the player asks for a replay, or
// the transport closes. A transport that closes mid-match keeps the local
// rally ticking; Run then returns ErrDisconnected on the next reset or replay
// so the caller can redial.
func (s *Session) Run(ctx context.Context, frames <-chan Frame) error {
	defer s.stopTimers()

	disconnected := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				frames, disconnected = nil, true
				s.report(Diagnostic{Kind: "transport", Err: ErrDisconnected})
				if s.match.State != game.StateInProgress {
					s.publish()
					return ErrDisconnected
				}
				break
			}
			s.HandleFrame(f)
		case in := <-s.intents:
			if disconnected && (in == IntentReset || in == IntentReplay) {
				s.publish()
				return ErrDisconnected
			}
			if err := s.HandleIntent(in); errors.Is(err, ErrReplay) {
				s.publish()
				return err
			}
		case <-tickerC(s.tick):
			s.Tick()
		case <-tickerC(s.broadcast):
			s.Broadcast()
		}
		s.publish()
	}
}

func tickerC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// Input queues a local intent for the Run loop. Intents are dropped when the
// queue is full.
func (s *Session) Input(in Intent) {
	select {
	case s.intents <- in:
	default:
	}
}

// Diagnostics returns protocol and transport problems as they happen.
func (s *Session) Diagnostics() <-chan Diagnostic {
	return s.diag
}

// Snapshot returns the state as of the last completed step.
func (s *Session) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

func (s *Session) publish() {
	snap := Snapshot{
		State:      s.match.State,
		SessionID:  s.match.SessionID,
		LocalSide:  s.match.LocalSide,
		Won:        s.match.Won,
		Ball:       s.sim.Ball(),
		Paddles:    [2]game.Paddle{*s.paddles[game.Left], *s.paddles[game.Right]},
		Halted:     s.sim.Halted(),
		Diagnostic: s.lastErr,
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

// Tick advances the ball one tick period. Scoring stops the tick timer and
// reports the scoring side to the server.
func (s *Session) Tick() {
	if s.match.State != game.StateInProgress {
		return
	}
	res := s.sim.Step(s.settings.TickPeriod)
	if !res.Scored {
		return
	}
	s.stopTick()
	s.log.Info().Stringer("scorer", res.Scorer).Msg("rally over")
	s.send(net.KindScore, res.Scorer)
}

// Broadcast pushes the local ball to the peer so drift stays bounded.
func (s *Session) Broadcast() {
	if s.match.State != game.StateInProgress {
		return
	}
	s.send(net.KindBall, net.WireBall{Ball: s.sim.Ball(), Form: net.FormVector})
}

// HandleIntent applies a local player action.
func (s *Session) HandleIntent(in Intent) error {
	switch in {
	case IntentUp, IntentDown:
		if s.match.State != game.StateInProgress {
			return nil
		}
		delta := s.settings.PaddleStep
		if in == IntentUp {
			delta = -delta
		}
		local := s.paddles[s.match.LocalSide]
		local.MoveBy(delta)
		s.send(net.KindPos, local.CenterY)
	case IntentReset:
		if err := s.reset(); err != nil {
			s.report(Diagnostic{Kind: "input", Type: "reset", Err: err})
			return err
		}
		s.send(net.KindReset, nil)
	case IntentReplay:
		if err := s.match.Replay(); err != nil {
			s.report(Diagnostic{Kind: "input", Type: "replay", Err: err})
			return err
		}
		s.stopTimers()
		s.rehome()
		return ErrReplay
	}
	return nil
}

// reset parks the match and re-homes the pieces; the server follows up with
// a fresh game.
func (s *Session) reset() error {
	if err := s.match.Reset(); err != nil {
		return err
	}
	s.stopTimers()
	s.rehome()
	return nil
}

func (s *Session) rehome() {
	for _, p := range s.paddles {
		p.SetPosition(s.settings.Layout.Court.Height / 2)
	}
	s.sim.Reset(s.settings.Layout.CenterBall(game.Vector2{}))
}

func (s *Session) startTimers() {
	s.stopTimers()
	s.tick = time.NewTicker(s.settings.TickPeriod)
	s.broadcast = time.NewTicker(s.settings.BroadcastPeriod)
}

func (s *Session) stopTick() {
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
}

func (s *Session) stopBroadcast() {
	if s.broadcast != nil {
		s.broadcast.Stop()
		s.broadcast = nil
	}
}

func (s *Session) stopTimers() {
	s.stopTick()
	s.stopBroadcast()
}

func (s *Session) send(kind net.Kind, data any) {
	frame, err := net.Encode(kind, data)
	if err != nil {
		s.report(Diagnostic{Kind: "encode", Type: kind.String(), Err: err})
		return
	}
	if err := s.out.Send(frame); err != nil {
		s.report(Diagnostic{Kind: "transport", Type: kind.String(), Err: err})
	}
}

func (s *Session) report(d Diagnostic) {
	s.lastErr = d.String()
	s.log.Warn().Str("kind", d.Kind).Str("type", d.Type).AnErr("error", d.Err).Str("detail", d.Detail).Msg("diagnostic")
	select {
	case s.diag <- d:
	default:
	}
}
