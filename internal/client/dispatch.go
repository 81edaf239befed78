package client

import (
	"fmt"
	"net/http"

	"netpong/internal/game"
	"netpong/internal/net"
)

// HandleFrame applies one inbound frame to the match. Binary frames are only
// logged; text frames go through the type dispatch.
func (s *Session) HandleFrame(f Frame) {
	if f.Binary {
		pairs := net.DecodeBinary(f.Data)
		s.log.Debug().Interface("pairs", pairs).Msg("binary frame")
		return
	}

	env, err := net.Decode(f.Data)
	if err != nil {
		s.metrics.countMalformed("")
		s.report(Diagnostic{Kind: "protocol", Err: err})
		return
	}

	if err := s.dispatch(env); err != nil {
		s.metrics.countMalformed(env.Type)
		s.report(Diagnostic{Kind: "protocol", Type: env.Type, Err: err})
		return
	}
}

func (s *Session) dispatch(env net.Envelope) error {
	var err error
	switch env.Kind() {
	case net.KindSession:
		err = s.onSession(env)
	case net.KindGame:
		err = s.onGame(env)
	case net.KindPos:
		err = s.onPos(env)
	case net.KindBall:
		err = s.onBall(env)
	case net.KindScore:
		err = s.onScore(env)
	case net.KindError:
		err = s.onError(env)
	case net.KindReset:
		err = s.onReset()
	default:
		s.metrics.countIgnored(env.Type)
		s.log.Debug().Str("type", env.Type).Msg("ignoring message")
		return nil
	}
	if err == nil {
		s.metrics.countHandled(env.Type)
	}
	return err
}

func (s *Session) onSession(env net.Envelope) error {
	id, err := net.DecodeData[string](env)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty session id", net.ErrMalformedPayload)
	}
	if err := s.match.AssignSession(id); err != nil {
		return err
	}
	if err := s.store.Save(id); err != nil {
		s.report(Diagnostic{Kind: "store", Type: env.Type, Err: err})
	}
	s.log.Info().Str("session", id).Msg("session assigned")
	return nil
}

func (s *Session) onGame(env net.Envelope) error {
	p, err := net.DecodeData[net.GamePayload](env)
	if err != nil {
		return err
	}
	if p.Ball == nil {
		return fmt.Errorf("%w: game without ball", net.ErrMalformedPayload)
	}
	if s.match.State == game.StateEnded {
		// The opponent asked for a rematch.
		if err := s.match.Reset(); err != nil {
			return err
		}
	}
	if err := s.match.Start(p.ID, p.Side); err != nil {
		return err
	}

	s.rehome()
	ball := p.Ball.Ball
	ball.Size = s.settings.Layout.BallRadius
	s.sim.Reset(ball)
	s.startTimers()
	s.log.Info().Str("game", p.ID).Stringer("side", p.Side).Msg("game started")
	return nil
}

// onPos only ever moves the remote paddle; the local one follows input alone.
func (s *Session) onPos(env net.Envelope) error {
	p, err := net.DecodeData[net.PosPayload](env)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if s.match.State != game.StateInProgress {
		return nil
	}
	remote := s.match.LocalSide.Opponent()
	s.paddles[remote].SetPosition(p.Get(remote))
	return nil
}

func (s *Session) onBall(env net.Envelope) error {
	w, err := net.DecodeData[net.WireBall](env)
	if err != nil {
		return err
	}
	if s.match.State != game.StateInProgress {
		return nil
	}
	ball := w.Ball
	ball.Size = s.sim.Ball().Size
	s.sim.SetBall(ball)
	return nil
}

func (s *Session) onScore(env net.Envelope) error {
	won, err := net.DecodeData[bool](env)
	if err != nil {
		return err
	}
	if err := s.match.Finish(won); err != nil {
		return err
	}
	s.stopTimers()
	if err := s.store.Clear(); err != nil {
		s.report(Diagnostic{Kind: "store", Type: env.Type, Err: err})
	}
	s.log.Info().Bool("won", won).Msg("match over")
	return nil
}

// onError reports a server error. Payloads that are not a {code, msg}
// object are reported as raw text.
func (s *Session) onError(env net.Envelope) error {
	p, err := net.DecodeData[net.ErrorPayload](env)
	if err != nil || p == (net.ErrorPayload{}) {
		s.report(Diagnostic{Kind: "server", Type: env.Type, Detail: string(env.Data)})
		return nil
	}
	s.report(Diagnostic{Kind: "server", Type: env.Type, Detail: fmt.Sprintf("%d %s", p.Code, p.Msg)})
	switch p.Code {
	case http.StatusNotFound, http.StatusConflict:
		// The stored session is gone or held by someone else; the next dial
		// starts a fresh match.
		if err := s.store.Clear(); err != nil {
			s.report(Diagnostic{Kind: "store", Type: env.Type, Err: err})
		}
	}
	return nil
}

func (s *Session) onReset() error {
	return s.reset()
}
