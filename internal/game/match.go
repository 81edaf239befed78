package game

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid match transition")

type MatchState int

const (
	StateIdle MatchState = iota
	StateAwaitingPeer
	StateInProgress
	StateEnded
)

func (s MatchState) String() string {
	switch s {
	case StateAwaitingPeer:
		return "awaiting-peer"
	case StateInProgress:
		return "in-progress"
	case StateEnded:
		return "ended"
	}
	return "idle"
}

// Match tracks the lifecycle of one client's game and the side it controls.
type Match struct {
	SessionID string
	GameID    string
	LocalSide Side
	State     MatchState
	Won       bool
}

func NewMatch() *Match {
	return &Match{State: StateIdle}
}

// RecoverMatch resumes a match from a persisted session id.
func RecoverMatch(sessionID string) *Match {
	return &Match{SessionID: sessionID, State: StateAwaitingPeer}
}

func (m *Match) transition(to MatchState, allowed ...MatchState) error {
	for _, from := range allowed {
		if m.State == from {
			m.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.State, to)
}

// AssignSession records the session id handed out by the server.
func (m *Match) AssignSession(id string) error {
	if err := m.transition(StateAwaitingPeer, StateIdle, StateAwaitingPeer); err != nil {
		return err
	}
	m.SessionID = id
	return nil
}

// Start begins (or restarts) play on the given side.
func (m *Match) Start(gameID string, side Side) error {
	if err := m.transition(StateInProgress, StateAwaitingPeer, StateInProgress); err != nil {
		return err
	}
	m.GameID = gameID
	m.LocalSide = side
	m.Won = false
	return nil
}

// Finish ends the match with the server's verdict.
func (m *Match) Finish(won bool) error {
	if err := m.transition(StateEnded, StateInProgress); err != nil {
		return err
	}
	m.Won = won
	return nil
}

// Replay discards all match state.
func (m *Match) Replay() error {
	if err := m.transition(StateIdle, StateEnded); err != nil {
		return err
	}
	*m = Match{State: StateIdle}
	return nil
}

// Reset parks the match until the server sends a fresh game.
func (m *Match) Reset() error {
	if err := m.transition(StateAwaitingPeer, StateAwaitingPeer, StateInProgress, StateEnded); err != nil {
		return err
	}
	m.Won = false
	return nil
}
