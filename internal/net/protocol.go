package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"netpong/internal/game"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownKind      = errors.New("unknown message kind")
)

// Kind is the closed set of message types on the wire.
type Kind int

const (
	KindUnknown Kind = iota
	KindSession
	KindGame
	KindPos
	KindBall
	KindScore
	KindError
	KindReset
)

var kindNames = map[Kind]string{
	KindSession: "session",
	KindGame:    "game",
	KindPos:     "pos",
	KindBall:    "ball",
	KindScore:   "score",
	KindError:   "error",
	KindReset:   "reset",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind maps a wire type to a Kind. Unrecognized types map to KindUnknown.
func ParseKind(s string) Kind {
	return kindsByName[s]
}

// Envelope is the JSON text frame: {"type": ..., "data": ...}.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (e Envelope) Kind() Kind {
	return ParseKind(e.Type)
}

// Encode builds a text frame. A nil data omits the payload.
func Encode(kind Kind, data any) ([]byte, error) {
	if kind == KindUnknown {
		return nil, ErrUnknownKind
	}
	env := Envelope{Type: kind.String()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", kind, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// Decode parses a text frame into its envelope without touching the payload.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedPayload)
	}
	return env, nil
}

// DecodeData unmarshals the payload of env into T.
func DecodeData[T any](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 {
		return v, fmt.Errorf("%w: %s has no data", ErrMalformedPayload, env.Type)
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, env.Type, err)
	}
	return v, nil
}

// Server → client payloads

type GamePayload struct {
	ID   string    `json:"id"`
	Side game.Side `json:"side"`
	Ball *WireBall `json:"ball,omitempty"`
}

// PosPayload carries both paddle positions. Both keys must be present.
type PosPayload struct {
	Left  *float64 `json:"left"`
	Right *float64 `json:"right"`
}

func (p PosPayload) Validate() error {
	if p.Left == nil || p.Right == nil {
		return fmt.Errorf("%w: pos needs both left and right", ErrMalformedPayload)
	}
	return nil
}

// Get returns the position for side. Call Validate first.
func (p PosPayload) Get(side game.Side) float64 {
	if side == game.Right {
		return *p.Right
	}
	return *p.Left
}

func NewPosPayload(left, right float64) PosPayload {
	return PosPayload{Left: &left, Right: &right}
}

type ErrorPayload struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// BytePair is a binary frame byte read as signed and unsigned.
type BytePair [2]int

// DecodeBinary renders a binary frame for diagnostics. Binary frames carry no
// simulation state.
func DecodeBinary(data []byte) []BytePair {
	pairs := make([]BytePair, len(data))
	for i, b := range data {
		pairs[i] = BytePair{int(int8(b)), int(b)}
	}
	return pairs
}
