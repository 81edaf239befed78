package net

import (
	"bytes"
	"encoding/json"
	"fmt"

	"netpong/internal/game"
)

// BallForm selects how a ball is written on the wire.
type BallForm int

const (
	// FormVector writes speed as {"x","y"}.
	FormVector BallForm = iota
	// FormHeading writes speed as a magnitude plus "angle" in degrees.
	FormHeading
)

// WireBall converts between the canonical game.Ball and either wire form.
// Unmarshal accepts both; Form records which one was seen.
type WireBall struct {
	Ball game.Ball
	Form BallForm
}

type vectorBall struct {
	Pos   game.Vector2 `json:"pos"`
	Speed game.Vector2 `json:"speed"`
	Size  float64      `json:"size"`
}

type headingBall struct {
	Pos   game.Vector2 `json:"pos"`
	Speed float64      `json:"speed"`
	Angle float64      `json:"angle"`
	Size  float64      `json:"size"`
}

func (w WireBall) MarshalJSON() ([]byte, error) {
	b := w.Ball
	if w.Form == FormHeading {
		return json.Marshal(headingBall{
			Pos:   b.Pos,
			Speed: b.Magnitude(),
			Angle: b.Heading(),
			Size:  b.Size,
		})
	}
	return json.Marshal(vectorBall{Pos: b.Pos, Speed: b.Speed, Size: b.Size})
}

func (w *WireBall) UnmarshalJSON(data []byte) error {
	var raw struct {
		Pos   *game.Vector2   `json:"pos"`
		Speed json.RawMessage `json:"speed"`
		Angle *float64        `json:"angle"`
		Size  *float64        `json:"size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: ball: %v", ErrMalformedPayload, err)
	}
	if raw.Pos == nil || raw.Size == nil || len(raw.Speed) == 0 {
		return fmt.Errorf("%w: ball needs pos, speed and size", ErrMalformedPayload)
	}

	b := game.Ball{Pos: *raw.Pos, Size: *raw.Size}
	if bytes.HasPrefix(bytes.TrimSpace(raw.Speed), []byte("{")) {
		if err := json.Unmarshal(raw.Speed, &b.Speed); err != nil {
			return fmt.Errorf("%w: ball speed: %v", ErrMalformedPayload, err)
		}
		w.Ball, w.Form = b, FormVector
		return nil
	}

	var speed float64
	if err := json.Unmarshal(raw.Speed, &speed); err != nil {
		return fmt.Errorf("%w: ball speed: %v", ErrMalformedPayload, err)
	}
	if raw.Angle == nil {
		return fmt.Errorf("%w: heading ball needs angle", ErrMalformedPayload)
	}
	b.Speed = game.FromHeading(speed, *raw.Angle)
	w.Ball, w.Form = b, FormHeading
	return nil
}
