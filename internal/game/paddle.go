package game

import (
	"fmt"
	"strings"
)

type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Opponent returns the other side of the court.
func (s Side) Opponent() Side {
	if s == Left {
		return Right
	}
	return Left
}

func ParseSide(v string) (Side, error) {
	switch strings.ToLower(v) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Left, fmt.Errorf("%w: unknown side %q", ErrInvalidArgument, v)
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Transform maps court x coordinates into a paddle's local frame, where the
// paddle face starts at x=0 and extends towards positive x.
type Transform struct {
	Scale     float64
	Translate float64
}

func (t Transform) ToLocal(x float64) float64 {
	return t.Scale*x + t.Translate
}

func (t Transform) ToCourt(x float64) float64 {
	return (x - t.Translate) / t.Scale
}

// SideTransform returns the mirror transform for a side. The right paddle is
// reflected about the court's vertical midline.
func SideTransform(s Side, court Court) Transform {
	if s == Right {
		return Transform{Scale: -1, Translate: court.Width}
	}
	return Transform{Scale: 1, Translate: 0}
}

// Paddle is one player's bat. CenterY is not clamped to the court; the
// collision geometry alone decides what the ball sees.
type Paddle struct {
	Side      Side
	CenterY   float64
	Width     float64
	Height    float64
	Transform Transform
}

func NewPaddle(side Side, court Court, width, height float64) *Paddle {
	return &Paddle{
		Side:      side,
		CenterY:   court.Height / 2,
		Width:     width,
		Height:    height,
		Transform: SideTransform(side, court),
	}
}

// MoveBy shifts the paddle vertically. Only local input calls this.
func (p *Paddle) MoveBy(delta float64) {
	p.CenterY += delta
}

// SetPosition applies an authoritative position received from the peer.
func (p *Paddle) SetPosition(y float64) {
	p.CenterY = y
}

// Corners returns the centers of the upper and lower rounded caps, at the
// paddle's face origin.
func (p Paddle) Corners() [2]Vector2 {
	x := p.Transform.ToCourt(0)
	inset := p.Height/2 - p.Width
	return [2]Vector2{
		{X: x, Y: p.CenterY - inset},
		{X: x, Y: p.CenterY + inset},
	}
}

// Approaching reports whether a velocity moves towards the paddle's face.
func (p Paddle) Approaching(v Vector2) bool {
	return p.Transform.Scale*v.X < 0
}
