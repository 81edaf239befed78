package game

import (
	"math"
	"time"
)

// Ball is the canonical velocity-vector form: Speed is in pixels per second
// and Size is the radius.
type Ball struct {
	Pos   Vector2 `json:"pos"`
	Speed Vector2 `json:"speed"`
	Size  float64 `json:"size"`
}

// Magnitude returns the scalar speed of the ball.
func (b Ball) Magnitude() float64 {
	return b.Speed.Len()
}

// Heading returns the direction of travel in degrees, in [0, 360).
// Positive y points down the screen, as on the canvas.
func (b Ball) Heading() float64 {
	if b.Speed.X == 0 && b.Speed.Y == 0 {
		return 0
	}
	return NormalizeAngle(math.Atan2(b.Speed.Y, b.Speed.X) * 180 / math.Pi)
}

// NormalizeAngle folds degrees into [0, 360).
func NormalizeAngle(a float64) float64 {
	n := math.Mod(math.Mod(a, 360)+360, 360)
	if n >= 360 {
		return 0
	}
	return n
}

// FromHeading decomposes a speed and heading in degrees into a velocity.
func FromHeading(speed, angle float64) Vector2 {
	rad := NormalizeAngle(angle) * math.Pi / 180
	return Vector2{X: math.Cos(rad) * speed, Y: math.Sin(rad) * speed}
}

// ReflectHeadingVertical mirrors a heading about the horizontal axis, which is
// what a top or bottom wall does to the angle form.
func ReflectHeadingVertical(angle float64) float64 {
	return NormalizeAngle(-angle)
}

// Edge is the wall the ball last bounced off.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	}
	return "none"
}

// StepResult reports what happened during one Step.
type StepResult struct {
	Scored  bool
	Scorer  Side
	Bounce  Edge
	Hit     HitKind
	HitSide Side
}

// Simulator advances one ball against the court walls and two paddles. It is
// not safe for concurrent use; the owning session serializes access.
type Simulator struct {
	court      Court
	ball       Ball
	paddles    [2]*Paddle
	lastBounce Edge
	halted     bool
}

func NewSimulator(court Court, paddles [2]*Paddle) *Simulator {
	return &Simulator{
		court:   court,
		paddles: paddles,
	}
}

// Reset starts a new rally with b.
func (s *Simulator) Reset(b Ball) {
	s.ball = b
	s.lastBounce = EdgeNone
	s.halted = false
}

// SetBall overwrites the ball with a peer snapshot. A halted simulator stays
// halted until the next Reset.
func (s *Simulator) SetBall(b Ball) {
	s.ball = b
}

func (s *Simulator) Ball() Ball {
	return s.ball
}

func (s *Simulator) Halted() bool {
	return s.halted
}

// LastBounce returns the current bounce latch.
func (s *Simulator) LastBounce() Edge {
	return s.lastBounce
}

// Step integrates the ball over dt and resolves, in order: scoring, wall
// bounce, paddle collision. After a score it does nothing until Reset.
func (s *Simulator) Step(dt time.Duration) StepResult {
	var res StepResult
	if s.halted {
		return res
	}

	b := &s.ball
	b.Pos = b.Pos.Add(b.Speed.Scale(dt.Seconds()))

	switch {
	case b.Pos.X <= b.Size:
		s.halted = true
		res.Scored, res.Scorer = true, Right
		return res
	case b.Pos.X >= s.court.Width-b.Size:
		s.halted = true
		res.Scored, res.Scorer = true, Left
		return res
	}

	inTop := b.Pos.Y <= b.Size
	inBottom := b.Pos.Y >= s.court.Height-b.Size
	switch {
	case inTop && s.lastBounce != EdgeTop:
		b.Speed.Y = -b.Speed.Y
		s.lastBounce = EdgeTop
		res.Bounce = EdgeTop
	case inBottom && s.lastBounce != EdgeBottom:
		b.Speed.Y = -b.Speed.Y
		s.lastBounce = EdgeBottom
		res.Bounce = EdgeBottom
	case !inTop && !inBottom:
		s.lastBounce = EdgeNone
	}

	for _, p := range s.paddles {
		if p == nil {
			continue
		}
		hit := PaddleHitTest(*p, *b)
		switch hit.Kind {
		case CornerHit:
			n, err := ContactNormal(hit.Contact, b.Pos)
			if err != nil || b.Speed.Dot(n) >= 0 {
				continue
			}
			v, err := Reflect(b.Speed, n)
			if err != nil {
				continue
			}
			b.Speed = v
		case FlatHit:
			// A ball already leaving the face keeps its direction.
			if !p.Approaching(b.Speed) {
				continue
			}
			b.Speed.X = -b.Speed.X
		default:
			continue
		}
		s.lastBounce = EdgeNone
		res.Hit, res.HitSide = hit.Kind, p.Side
		break
	}

	return res
}
