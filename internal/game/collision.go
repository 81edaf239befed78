package game

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidArgument = errors.New("invalid argument")

const unitTolerance = 1e-9

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector2) float64 {
	return b.Sub(a).Len()
}

// Reflect mirrors velocity v about the unit normal n: v - 2(v·n)n.
func Reflect(v, n Vector2) (Vector2, error) {
	if math.Abs(n.Len()-1) > unitTolerance {
		return Vector2{}, fmt.Errorf("%w: normal %v is not unit length", ErrInvalidArgument, n)
	}
	return v.Sub(n.Scale(2 * v.Dot(n))), nil
}

// ContactNormal returns the unit vector pointing from a contact point to the
// ball center.
func ContactNormal(contact, center Vector2) (Vector2, error) {
	d := Distance(contact, center)
	if d == 0 {
		return Vector2{}, fmt.Errorf("%w: ball center on contact point", ErrInvalidArgument)
	}
	return center.Sub(contact).Scale(1 / d), nil
}

type HitKind int

const (
	NoHit HitKind = iota
	CornerHit
	FlatHit
)

func (k HitKind) String() string {
	switch k {
	case CornerHit:
		return "corner"
	case FlatHit:
		return "flat"
	}
	return "none"
}

// HitResult is the outcome of PaddleHitTest. Contact is only set for CornerHit.
type HitResult struct {
	Kind    HitKind
	Contact Vector2
}

// PaddleHitTest classifies how the ball touches the paddle. Rounded corners
// are tested before the flat face, so a ball in both regions is a corner hit.
func PaddleHitTest(p Paddle, b Ball) HitResult {
	for _, c := range p.Corners() {
		if Distance(c, b.Pos) < b.Size+p.Width {
			return HitResult{Kind: CornerHit, Contact: c}
		}
	}

	top := p.CenterY - p.Height/2 + p.Width
	bottom := p.CenterY + p.Height/2 - p.Width
	if p.Transform.ToLocal(b.Pos.X) < p.Width+b.Size && b.Pos.Y >= top && b.Pos.Y <= bottom {
		return HitResult{Kind: FlatHit}
	}

	return HitResult{Kind: NoHit}
}
