package game

import "time"

// Court and piece dimensions in logical pixels. Client and server must agree on these.
const (
	CourtWidth   = 640.0
	CourtHeight  = 480.0
	PaddleWidth  = 30.0
	PaddleHeight = 150.0
	BallRadius   = 30.0
	PaddleStep   = 5.0
	LaunchSpeed  = 200.0
)

const (
	TickPeriod      = 40 * time.Millisecond
	BroadcastPeriod = time.Second
)

// Court is the playfield. It does not change for the lifetime of a process.
type Court struct {
	Width  float64
	Height float64
}

// DefaultCourt is the 640x480 court every client renders.
var DefaultCourt = Court{Width: CourtWidth, Height: CourtHeight}

// Layout describes how a match is homed: court size and piece sizes.
type Layout struct {
	Court        Court
	PaddleWidth  float64
	PaddleHeight float64
	BallRadius   float64
}

func DefaultLayout() Layout {
	return Layout{
		Court:        DefaultCourt,
		PaddleWidth:  PaddleWidth,
		PaddleHeight: PaddleHeight,
		BallRadius:   BallRadius,
	}
}

// NewPaddles returns both paddles centered vertically, indexed by Side.
func (l Layout) NewPaddles() [2]*Paddle {
	return [2]*Paddle{
		NewPaddle(Left, l.Court, l.PaddleWidth, l.PaddleHeight),
		NewPaddle(Right, l.Court, l.PaddleWidth, l.PaddleHeight),
	}
}

// CenterBall places a ball of the layout's radius in the middle of the court.
func (l Layout) CenterBall(speed Vector2) Ball {
	return Ball{
		Pos:   Vector2{X: l.Court.Width / 2, Y: l.Court.Height / 2},
		Speed: speed,
		Size:  l.BallRadius,
	}
}
