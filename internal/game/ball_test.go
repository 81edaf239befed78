package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(b Ball) *Simulator {
	s := NewSimulator(DefaultCourt, DefaultLayout().NewPaddles())
	s.Reset(b)
	return s
}

func TestNormalizeAngle(t *testing.T) {
	tests := map[float64]float64{
		0:    0,
		-90:  270,
		360:  0,
		725:  5,
		-720: 0,
		359:  359,
	}
	for in, want := range tests {
		assert.InDelta(t, want, NormalizeAngle(in), 1e-9, "angle %v", in)
	}
}

func TestFromHeading(t *testing.T) {
	v := FromHeading(100, 90)
	assert.InDelta(t, 0.0, v.X, 1e-9)
	assert.InDelta(t, 100.0, v.Y, 1e-9)

	v = FromHeading(100, 180)
	assert.InDelta(t, -100.0, v.X, 1e-9)
	assert.InDelta(t, 0.0, v.Y, 1e-9)

	b := Ball{Speed: FromHeading(50, -45)}
	assert.InDelta(t, 315.0, b.Heading(), 1e-9)
}

func TestReflectHeadingVertical_MatchesVectorFlip(t *testing.T) {
	for _, a := range []float64{0, 30, 100, 200, 315} {
		b := Ball{Speed: FromHeading(120, a)}
		flipped := Ball{Speed: Vector2{X: b.Speed.X, Y: -b.Speed.Y}}
		assert.InDelta(t, flipped.Heading(), ReflectHeadingVertical(a), 1e-6, "angle %v", a)
	}
}

func TestStep_AdvancesAlongHeading(t *testing.T) {
	s := newTestSimulator(Ball{
		Pos:   Vector2{X: 320, Y: 240},
		Speed: FromHeading(100, 0),
		Size:  30,
	})

	res := s.Step(1000 * time.Millisecond)

	assert.False(t, res.Scored)
	assert.InDelta(t, 420.0, s.Ball().Pos.X, 1e-9)
	assert.InDelta(t, 240.0, s.Ball().Pos.Y, 1e-9)
}

func TestStep_ScoringBoundary(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		scored bool
		scorer Side
	}{
		{"at left edge band", 30, true, Right},
		{"at right edge band", CourtWidth - 30, true, Left},
		{"just inside left band", 30.01, false, Left},
		{"just inside right band", CourtWidth - 30.01, false, Left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulator(Ball{Pos: Vector2{X: tt.x, Y: 240}, Size: 30})
			res := s.Step(TickPeriod)
			assert.Equal(t, tt.scored, res.Scored)
			assert.Equal(t, tt.scored, s.Halted())
			if tt.scored {
				assert.Equal(t, tt.scorer, res.Scorer)
			}
		})
	}
}

func TestStep_ScoreHaltsUntilReset(t *testing.T) {
	s := newTestSimulator(Ball{
		Pos:   Vector2{X: 30, Y: 240},
		Speed: FromHeading(100, 180),
		Size:  30,
	})

	res := s.Step(TickPeriod)
	require.True(t, res.Scored)
	assert.Equal(t, Right, res.Scorer)

	pos := s.Ball().Pos
	res = s.Step(TickPeriod)
	assert.False(t, res.Scored)
	assert.Equal(t, pos, s.Ball().Pos)

	s.Reset(DefaultLayout().CenterBall(Vector2{X: 100}))
	assert.False(t, s.Halted())
	s.Step(TickPeriod)
	assert.InDelta(t, 324.0, s.Ball().Pos.X, 1e-9)
}

func TestStep_WallBounceLatch(t *testing.T) {
	s := newTestSimulator(Ball{
		Pos:   Vector2{X: 320, Y: 20},
		Speed: Vector2{X: 0, Y: -50},
		Size:  30,
	})

	bounces := 0
	for i := 0; i < 20; i++ {
		// Pin the ball inside the top band.
		b := s.Ball()
		b.Pos.Y = 20
		s.SetBall(b)

		if res := s.Step(TickPeriod); res.Bounce != EdgeNone {
			assert.Equal(t, EdgeTop, res.Bounce)
			bounces++
		}
	}
	assert.Equal(t, 1, bounces)
	assert.Equal(t, 50.0, s.Ball().Speed.Y)
	assert.Equal(t, EdgeTop, s.LastBounce())

	b := s.Ball()
	b.Pos.Y = 240
	s.SetBall(b)
	s.Step(TickPeriod)
	assert.Equal(t, EdgeNone, s.LastBounce())
}

func TestStep_BottomBounce(t *testing.T) {
	s := newTestSimulator(Ball{
		Pos:   Vector2{X: 320, Y: 445},
		Speed: Vector2{X: 40, Y: 200},
		Size:  30,
	})

	res := s.Step(100 * time.Millisecond)
	assert.Equal(t, EdgeBottom, res.Bounce)
	assert.Equal(t, -200.0, s.Ball().Speed.Y)
	assert.Equal(t, 40.0, s.Ball().Speed.X)
}

func TestStep_EnergyConservation(t *testing.T) {
	tests := []struct {
		name string
		ball Ball
		dt   time.Duration
		hit  HitKind
		edge Edge
	}{
		{
			name: "wall",
			ball: Ball{Pos: Vector2{X: 320, Y: 35}, Speed: Vector2{X: 90, Y: -120}, Size: 30},
			dt:   100 * time.Millisecond,
			edge: EdgeTop,
		},
		{
			name: "flat face",
			ball: Ball{Pos: Vector2{X: 70, Y: 240}, Speed: Vector2{X: -200, Y: 30}, Size: 30},
			dt:   100 * time.Millisecond,
			hit:  FlatHit,
		},
		{
			name: "rounded corner",
			ball: Ball{Pos: Vector2{X: 50, Y: 150}, Speed: Vector2{X: -100, Y: 100}, Size: 30},
			dt:   100 * time.Millisecond,
			hit:  CornerHit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulator(tt.ball)
			before := s.Ball().Magnitude()

			res := s.Step(tt.dt)

			assert.Equal(t, tt.hit, res.Hit)
			assert.Equal(t, tt.edge, res.Bounce)
			assert.InDelta(t, before, s.Ball().Magnitude(), 1e-9)
			assert.NotEqual(t, tt.ball.Speed, s.Ball().Speed)
		})
	}
}

func TestStep_FlatHitInvertsHorizontal(t *testing.T) {
	s := newTestSimulator(Ball{Pos: Vector2{X: 70, Y: 240}, Speed: Vector2{X: -200, Y: 30}, Size: 30})

	res := s.Step(100 * time.Millisecond)

	assert.Equal(t, FlatHit, res.Hit)
	assert.Equal(t, Left, res.HitSide)
	assert.Equal(t, Vector2{X: 200, Y: 30}, s.Ball().Speed)
}

func TestStep_LeavingPaddleIsNotRehit(t *testing.T) {
	s := newTestSimulator(Ball{Pos: Vector2{X: 50, Y: 240}, Speed: Vector2{X: 200, Y: 0}, Size: 30})

	res := s.Step(10 * time.Millisecond)

	assert.Equal(t, NoHit, res.Hit)
	assert.Equal(t, Vector2{X: 200, Y: 0}, s.Ball().Speed)
}

func TestStep_PaddleHitClearsLatch(t *testing.T) {
	paddles := DefaultLayout().NewPaddles()
	paddles[Left].SetPosition(60)
	s := NewSimulator(DefaultCourt, paddles)
	s.Reset(Ball{Pos: Vector2{X: 70, Y: 40}, Speed: Vector2{X: -200, Y: -150}, Size: 30})

	res := s.Step(100 * time.Millisecond)

	assert.Equal(t, EdgeTop, res.Bounce)
	assert.NotEqual(t, NoHit, res.Hit)
	assert.Equal(t, EdgeNone, s.LastBounce())
}

func TestStep_HeadingStaysNormalized(t *testing.T) {
	s := newTestSimulator(Ball{
		Pos:   Vector2{X: 320, Y: 240},
		Speed: FromHeading(LaunchSpeed, 217),
		Size:  30,
	})

	for i := 0; i < 500 && !s.Halted(); i++ {
		s.Step(TickPeriod)
		h := s.Ball().Heading()
		require.GreaterOrEqual(t, h, 0.0)
		require.Less(t, h, 360.0)
	}
}
