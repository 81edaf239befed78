package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideTransform(t *testing.T) {
	l := SideTransform(Left, DefaultCourt)
	r := SideTransform(Right, DefaultCourt)

	assert.Equal(t, 10.0, l.ToLocal(10))
	assert.Equal(t, 630.0, r.ToLocal(10))
	assert.Equal(t, 640.0, r.ToCourt(0))
	assert.Equal(t, 0.0, l.ToCourt(0))

	for _, x := range []float64{0, 17.5, 320, 639} {
		assert.InDelta(t, x, r.ToCourt(r.ToLocal(x)), 1e-12)
	}
}

func TestPaddle_Move(t *testing.T) {
	p := NewPaddle(Left, DefaultCourt, PaddleWidth, PaddleHeight)
	assert.Equal(t, 240.0, p.CenterY)

	p.MoveBy(-PaddleStep)
	assert.Equal(t, 235.0, p.CenterY)

	// No clamping: the paddle may leave the court.
	p.SetPosition(10)
	p.MoveBy(-50)
	assert.Equal(t, -40.0, p.CenterY)
}

func TestPaddle_Approaching(t *testing.T) {
	l := NewPaddle(Left, DefaultCourt, PaddleWidth, PaddleHeight)
	r := NewPaddle(Right, DefaultCourt, PaddleWidth, PaddleHeight)

	assert.True(t, l.Approaching(Vector2{X: -1}))
	assert.False(t, l.Approaching(Vector2{X: 1}))
	assert.True(t, r.Approaching(Vector2{X: 1}))
	assert.False(t, r.Approaching(Vector2{X: -1}))
}

func TestSide_Text(t *testing.T) {
	b, err := json.Marshal(map[string]Side{"side": Right})
	require.NoError(t, err)
	assert.JSONEq(t, `{"side":"right"}`, string(b))

	var got struct {
		Side Side `json:"side"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"side":"left"}`), &got))
	assert.Equal(t, Left, got.Side)

	require.Error(t, json.Unmarshal([]byte(`{"side":"up"}`), &got))
	assert.Equal(t, Right, Left.Opponent())
}
