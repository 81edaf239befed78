package server

import (
	"netpong/internal/game"
	"netpong/internal/net"
)

type seat struct {
	session string
	conn    *Connection
}

// Room pairs two seats. The relay keeps the last paddle positions and ball it
// saw so a reconnecting player can be put back into the rally.
type Room struct {
	ID    string
	seats [2]seat
	pos   [2]float64
	ball  game.Ball
	over  bool
}

func newRoom(id string) *Room {
	return &Room{ID: id}
}

// restart begins a new rally with both paddles centered.
func (r *Room) restart(ball game.Ball, center float64) {
	r.ball = ball
	r.pos = [2]float64{center, center}
	r.over = false
}

func (r *Room) conn(side game.Side) *Connection {
	return r.seats[side].conn
}

func (r *Room) opponent(side game.Side) *Connection {
	return r.seats[side.Opponent()].conn
}

func (r *Room) attach(side game.Side, session string, c *Connection) {
	r.seats[side] = seat{session: session, conn: c}
	c.roomID = r.ID
	c.side = side
}

func (r *Room) detach(c *Connection) bool {
	for i := range r.seats {
		if r.seats[i].conn == c {
			r.seats[i].conn = nil
			return true
		}
	}
	return false
}

// drop forgets an expired session. It reports whether the room has no
// sessions left.
func (r *Room) drop(session string) bool {
	for i := range r.seats {
		if r.seats[i].session == session {
			r.seats[i] = seat{}
		}
	}
	return r.seats[game.Left].session == "" && r.seats[game.Right].session == ""
}

func (r *Room) posPayload() net.PosPayload {
	return net.NewPosPayload(r.pos[game.Left], r.pos[game.Right])
}

func (r *Room) gamePayload(side game.Side) net.GamePayload {
	return net.GamePayload{ID: r.ID, Side: side, Ball: &net.WireBall{Ball: r.ball}}
}
