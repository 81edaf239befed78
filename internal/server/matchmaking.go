package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"netpong/internal/game"
	"netpong/internal/net"
)

var (
	ErrSessionTaken  = errors.New("session is taken")
	ErrNoSuchSession = errors.New("no such session")
)

// Launch angles are drawn from ±maxLaunchAngle around the horizontal.
const maxLaunchAngle = 30.0

type Options struct {
	Layout      game.Layout
	LaunchSpeed float64
	SessionTTL  time.Duration
	// Seed fixes the launch sequence. Zero seeds from the clock.
	Seed    uint64
	Metrics *Metrics
	Log     zerolog.Logger
}

// Matchmaking pairs players into rooms and relays their messages. All room
// state is guarded by mu.
type Matchmaking struct {
	waiting  *Connection
	rooms    map[string]*Room
	sessions *SessionStore
	layout   game.Layout
	speed    float64
	rng      *rand.Rand
	metrics  *Metrics
	log      zerolog.Logger
	mu       sync.Mutex
}

func NewMatchmaking(opts Options) *Matchmaking {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Matchmaking{
		rooms:    make(map[string]*Room),
		sessions: NewSessionStore(opts.SessionTTL),
		layout:   opts.Layout,
		speed:    opts.LaunchSpeed,
		rng:      rand.New(rand.NewSource(seed)),
		metrics:  metrics,
		log:      opts.Log,
	}
}

// Join pairs c with the waiting player, or parks c until someone arrives.
func (m *Matchmaking) Join(c *Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.waiting == nil || m.waiting.Closed() {
		m.waiting = c
		m.metrics.waiting.Set(1)
		c.log.Info().Msg("waiting for opponent")
		return nil
	}

	left := m.waiting
	m.waiting = nil
	m.metrics.waiting.Set(0)
	if err := m.startRoom(left, c); err != nil {
		left.Fail(http.StatusInternalServerError, "Could not create game")
		c.Fail(http.StatusInternalServerError, "Could not create game")
		return err
	}
	return nil
}

func (m *Matchmaking) startRoom(left, right *Connection) error {
	room := newRoom(uuid.NewString())
	for side, c := range [2]*Connection{left, right} {
		s, err := m.sessions.CreateSession(room.ID, game.Side(side))
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		room.attach(game.Side(side), s.ID, c)
	}
	m.rooms[room.ID] = room
	m.metrics.rooms.Set(float64(len(m.rooms)))

	for _, st := range room.seats {
		st.conn.SendMessage(net.KindSession, st.session)
	}
	m.startGame(room)
	m.log.Info().
		Str("room", room.ID).
		Str("left", room.seats[game.Left].session).
		Str("right", room.seats[game.Right].session).
		Msg("new game")
	return nil
}

// startGame launches a fresh ball and sends the same game to both seats.
func (m *Matchmaking) startGame(room *Room) {
	room.restart(m.launchBall(), m.layout.Court.Height/2)
	for side, st := range room.seats {
		if st.conn != nil {
			st.conn.SendMessage(net.KindGame, room.gamePayload(game.Side(side)))
		}
	}
	m.metrics.gamesStarted.Inc()
}

func (m *Matchmaking) launchBall() game.Ball {
	angle := (m.rng.Float64()*2 - 1) * maxLaunchAngle
	if m.rng.Intn(2) == 0 {
		angle += 180
	}
	return m.layout.CenterBall(game.FromHeading(m.speed, angle))
}

// Rejoin puts c back into the seat of session id. The previous connection
// must be gone and the match must not be over.
func (m *Matchmaking) Rejoin(c *Connection, id string) error {
	id = strings.ToUpper(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.GetSession(id)
	var room *Room
	if ok {
		room = m.rooms[s.RoomID]
	}
	if room == nil || room.over {
		m.metrics.rejected.WithLabelValues("no_such_session").Inc()
		c.Fail(http.StatusNotFound, "No such session")
		return fmt.Errorf("%w: %s", ErrNoSuchSession, id)
	}
	if prev := room.conn(s.Side); prev != nil && !prev.Closed() {
		m.metrics.rejected.WithLabelValues("session_taken").Inc()
		c.Fail(http.StatusConflict, "Session is taken")
		return fmt.Errorf("%w: %s", ErrSessionTaken, id)
	}

	room.attach(s.Side, id, c)
	m.sessions.Touch(id)
	m.metrics.reconnects.Inc()
	c.log.Info().Str("session", id).Stringer("side", s.Side).Msg("player reconnected")

	c.SendMessage(net.KindGame, room.gamePayload(s.Side))
	c.SendMessage(net.KindPos, room.posPayload())
	return nil
}

// Leave releases whatever c was holding. A seat stays reserved for its
// session until the session expires.
func (m *Matchmaking) Leave(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.waiting == c {
		m.waiting = nil
		m.metrics.waiting.Set(0)
		return
	}
	if room, ok := m.rooms[c.roomID]; ok && room.detach(c) {
		m.sessions.Touch(room.seats[c.side].session)
		c.log.Info().Str("room", room.ID).Msg("player left")
	}
}

// Handle relays one client message to the opponent.
func (m *Matchmaking) Handle(c *Connection, env net.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[c.roomID]
	if !ok || room.conn(c.side) != c {
		c.log.Debug().Str("type", env.Type).Msg("message outside a room")
		return nil
	}
	side := c.side
	m.sessions.Touch(room.seats[side].session)

	switch env.Kind() {
	case net.KindPos:
		y, err := net.DecodeData[float64](env)
		if err != nil {
			return err
		}
		room.pos[side] = y
		if o := room.opponent(side); o != nil {
			o.SendMessage(net.KindPos, room.posPayload())
		}
	case net.KindBall:
		w, err := net.DecodeData[net.WireBall](env)
		if err != nil {
			return err
		}
		room.ball = w.Ball
		if o := room.opponent(side); o != nil {
			o.SendMessage(net.KindBall, w)
		}
	case net.KindScore:
		scorer, err := net.DecodeData[game.Side](env)
		if err != nil {
			return err
		}
		if room.over {
			return nil
		}
		room.over = true
		if w := room.conn(scorer); w != nil {
			w.SendMessage(net.KindScore, true)
		}
		if l := room.conn(scorer.Opponent()); l != nil {
			l.SendMessage(net.KindScore, false)
		}
		m.log.Info().Str("room", room.ID).Stringer("winner", scorer).Msg("match over")
	case net.KindReset:
		m.startGame(room)
		m.log.Info().Str("room", room.ID).Stringer("by", side).Msg("game reset")
	default:
		c.log.Debug().Str("type", env.Type).Msg("ignoring message")
		return nil
	}
	m.metrics.messagesRelayed.WithLabelValues(env.Type).Inc()
	return nil
}

// Sweep drops expired sessions and the rooms they leave empty.
func (m *Matchmaking) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := m.sessions.Sweep()
	for _, s := range expired {
		room, ok := m.rooms[s.RoomID]
		if ok && room.drop(s.ID) {
			delete(m.rooms, room.ID)
		}
	}
	m.metrics.expiredSessions.Add(float64(len(expired)))
	m.metrics.rooms.Set(float64(len(m.rooms)))
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Matchmaking) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info().Int("expired", n).Msg("swept sessions")
			}
		}
	}
}

func (m *Matchmaking) Waiting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiting != nil
}

func (m *Matchmaking) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
