package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"netpong/internal/game"
	"netpong/internal/net"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
}

type outbound struct {
	frame []byte
	last  bool
}

// Connection is one player's socket. roomID and side are owned by
// Matchmaking and only touched under its lock.
type Connection struct {
	ID   string
	conn *websocket.Conn
	send chan outbound
	done chan struct{}
	once sync.Once
	mm   *Matchmaking
	log  zerolog.Logger

	roomID string
	side   game.Side
}

func NewConnection(conn *websocket.Conn, mm *Matchmaking, log zerolog.Logger) *Connection {
	id := uuid.NewString()
	return &Connection{
		ID:   id,
		conn: conn,
		send: make(chan outbound, sendBuffer),
		done: make(chan struct{}),
		mm:   mm,
		log:  log.With().Str("conn", id).Logger(),
	}
}

// SendMessage queues one frame. Frames are never batched; each is its own
// websocket message.
func (c *Connection) SendMessage(kind net.Kind, data any) {
	frame, err := net.Encode(kind, data)
	if err != nil {
		c.log.Error().Err(err).Stringer("type", kind).Msg("encoding message")
		return
	}
	c.enqueue(outbound{frame: frame})
}

// Fail sends an error frame and closes the socket once it is written.
func (c *Connection) Fail(code int, msg string) {
	frame, err := net.Encode(net.KindError, net.ErrorPayload{Code: code, Msg: msg})
	if err != nil {
		c.Close()
		return
	}
	c.enqueue(outbound{frame: frame, last: true})
}

func (c *Connection) enqueue(o outbound) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- o:
	default:
		c.log.Warn().Msg("send buffer full, dropping message")
	}
}

func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.mm.Leave(c)
		c.Close()
		c.conn.Close()
		c.mm.metrics.connections.Dec()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket error")
			}
			return
		}
		if kind == websocket.BinaryMessage {
			c.log.Debug().Int("bytes", len(message)).Msg("ignoring binary frame")
			continue
		}

		env, err := net.Decode(message)
		if err != nil {
			c.log.Warn().Err(err).Msg("bad frame")
			continue
		}
		if err := c.mm.Handle(c, env); err != nil {
			c.log.Warn().Err(err).Str("type", env.Type).Msg("bad message")
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case o := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, o.frame); err != nil {
				c.Close()
				return
			}
			if o.last {
				c.Close()
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// HandleWebSocket upgrades /ws and /ws/{session}.
func HandleWebSocket(mm *Matchmaking, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade error")
			return
		}

		c := NewConnection(conn, mm, log)
		mm.metrics.connections.Inc()
		go c.writePump()

		if session := chi.URLParam(r, "session"); session != "" {
			err = mm.Rejoin(c, session)
		} else {
			err = mm.Join(c)
		}
		if err != nil {
			c.log.Info().Err(err).Msg("connection rejected")
		}

		go c.readPump()
		c.log.Info().Str("remote", r.RemoteAddr).Msg("client connected")
	}
}
