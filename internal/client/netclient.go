package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	sendBuffer = 256
)

var ErrClosed = errors.New("connection closed")

// NetClient is one websocket connection to the relay. Frames read from the
// socket are delivered on Frames; Send queues a text frame for the write pump.
type NetClient struct {
	conn   *websocket.Conn
	send   chan []byte
	frames chan Frame
	done   chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

// Endpoint builds the websocket URL for base, resuming session when set.
func Endpoint(base, session string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	if session != "" {
		u.Path += "/" + url.PathEscape(session)
	}
	return u.String(), nil
}

func Dial(ctx context.Context, addr string, log zerolog.Logger) (*NetClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	nc := &NetClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		frames: make(chan Frame, sendBuffer),
		done:   make(chan struct{}),
		log:    log.With().Str("addr", addr).Logger(),
	}

	go nc.readPump()
	go nc.writePump()

	return nc, nil
}

// Frames is closed when the connection goes away.
func (nc *NetClient) Frames() <-chan Frame {
	return nc.frames
}

// Send queues a frame. It fails once the connection is closed or when the
// write pump has fallen too far behind.
func (nc *NetClient) Send(frame []byte) error {
	select {
	case <-nc.done:
		return ErrClosed
	default:
	}
	select {
	case nc.send <- frame:
		return nil
	case <-nc.done:
		return ErrClosed
	default:
		return fmt.Errorf("send buffer full: %w", ErrClosed)
	}
}

func (nc *NetClient) readPump() {
	defer close(nc.frames)
	defer nc.Close()

	nc.conn.SetReadDeadline(time.Now().Add(pongWait))
	nc.conn.SetPongHandler(func(string) error {
		nc.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	nc.conn.SetPingHandler(func(data string) error {
		nc.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nc.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		kind, message, err := nc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				nc.log.Warn().Err(err).Msg("read error")
			}
			return
		}

		select {
		case nc.frames <- Frame{Binary: kind == websocket.BinaryMessage, Data: message}:
		case <-nc.done:
			return
		}
	}
}

func (nc *NetClient) writePump() {
	defer nc.conn.Close()

	for {
		select {
		case message := <-nc.send:
			nc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := nc.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				nc.log.Warn().Err(err).Msg("write error")
				nc.Close()
				return
			}
		case <-nc.done:
			nc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			nc.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Close shuts the connection down. It is safe to call more than once.
func (nc *NetClient) Close() {
	nc.once.Do(func() {
		close(nc.done)
	})
}
