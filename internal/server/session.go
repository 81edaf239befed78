package server

import (
	"crypto/rand"
	"encoding/base32"
	"sync"
	"time"

	"netpong/internal/game"
)

const SessionDuration = 1 * time.Hour

// Session is one player's seat in a room. A player that loses its socket can
// take the seat back by dialing /ws/{id} before it expires.
type Session struct {
	ID       string
	RoomID   string
	Side     game.Side
	LastSeen time.Time
}

type SessionStore struct {
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (ss *SessionStore) CreateSession(roomID string, side game.Side) (*Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var id string
	for {
		var err error
		id, err = generateSessionID()
		if err != nil {
			return nil, err
		}
		if _, taken := ss.sessions[id]; !taken {
			break
		}
	}

	session := &Session{
		ID:       id,
		RoomID:   roomID,
		Side:     side,
		LastSeen: ss.now(),
	}
	ss.sessions[id] = session
	return session, nil
}

// GetSession returns a copy of the session. Expired sessions are not found.
func (ss *SessionStore) GetSession(sessionID string) (Session, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	session, exists := ss.sessions[sessionID]
	if !exists || ss.expired(session) {
		return Session{}, false
	}
	return *session, true
}

// Touch extends the session's lifetime.
func (ss *SessionStore) Touch(sessionID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if session, ok := ss.sessions[sessionID]; ok {
		session.LastSeen = ss.now()
	}
}

func (ss *SessionStore) DeleteSession(sessionID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, sessionID)
}

// Sweep drops expired sessions and returns them.
func (ss *SessionStore) Sweep() []Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var expired []Session
	for id, session := range ss.sessions {
		if ss.expired(session) {
			expired = append(expired, *session)
			delete(ss.sessions, id)
		}
	}
	return expired
}

func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

func (ss *SessionStore) expired(s *Session) bool {
	return ss.now().Sub(s.LastSeen) > ss.ttl
}

// generateSessionID returns 5 random bytes as 8 upper-case base32 characters.
func generateSessionID() (string, error) {
	bytes := make([]byte, 5)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base32.StdEncoding.EncodeToString(bytes), nil
}
