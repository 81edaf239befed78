package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const redialDelay = time.Second

// App connects a Session to the relay and starts over on replay. A dropped
// or rejected connection is redialed after a short delay.
type App struct {
	serverURL string
	settings  Settings
	store     SessionStore
	log       zerolog.Logger
	redial    time.Duration

	mu      sync.RWMutex
	current *Session
}

func NewApp(serverURL string, settings Settings, store SessionStore, log zerolog.Logger) *App {
	return &App{
		serverURL: serverURL,
		settings:  settings,
		store:     store,
		log:       log,
		redial:    redialDelay,
	}
}

// Run plays matches until ctx is done. resume, when set, overrides the
// stored session id for the first connection.
func (a *App) Run(ctx context.Context, resume string) error {
	for {
		id := resume
		resume = ""
		if id == "" {
			stored, err := a.store.Load()
			if err != nil {
				a.log.Warn().Err(err).Msg("loading stored session")
			}
			id = stored
		}

		err := a.play(ctx, id)
		switch {
		case errors.Is(err, ErrReplay):
			a.log.Info().Msg("starting a new match")
			continue
		case err != nil && ctx.Err() == nil:
			if errors.Is(err, ErrDisconnected) {
				a.log.Info().Msg("server closed the connection, redialing")
			} else {
				a.log.Warn().Err(err).Msg("connection failed, retrying")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.redial):
			}
			continue
		}
		return err
	}
}

func (a *App) play(ctx context.Context, id string) error {
	addr, err := Endpoint(a.serverURL, id)
	if err != nil {
		return err
	}
	nc, err := Dial(ctx, addr, a.log)
	if err != nil {
		return err
	}
	defer nc.Close()

	s, err := NewSession(a.settings, nc, a.store, id, a.log.With().Str("session", id).Logger())
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.current = s
	a.mu.Unlock()

	a.log.Info().Str("addr", addr).Msg("connected")
	return s.Run(ctx, nc.Frames())
}

// Snapshot returns the current match, or an idle one before the first dial.
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	s := a.current
	a.mu.RUnlock()
	if s == nil {
		return Snapshot{}
	}
	return s.Snapshot()
}

func (a *App) Input(in Intent) {
	a.mu.RLock()
	s := a.current
	a.mu.RUnlock()
	if s != nil {
		s.Input(in)
	}
}
