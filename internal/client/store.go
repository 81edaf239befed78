package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SessionStore persists the session id between runs so a restarted client
// can rejoin its seat.
type SessionStore interface {
	Load() (string, error)
	Save(id string) error
	Clear() error
}

const sessionKey = "session"

type storedValue struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (storedValue) TableName() string {
	return "client_state"
}

// SQLiteStore keeps the session id in a local sqlite file.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	if err := db.AutoMigrate(&storedValue{}); err != nil {
		return nil, fmt.Errorf("migrating session store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the stored session id, or "" if there is none.
func (s *SQLiteStore) Load() (string, error) {
	var row storedValue
	err := s.db.First(&row, "name = ?", sessionKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	return row.Value, nil
}

func (s *SQLiteStore) Save(id string) error {
	if err := s.db.Save(&storedValue{Name: sessionKey, Value: id}).Error; err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if err := s.db.Delete(&storedValue{Name: sessionKey}).Error; err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryStore is a SessionStore that forgets everything on exit.
type MemoryStore struct {
	mu sync.Mutex
	id string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

func (m *MemoryStore) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = ""
	return nil
}
