// Package store holds session stores other than SQLite: an in-process
// memory store and a Redis-backed store.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tgienger/double/internal/models"
)

// Memory keeps the session in process. Saved sessions are deep-copied
// through JSON so callers cannot mutate stored state.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the saved session, or nil if none was saved.
func (m *Memory) Load(_ context.Context) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, nil
	}
	return decode(m.data)
}

// Save replaces the saved session.
func (m *Memory) Save(_ context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// Clear drops the saved session.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func decode(data []byte) (*models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}
