// Package session keeps the uploaded datasets of active sessions. A session
// object replaces process-wide dataset state so concurrent uploads and tests
// do not interfere.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// ErrNotFound is returned when a session id is unknown or evicted.
var ErrNotFound = errors.New("session not found")

// Manager holds live sessions keyed by id, bounded by a session cap.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*model.Dataset
	order    []string
	max      int
}

// NewManager creates a manager evicting the oldest session beyond max.
func NewManager(max int) *Manager {
	if max <= 0 {
		max = 16
	}
	return &Manager{
		sessions: make(map[string]*model.Dataset),
		max:      max,
	}
}

// Create registers a dataset under a fresh session id and returns the id.
func (m *Manager) Create(ds *model.Dataset) string {
	id := uuid.New().String()
	ds.ID = id

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = ds
	m.order = append(m.order, id)
	for len(m.order) > m.max {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.sessions, oldest)
	}
	return id
}

// Get returns the dataset for a session id.
func (m *Manager) Get(id string) (*model.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ds, nil
}

// Replace swaps in a new dataset for an existing session: one upload
// replaces the previous one for that session.
func (m *Manager) Replace(id string, ds *model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	ds.ID = id
	m.sessions[id] = ds
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
