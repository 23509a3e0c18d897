package session

import (
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/google/uuid"
)

// Store holds live sessions. Sessions are never persisted across restarts.
type Store interface {
	Save(s *Session) error
	Get(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
	List() []*Session
}

// MemoryStore keeps sessions in a map
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Save adds or replaces a session
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get retrieves a session by ID
func (m *MemoryStore) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session
func (m *MemoryStore) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// List returns all sessions, oldest first
func (m *MemoryStore) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Idle returns sessions untouched since before cutoff that have no run pending
func Idle(store Store, cutoff time.Time) []*Session {
	var idle []*Session
	for _, s := range store.List() {
		if s.IdleSince().Before(cutoff) && !s.Running() {
			idle = append(idle, s)
		}
	}
	return idle
}
