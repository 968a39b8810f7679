package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions for the lifetime of the process.
// A zero ttl disables expiry.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]Session
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[int64]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[chatID]
	if !ok || m.expired(s) {
		delete(m.sessions, chatID)
		return New(), nil
	}
	return s, nil
}

func (m *MemoryStore) Put(_ context.Context, chatID int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.UpdatedAt = m.now()
	m.sessions[chatID] = s
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, chatID)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) SweepExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) expired(s Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}

// MemoryAuthorizations keeps verified chats in memory.
type MemoryAuthorizations struct {
	mu    sync.RWMutex
	users map[int64]int64
}

func NewMemoryAuthorizations() *MemoryAuthorizations {
	return &MemoryAuthorizations{users: make(map[int64]int64)}
}

func (a *MemoryAuthorizations) Lookup(_ context.Context, chatID int64) (int64, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.users[chatID]
	return id, ok, nil
}

func (a *MemoryAuthorizations) Remember(_ context.Context, chatID, userID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[chatID] = userID
	return nil
}

func (a *MemoryAuthorizations) Forget(_ context.Context, chatID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.users, chatID)
	return nil
}
