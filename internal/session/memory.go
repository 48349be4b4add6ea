package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jurisol/jurisol/internal/domain"
)

const defaultMaxAge = 24 * time.Hour

// MemoryStore keeps sessions in process memory. Sessions idle beyond the
// eviction age are dropped on the next write.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	evictAge time.Duration

	now func() time.Time
}

func NewMemoryStore(evictAge time.Duration) *MemoryStore {
	if evictAge <= 0 {
		evictAge = defaultMaxAge
	}
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		evictAge: evictAge,
		now:      time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(_ context.Context, sessionID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	history := make([]domain.Message, len(s.History))
	copy(history, s.History)
	return history, nil
}

func (m *MemoryStore) Update(_ context.Context, sessionID string, history []domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictStale(now)

	stored := make([]domain.Message, len(history))
	copy(stored, history)
	m.sessions[sessionID] = &domain.Session{
		ID:           sessionID,
		History:      stored,
		LastActivity: now,
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	return ok, nil
}

func (m *MemoryStore) ListActive(_ context.Context, maxAge time.Duration) ([]domain.SessionInfo, error) {
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	infos := make([]domain.SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			continue
		}
		infos = append(infos, domain.SessionInfo{
			ID:           s.ID,
			MessageCount: len(s.History),
			LastActivity: s.LastActivity,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].LastActivity.After(infos[j].LastActivity) })
	return infos, nil
}

func (m *MemoryStore) Close() error { return nil }

// evictStale drops sessions idle beyond the eviction age. Caller holds
// the lock.
func (m *MemoryStore) evictStale(now time.Time) {
	cutoff := now.Add(-m.evictAge)
	for id, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
