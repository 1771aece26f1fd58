package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/pkg/metrics"
)

// MemoryStore is an in-memory Store guarded by a single RWMutex.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a session store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		idleTTL:  2 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateActiveSessions(0)
	return s
}

// Create opens a session, evicting idle ones first when the store is full.
func (s *MemoryStore) Create(ctx context.Context, engine *analytics.Engine, settings analytics.Settings) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictIdleLocked()
		if len(s.sessions) >= s.maxSessions {
			metrics.RecordErrorByComponent("repository", "too_many_sessions")
			return Session{}, ErrTooManySessions
		}
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Engine:    engine,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	metrics.UpdateActiveSessions(len(s.sessions))
	return sess.clone(), nil
}

// Get returns a copy of the session.
func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Session{}, ErrSessionNotFound
	}
	return sess.clone(), nil
}

// Update applies fn under the write lock. A failing fn leaves the session unchanged.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Session{}, ErrSessionNotFound
	}
	next := cur.clone()
	if err := fn(&next); err != nil {
		return cur.clone(), err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.now()
	s.sessions[id] = &next
	return next.clone(), nil
}

// Delete drops a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	metrics.UpdateActiveSessions(len(s.sessions))
	return nil
}

// Count returns the number of open sessions.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) evictIdleLocked() {
	cutoff := s.now().Add(-s.idleTTL)
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			metrics.RecordSessionEvicted()
		}
	}
	metrics.UpdateActiveSessions(len(s.sessions))
}
