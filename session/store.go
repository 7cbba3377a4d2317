package session

import (
	"client-registry/services"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Session owns one ClientManager. Requests sharing a session are serialized
// through Do, since a manager is single-caller.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	manager    *services.ClientManager
	lastUsedAt time.Time
}

// Do runs fn with exclusive access to the session's manager.
func (s *Session) Do(fn func(m *services.ClientManager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.manager)
}

// ManagerFactory builds the manager for a new session.
type ManagerFactory func() *services.ClientManager

type SessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	ttl        time.Duration
	newManager ManagerFactory
	now        func() time.Time
	cron       *cron.Cron
}

func NewStore(ttl time.Duration, newManager ManagerFactory) *SessionStore {
	return &SessionStore{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		newManager: newManager,
		now:        time.Now,
	}
}

// Create starts a session with a fresh manager and an empty search cache.
func (s *SessionStore) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		manager:    s.newManager(),
		lastUsedAt: now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session and extends its lifetime, or nil when the
// session is unknown or has expired.
func (s *SessionStore) Get(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return nil
	}
	now := s.now()
	if now.Sub(sess.lastUsedAt) > s.ttl {
		delete(s.sessions, sessionID)
		return nil
	}
	sess.lastUsedAt = now
	return sess
}

// Resolve returns the session for sessionID, creating a new one when it is
// empty, unknown or expired. The bool reports whether a session was created.
func (s *SessionStore) Resolve(sessionID string) (*Session, bool) {
	if sessionID != "" {
		if sess := s.Get(sessionID); sess != nil {
			return sess, false
		}
	}
	return s.Create(), true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupExpired drops idle sessions and returns how many were removed.
func (s *SessionStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsedAt) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine sweeps expired sessions on the given cron schedule.
func (s *SessionStore) StartCleanupRoutine(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := s.CleanupExpired(); n > 0 {
			slog.Info("expired sessions removed", "count", n)
		}
	})
	if err != nil {
		return err
	}
	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	return nil
}

// Stop halts the cleanup routine and waits for a running sweep to finish.
func (s *SessionStore) Stop(ctx context.Context) {
	s.mu.RLock()
	c := s.cron
	s.mu.RUnlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
