package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("auth: session not found")

	// ErrSessionExpired is returned when a session exists but has expired.
	ErrSessionExpired = errors.New("auth: session expired")
)

// Session is one authenticated login.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session is past its expiry.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// generateSessionID returns a 256-bit random hex token.
func generateSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SessionStore holds active sessions in memory. Sessions do not survive a
// restart; operators log in again.
//
// Thread-safe.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
}

// NewSessionStore creates a store with the given session TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}
}

// Create generates a new session with a cryptographically random ID.
func (s *SessionStore) Create() (Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return Session{}, err
	}

	now := time.Now()
	session := Session{ID: id, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by ID. Expired sessions are removed and reported
// as ErrSessionExpired.
func (s *SessionStore) Get(id string) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if session.IsExpired() {
		s.Delete(id)
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Delete removes a session. Idempotent; used for logout.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Cleanup removes expired sessions and returns how many were dropped.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker periodically runs Cleanup until the context is
// cancelled.
func (s *SessionStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
