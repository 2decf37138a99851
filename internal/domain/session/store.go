package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"neodrive/internal/domain/quota"
)

// CookieName carries the session token as an HTTP-only cookie.
const CookieName = "neodrive_session"

// Identity is what a session binds a token to.
type Identity struct {
	UserID       string
	Name         string
	Email        string
	Subscription quota.Tier
}

// Session is a server-held record of an authenticated identity with sliding
// expiration. Sessions live in process memory only; a restart invalidates
// all of them.
type Session struct {
	Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store maps opaque tokens to sessions. It is constructed once at process
// start, injected into every handler, and serializes its own mutations; no
// caller-visible locking is exposed.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session

	now func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create generates a random token and stores a session for the identity.
// The caller sets the token as a cookie.
func (s *Store) Create(id Identity) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	now := s.now()
	s.mu.Lock()
	s.sessions[token] = Session{
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Unlock()

	return token, nil
}

// Get fails open to "no session": missing, unknown and expired tokens all
// report absent, never an error.
func (s *Store) Get(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || s.now().After(sess.ExpiresAt) {
		return Session{}, false
	}
	return sess, true
}

// Touch slides the expiration forward by the full TTL. Called on every
// authenticated request so active sessions never expire mid-use.
func (s *Store) Touch(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || s.now().After(sess.ExpiresAt) {
		return false
	}
	sess.ExpiresAt = s.now().Add(s.ttl)
	s.sessions[token] = sess
	return true
}

// Revoke removes the session. The caller clears the cookie.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// UpdateName rewrites the display name on every live session of the user.
func (s *Store) UpdateName(userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.UserID == userID {
			sess.Name = name
			s.sessions[token] = sess
		}
	}
}

// UpdateSubscription rewrites the tier on every live session of the user,
// so a billing change takes effect without re-login.
func (s *Store) UpdateSubscription(userID string, tier quota.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.UserID == userID {
			sess.Subscription = tier
			s.sessions[token] = sess
		}
	}
}

// Sweep deletes every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the interval until the context is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Printf("session sweep removed %d expired sessions", n)
				}
			}
		}
	}()
}

// Len reports the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
