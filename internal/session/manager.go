// Package session keeps the per-login state of signed-in users. Each session
// owns one cart that lives from login until logout or idle expiry.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type Session struct {
	ID        string
	UserID    uint
	Email     string
	Cart      *cart.Store
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time of the most recent Get for this session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	policy   cart.ShippingPolicy
	idleTTL  time.Duration
	now      func() time.Time
}

// NewManager builds a registry whose carts use policy. An idleTTL of zero
// disables expiry.
func NewManager(policy cart.ShippingPolicy, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		policy:   policy,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Start opens a new session with an empty cart.
func (m *Manager) Start(userID uint, email string) *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Cart:      cart.NewStore(m.policy),
		CreatedAt: now,
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	logger.Info("Session started", map[string]interface{}{
		"session_id": s.ID,
		"user_id":    userID,
	})
	return s
}

// Get resolves a live session and refreshes its idle timer. An idle session
// is refused but left in place for Sweep to remove.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := m.now()
	if m.expired(s, now) {
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// End discards the session and its cart. It reports whether a session was removed.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		logger.Info("Session ended", map[string]interface{}{
			"session_id": id,
			"user_id":    s.UserID,
		})
	}
	return ok
}

// Sweep removes every session idle since before now-idleTTL and returns how
// many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of sessions currently held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.idleTTL > 0 && now.Sub(s.LastSeen()) > m.idleTTL
}
