package storage

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/csidc/landwatch/internal/session"
	"github.com/google/uuid"
)

// SessionStore keeps one analysis session per browser session, in memory.
type SessionStore struct {
	sessions map[string]*session.Controller
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Controller),
	}
}

// Add stores ctrl under a new random id and returns the id
func (s *SessionStore) Add(ctrl *session.Controller) string {
	id := uuid.NewString()
	s.Set(id, ctrl)
	return id
}

func (s *SessionStore) Get(sessionID string) (*session.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctrl, exists := s.sessions[sessionID]
	return ctrl, exists
}

func (s *SessionStore) Set(sessionID string, ctrl *session.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = ctrl
}

// IDs returns the stored session ids in sorted order
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Delete removes and closes a session. It reports whether one existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	ctrl, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !exists {
		return false
	}
	if err := ctrl.Close(); err != nil {
		slog.Warn("Failed to close session", "session_id", sessionID, "error", err)
	}
	return true
}

// CloseAll closes and forgets every session
func (s *SessionStore) CloseAll() {
	for _, id := range s.IDs() {
		s.Delete(id)
	}
}
