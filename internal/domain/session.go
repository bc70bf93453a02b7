package domain

import (
	"sync"
	"time"
)

// Session is the per-connection state. Created when a connection is
// accepted, released when it closes; never persisted. The identity is set
// once at connect time and is immutable for the connection's lifetime.
type Session struct {
	ID              string
	UserID          string
	Username        string
	Email           string
	Authenticated   bool
	CurrentStreamID string
	Typing          bool
	LastTypingAt    time.Time
	CreatedAt       time.Time
	LastActiveAt    time.Time
	mu              sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

func (s *Session) Authenticate(userID, username, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.Username = username
	s.Email = email
	s.Authenticated = true
	s.LastActiveAt = time.Now()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

func (s *Session) JoinStream(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentStreamID = streamID
	s.LastActiveAt = time.Now()
}

// LeaveStream clears the room association and any typing state.
func (s *Session) LeaveStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentStreamID = ""
	s.Typing = false
	s.LastActiveAt = time.Now()
}

func (s *Session) GetCurrentStream() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentStreamID
}

func (s *Session) IsInStream() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentStreamID != ""
}

func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

func (s *Session) SetTyping(typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Typing = typing
	if typing {
		s.LastTypingAt = time.Now()
	}
}

func (s *Session) IsTyping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Typing
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
