package domain

import "testing"

func TestSessionAuthenticate(t *testing.T) {
	s := NewSession("conn-1")

	if s.IsAuthenticated() {
		t.Fatal("new session must not be authenticated")
	}

	s.Authenticate("user-1", "alice", "alice@example.com")

	if !s.IsAuthenticated() {
		t.Fatal("session must be authenticated after Authenticate")
	}
	if s.GetUserID() != "user-1" {
		t.Errorf("GetUserID = %q, want %q", s.GetUserID(), "user-1")
	}
	if s.GetUsername() != "alice" {
		t.Errorf("GetUsername = %q, want %q", s.GetUsername(), "alice")
	}
}

func TestSessionJoinAndLeaveStream(t *testing.T) {
	s := NewSession("conn-1")

	if s.IsInStream() {
		t.Fatal("new session must not be in a stream")
	}

	s.JoinStream("stream-1")
	if !s.IsInStream() || s.GetCurrentStream() != "stream-1" {
		t.Fatalf("GetCurrentStream = %q, want %q", s.GetCurrentStream(), "stream-1")
	}

	// A session has at most one room: joining again replaces it.
	s.JoinStream("stream-2")
	if s.GetCurrentStream() != "stream-2" {
		t.Fatalf("GetCurrentStream = %q, want %q", s.GetCurrentStream(), "stream-2")
	}

	s.LeaveStream()
	if s.IsInStream() || s.GetCurrentStream() != "" {
		t.Fatalf("session still in stream after LeaveStream: %q", s.GetCurrentStream())
	}
}

func TestSessionLeaveStreamClearsTyping(t *testing.T) {
	s := NewSession("conn-1")
	s.JoinStream("stream-1")
	s.SetTyping(true)

	if !s.IsTyping() {
		t.Fatal("expected typing flag to be set")
	}
	if s.LastTypingAt.IsZero() {
		t.Fatal("expected LastTypingAt to be set")
	}

	s.LeaveStream()
	if s.IsTyping() {
		t.Fatal("typing flag must be cleared on leave")
	}
}
