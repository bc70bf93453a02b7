package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Eprince-hub/live-chat/internal/config"
)

func newTestHub() *Hub {
	h := NewHub(config.WebSocketConfig{})
	go h.Run()
	return h
}

func newTestClient(t *testing.T, h *Hub, id, userID string) *Client {
	t.Helper()
	c := NewClient(id, h, nil, config.WebSocketConfig{})
	c.Session.Authenticate(userID, "user-"+userID, userID+"@example.com")
	h.Register(c)
	return c
}

func recvRaw(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("failed to decode message %q: %v", data, err)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")
	b := newTestClient(t, h, "b", "u2")
	outsider := newTestClient(t, h, "c", "u3")

	h.JoinRoom(a, "s1")
	h.JoinRoom(b, "s1")
	h.JoinRoom(outsider, "s2")

	if err := h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, ""); err != nil {
		t.Fatalf("BroadcastToRoom returned error: %v", err)
	}

	if got := recvRaw(t, a)["type"]; got != "hello" {
		t.Errorf("a received type %v, want hello", got)
	}
	if got := recvRaw(t, b)["type"]; got != "hello" {
		t.Errorf("b received type %v, want hello", got)
	}
	expectNothing(t, outsider)
}

func TestBroadcastExcludesSender(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")
	b := newTestClient(t, h, "b", "u2")

	h.JoinRoom(a, "s1")
	h.JoinRoom(b, "s1")

	h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, a.ID)

	if got := recvRaw(t, b)["type"]; got != "hello" {
		t.Errorf("b received type %v, want hello", got)
	}
	expectNothing(t, a)
}

func TestBroadcastIsPointInTimeSnapshot(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")

	h.JoinRoom(a, "s1")
	h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, "")

	// Draining a proves the broadcast has been processed.
	recvRaw(t, a)

	late := newTestClient(t, h, "b", "u2")
	h.JoinRoom(late, "s1")
	expectNothing(t, late)
}

func TestLeaveRoomRemovesMembership(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")
	b := newTestClient(t, h, "b", "u2")

	h.JoinRoom(a, "s1")
	h.JoinRoom(b, "s1")

	h.LeaveRoom(a, "s1")
	if h.InRoom(a, "s1") {
		t.Fatal("a still in room after LeaveRoom")
	}
	if h.RoomSize("s1") != 1 {
		t.Fatalf("RoomSize = %d, want 1", h.RoomSize("s1"))
	}

	h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, "")
	recvRaw(t, b)
	expectNothing(t, a)

	// Leaving twice is a no-op.
	h.LeaveRoom(a, "s1")
	if h.RoomSize("s1") != 1 {
		t.Fatalf("RoomSize = %d, want 1", h.RoomSize("s1"))
	}
}

func TestEmptyRoomIsDropped(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")

	h.JoinRoom(a, "s1")
	h.LeaveRoom(a, "s1")

	h.mu.RLock()
	_, exists := h.rooms["s1"]
	h.mu.RUnlock()
	if exists {
		t.Fatal("empty room must be removed from the index")
	}
}

func TestSendToRoomUser(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")
	b := newTestClient(t, h, "b", "u2")

	h.JoinRoom(a, "s1")
	h.JoinRoom(b, "s1")

	if err := h.SendToRoomUser("s1", "u2", map[string]string{"type": "direct"}); err != nil {
		t.Fatalf("SendToRoomUser returned error: %v", err)
	}

	if got := recvRaw(t, b)["type"]; got != "direct" {
		t.Errorf("b received type %v, want direct", got)
	}
	expectNothing(t, a)
}

func TestSlowClientEvictionIsSafe(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")
	b := newTestClient(t, h, "b", "u2")

	h.JoinRoom(a, "s1")
	h.JoinRoom(b, "s1")

	// Fill a's send buffer so the next broadcast evicts it.
	for i := 0; i < cap(a.Send); i++ {
		a.Send <- []byte(`{"type":"filler"}`)
	}

	h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, "")

	deadline := time.Now().Add(2 * time.Second)
	for h.RoomSize("s1") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for slow client eviction")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if h.InRoom(a, "s1") {
		t.Fatal("slow client still in room after eviction")
	}

	// The evicted client's read loop may still dispatch handlers; their
	// sends must be dropped, not panic on the closed channel.
	if err := a.SendMessage(map[string]string{"type": "error"}); err != nil {
		t.Fatalf("SendMessage after eviction returned error: %v", err)
	}

	// Room traffic keeps flowing for the remaining member.
	h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, "")
	recvRaw(t, b)
	recvRaw(t, b)
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "a", "u1")
	b := newTestClient(t, h, "b", "u2")

	h.JoinRoom(a, "s1")
	h.JoinRoom(b, "s1")

	h.Unregister(a)

	// The unregister is processed by the run loop; wait for it to land.
	deadline := time.Now().Add(2 * time.Second)
	for h.RoomSize("s1") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for unregister")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.BroadcastToRoom("s1", map[string]string{"type": "hello"}, "")
	recvRaw(t, b)
}
