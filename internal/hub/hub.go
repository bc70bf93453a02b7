package hub

import (
	"encoding/json"
	"sync"

	"github.com/Eprince-hub/live-chat/internal/config"
	"github.com/Eprince-hub/live-chat/pkg/log"
)

// Hub owns the connection table and the stream-room index. Rooms exist
// implicitly: a room is created when its first member joins and dropped
// when the last member leaves. Membership is mutated only through
// JoinRoom/LeaveRoom/unregister, keeping the room index and each session's
// current-stream field consistent.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // streamID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// RoomMessage is a fan-out request for one room. Delivery targets the
// membership at processing time; later joiners are unaffected.
type RoomMessage struct {
	StreamID string
	Message  []byte
	Exclude  string // Client ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomMessage, 256),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for streamID, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, streamID)
					}
				}
				delete(h.clients, client.ID)
				client.closeSend()
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.StreamID]; ok {
				for clientID, client := range members {
					if clientID == msg.Exclude {
						continue
					}
					if !client.trySend(msg.Message) {
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom adds the client to a stream room, creating the room on first
// join. Joining the same room twice is a no-op.
func (h *Hub) JoinRoom(client *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[streamID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[streamID] = members
	}
	members[client.ID] = client
	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldStreamID, streamID).Msg("client joined stream room")
}

// LeaveRoom removes the client from a stream room; the room is dropped
// when it becomes empty. Idempotent.
func (h *Hub) LeaveRoom(client *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[streamID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, streamID)
		}
	}
	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldStreamID, streamID).Msg("client left stream room")
}

// BroadcastToRoom sends a message to every current member of a room,
// optionally excluding one client id. Pass exclude "" to reach everyone.
func (h *Hub) BroadcastToRoom(streamID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &RoomMessage{
		StreamID: streamID,
		Message:  data,
		Exclude:  exclude,
	}
	return nil
}

// SendToRoomUser delivers a message to the room members authenticated as
// userID. Used for unicast signaling.
func (h *Hub) SendToRoomUser(streamID, userID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[streamID]; ok {
		for _, client := range members {
			if client.Session.GetUserID() != userID {
				continue
			}
			if !client.trySend(data) {
				go h.removeClient(client)
			}
		}
	}
	return nil
}

// RoomSize reports the current number of members in a room.
func (h *Hub) RoomSize(streamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[streamID]; ok {
		return len(members)
	}
	return 0
}

// InRoom reports whether the client is currently a member of the room.
func (h *Hub) InRoom(client *Client, streamID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[streamID]
	if !ok {
		return false
	}
	_, ok = members[client.ID]
	return ok
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
