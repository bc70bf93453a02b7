package domain

import "time"

// ChatMessage is a persisted chat entry. Immutable after creation except
// for reaction accumulation.
type ChatMessage struct {
	ID        string     `json:"message_id"`
	StreamID  string     `json:"stream_id"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Reactions []Reaction `json:"reactions"`
}

// Reaction is an append-only record. A user may react to the same message
// with the same symbol more than once; clients aggregate.
type Reaction struct {
	ID        string    `json:"reaction_id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// Stream is the read-only view of a stream record owned by the API service.
type Stream struct {
	ID       string `json:"id"`
	SellerID string `json:"seller_id"`
	Title    string `json:"title"`
	IsLive   bool   `json:"is_live"`
}

// ChatHistoryPage is one page of history, chronological within the page.
// NextCursor is the id to pass as before_id for the next older page.
type ChatHistoryPage struct {
	Messages   []ChatMessage `json:"messages"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
