package domain

import "time"

// ChatMessageModel is the GORM model for the chat_messages table.
type ChatMessageModel struct {
	ID        string          `gorm:"type:varchar(26);primaryKey"`
	StreamID  string          `gorm:"type:varchar(36);index:idx_stream_message,priority:1;not null"`
	UserID    string          `gorm:"type:varchar(36);index;not null"`
	Username  string          `gorm:"type:varchar(50);not null"`
	Content   string          `gorm:"type:text;not null"`
	CreatedAt time.Time       `gorm:"not null"`
	Reactions []ReactionModel `gorm:"foreignKey:MessageID"`
}

func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ReactionModel is the GORM model for the message_reactions table.
// Append-only: rows are never updated or deleted by the gateway.
type ReactionModel struct {
	ID        string    `gorm:"type:varchar(26);primaryKey"`
	MessageID string    `gorm:"type:varchar(26);index;not null"`
	UserID    string    `gorm:"type:varchar(36);not null"`
	Username  string    `gorm:"type:varchar(50);not null"`
	Reaction  string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ReactionModel) TableName() string {
	return "message_reactions"
}

// StreamModel maps the streams table owned by the API service. The gateway
// only ever reads it; the schema is migrated elsewhere.
type StreamModel struct {
	ID     string `gorm:"type:varchar(36);primaryKey"`
	UserID string `gorm:"type:varchar(36)"`
	Title  string `gorm:"type:varchar(200)"`
	IsLive bool
}

func (StreamModel) TableName() string {
	return "streams"
}

// ToDomain converts ChatMessageModel to a domain ChatMessage.
func (m *ChatMessageModel) ToDomain() *ChatMessage {
	reactions := make([]Reaction, len(m.Reactions))
	for i := range m.Reactions {
		reactions[i] = *m.Reactions[i].ToDomain()
	}
	return &ChatMessage{
		ID:        m.ID,
		StreamID:  m.StreamID,
		UserID:    m.UserID,
		Username:  m.Username,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Reactions: reactions,
	}
}

// ChatMessageToModel converts a domain ChatMessage to its GORM model.
func ChatMessageToModel(msg *ChatMessage) *ChatMessageModel {
	return &ChatMessageModel{
		ID:        msg.ID,
		StreamID:  msg.StreamID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// ToDomain converts ReactionModel to a domain Reaction.
func (m *ReactionModel) ToDomain() *Reaction {
	return &Reaction{
		ID:        m.ID,
		MessageID: m.MessageID,
		UserID:    m.UserID,
		Username:  m.Username,
		Reaction:  m.Reaction,
		CreatedAt: m.CreatedAt,
	}
}

// ReactionToModel converts a domain Reaction to its GORM model.
func ReactionToModel(r *Reaction) *ReactionModel {
	return &ReactionModel{
		ID:        r.ID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Username:  r.Username,
		Reaction:  r.Reaction,
		CreatedAt: r.CreatedAt,
	}
}

// ToDomain converts StreamModel to a domain Stream.
func (m *StreamModel) ToDomain() *Stream {
	return &Stream{
		ID:       m.ID,
		SellerID: m.UserID,
		Title:    m.Title,
		IsLive:   m.IsLive,
	}
}
