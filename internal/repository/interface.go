package repository

import (
	"context"
	"errors"

	"github.com/Eprince-hub/live-chat/internal/domain"
)

var (
	ErrStreamNotFound  = errors.New("stream not found")
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRepository is the durable chat store. Create assigns the message
// id and timestamp; ids are time-ordered, so paginating by id is
// paginating by time.
type MessageRepository interface {
	// Create persists the message and fills in ID and CreatedAt.
	Create(ctx context.Context, msg *domain.ChatMessage) error
	// ListByStream returns up to limit messages newest-first, strictly
	// older than beforeID when it is set, each with its reactions. The
	// second result reports whether older messages remain.
	ListByStream(ctx context.Context, streamID, beforeID string, limit int) ([]domain.ChatMessage, bool, error)
	// AppendReaction persists a reaction and fills in ID and CreatedAt.
	// Returns ErrMessageNotFound if the target message does not exist.
	AppendReaction(ctx context.Context, reaction *domain.Reaction) error
}

// StreamRepository looks up stream records owned by the API service.
type StreamRepository interface {
	// GetByID returns ErrStreamNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*domain.Stream, error)
}
