package service

import (
	"context"

	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/internal/hub"
)

// SessionService drives the real-time session layer: room membership, chat
// relay, reaction relay, typing relay, and WebRTC signal forwarding. Every
// Handle method is invoked from the connection's read loop; failures are
// reported to the originating client as error events and never propagate
// to other sessions.
type SessionService interface {
	HandleJoinStream(ctx context.Context, client *hub.Client, streamID string) error
	HandleLeaveStream(ctx context.Context, client *hub.Client) error
	HandleChatMessage(ctx context.Context, client *hub.Client, content string) error
	HandleTyping(ctx context.Context, client *hub.Client, streamID string, isTyping bool) error
	HandleReaction(ctx context.Context, client *hub.Client, messageID, reaction string) error
	HandleSignal(ctx context.Context, client *hub.Client, signal *domain.SignalMessage) error
	HandleStreamEvent(ctx context.Context, client *hub.Client, event *domain.StreamEventMessage) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error
	GetHistory(ctx context.Context, streamID, beforeID string, limit int) (*domain.ChatHistoryPage, error)
	Start(ctx context.Context) error
	Stop() error
}
