package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Eprince-hub/live-chat/internal/cache"
	"github.com/Eprince-hub/live-chat/internal/config"
	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/internal/hub"
	"github.com/Eprince-hub/live-chat/internal/registry"
	"github.com/Eprince-hub/live-chat/internal/repository"
	"github.com/Eprince-hub/live-chat/pkg/log"
)

type sessionService struct {
	hub      *hub.Hub
	messages repository.MessageRepository
	streams  repository.StreamRepository
	cache    cache.HistoryCache
	presence registry.Presence
	history  config.HistoryConfig
	sf       singleflight.Group
}

func NewSessionService(
	h *hub.Hub,
	messages repository.MessageRepository,
	streams repository.StreamRepository,
	historyCache cache.HistoryCache,
	presence registry.Presence,
	historyCfg config.HistoryConfig,
) SessionService {
	return &sessionService{
		hub:      h,
		messages: messages,
		streams:  streams,
		cache:    historyCache,
		presence: presence,
		history:  historyCfg,
	}
}

// HandleJoinStream moves the session into the stream's room. A session is
// in at most one room: joining a different room leaves the old one first,
// and re-joining the current room only re-sends history, with no second
// user_joined going out.
func (s *sessionService) HandleJoinStream(ctx context.Context, c *hub.Client, streamID string) error {
	if !c.Session.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}

	stream, err := s.streams.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeRoomNotFound, "Stream not found"))
		}
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to join stream"))
	}

	if c.Session.GetCurrentStream() == streamID {
		return s.sendHistory(ctx, c, streamID)
	}

	if c.Session.IsInStream() {
		s.leaveInternal(ctx, c)
	}

	s.hub.JoinRoom(c, streamID)
	c.Session.JoinStream(streamID)

	if err := s.presence.Register(ctx, streamID, c.Session.GetUserID()); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to register presence")
	}

	l := log.Ctx(ctx)
	if stream.SellerID == c.Session.GetUserID() {
		l.Info().Str(log.FieldStreamID, streamID).Str(log.FieldUserID, c.Session.GetUserID()).Msg("broadcaster joined own stream")
	}

	if err := s.sendHistory(ctx, c, streamID); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to send chat history")
	}

	s.hub.BroadcastToRoom(streamID, &domain.UserJoinedMessage{
		Type:      domain.MsgTypeUserJoined,
		StreamID:  streamID,
		UserID:    c.Session.GetUserID(),
		Username:  c.Session.GetUsername(),
		Timestamp: time.Now().Unix(),
	}, c.ID)

	return nil
}

// HandleLeaveStream is idempotent: leaving with no current room does
// nothing.
func (s *sessionService) HandleLeaveStream(ctx context.Context, c *hub.Client) error {
	if !c.Session.IsInStream() {
		return nil
	}
	s.leaveInternal(ctx, c)
	return nil
}

// HandleChatMessage persists the message and then fans the stored record
// out to the whole room, the sender included, so every client renders the
// canonical id and timestamp.
func (s *sessionService) HandleChatMessage(ctx context.Context, c *hub.Client, content string) error {
	if !c.Session.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}

	streamID := c.Session.GetCurrentStream()
	if streamID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotInRoom, "Not in a stream"))
	}

	msg := &domain.ChatMessage{
		StreamID: streamID,
		UserID:   c.Session.GetUserID(),
		Username: c.Session.GetUsername(),
		Content:  content,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		// The sender must see an explicit failure, not silence.
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to send message"))
		return err
	}

	return s.hub.BroadcastToRoom(streamID, &domain.ChatMessageOut{
		Type:      domain.MsgTypeChatMessage,
		MessageID: msg.ID,
		StreamID:  msg.StreamID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt.Unix(),
	}, "")
}

// HandleTyping relays a typing indicator to the other members of the
// room. Fire and forget: no persistence, no acknowledgment.
func (s *sessionService) HandleTyping(ctx context.Context, c *hub.Client, streamID string, isTyping bool) error {
	if !c.Session.IsAuthenticated() {
		return nil
	}

	if c.Session.GetCurrentStream() == streamID {
		c.Session.SetTyping(isTyping)
	}

	return s.hub.BroadcastToRoom(streamID, &domain.TypingOut{
		Type:     domain.MsgTypeTyping,
		StreamID: streamID,
		UserID:   c.Session.GetUserID(),
		IsTyping: isTyping,
	}, c.ID)
}

// HandleReaction appends a reaction to a persisted message and broadcasts
// it to the sender's current room.
func (s *sessionService) HandleReaction(ctx context.Context, c *hub.Client, messageID, reactionSymbol string) error {
	if !c.Session.IsAuthenticated() {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "Not authenticated"))
	}

	streamID := c.Session.GetCurrentStream()
	if streamID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotInRoom, "Not in a stream"))
	}

	reaction := &domain.Reaction{
		MessageID: messageID,
		UserID:    c.Session.GetUserID(),
		Username:  c.Session.GetUsername(),
		Reaction:  reactionSymbol,
	}

	if err := s.messages.AppendReaction(ctx, reaction); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeMessageNotFound, "Message not found"))
		}
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to send reaction"))
		return err
	}

	return s.hub.BroadcastToRoom(streamID, &domain.MessageReactionOut{
		Type:      domain.MsgTypeMessageReaction,
		MessageID: reaction.MessageID,
		StreamID:  streamID,
		UserID:    reaction.UserID,
		Username:  reaction.Username,
		Reaction:  reaction.Reaction,
		Timestamp: reaction.CreatedAt.Unix(),
	}, "")
}

// HandleSignal forwards an opaque WebRTC envelope to the rest of the room,
// or to one member when target_user_id is set. Signaling is best-effort:
// a sender outside the target room is dropped without an error event.
func (s *sessionService) HandleSignal(ctx context.Context, c *hub.Client, signal *domain.SignalMessage) error {
	if !c.Session.IsAuthenticated() {
		return nil
	}

	if c.Session.GetCurrentStream() != signal.StreamID {
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldClientID, c.ID).Str(log.FieldStreamID, signal.StreamID).Msg("signal from non-member dropped")
		return nil
	}

	userID := c.Session.GetUserID()

	var out interface{}
	switch {
	case signal.Offer != nil:
		out = &domain.OfferOut{
			Type:     domain.MsgTypeOffer,
			StreamID: signal.StreamID,
			UserID:   userID,
			Offer:    signal.Offer,
		}
	case signal.Answer != nil:
		out = &domain.AnswerOut{
			Type:     domain.MsgTypeAnswer,
			StreamID: signal.StreamID,
			UserID:   userID,
			Answer:   signal.Answer,
		}
	case signal.Candidate != nil:
		out = &domain.ICECandidateOut{
			Type:      domain.MsgTypeICECandidate,
			StreamID:  signal.StreamID,
			UserID:    userID,
			Candidate: signal.Candidate,
		}
	default:
		return nil
	}

	if signal.TargetUserID != "" {
		return s.hub.SendToRoomUser(signal.StreamID, signal.TargetUserID, out)
	}
	return s.hub.BroadcastToRoom(signal.StreamID, out, c.ID)
}

// HandleStreamEvent relays an opaque stream-level event to the whole room,
// the sender included, tagged with the sender's identity. Like signaling it
// is best-effort: senders outside the room are dropped silently.
func (s *sessionService) HandleStreamEvent(ctx context.Context, c *hub.Client, event *domain.StreamEventMessage) error {
	if !c.Session.IsAuthenticated() {
		return nil
	}

	if c.Session.GetCurrentStream() != event.StreamID {
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldClientID, c.ID).Str(log.FieldStreamID, event.StreamID).Msg("stream event from non-member dropped")
		return nil
	}

	return s.hub.BroadcastToRoom(event.StreamID, &domain.StreamEventOut{
		Type:     domain.MsgTypeStreamEvent,
		StreamID: event.StreamID,
		UserID:   c.Session.GetUserID(),
		Event:    event.Event,
	}, "")
}

// HandleDisconnect runs the same cleanup as an explicit leave. The read
// loop calls it for every close, normal or abnormal.
func (s *sessionService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	if !c.Session.IsInStream() {
		return nil
	}
	s.leaveInternal(ctx, c)
	return nil
}

func (s *sessionService) leaveInternal(ctx context.Context, c *hub.Client) {
	streamID := c.Session.GetCurrentStream()
	if streamID == "" {
		return
	}

	// Peers should not be left with a stuck typing indicator.
	if c.Session.IsTyping() {
		s.hub.BroadcastToRoom(streamID, &domain.TypingOut{
			Type:     domain.MsgTypeTyping,
			StreamID: streamID,
			UserID:   c.Session.GetUserID(),
			IsTyping: false,
		}, c.ID)
	}

	s.hub.LeaveRoom(c, streamID)
	c.Session.LeaveStream()

	s.hub.BroadcastToRoom(streamID, &domain.UserLeftMessage{
		Type:      domain.MsgTypeUserLeft,
		StreamID:  streamID,
		UserID:    c.Session.GetUserID(),
		Username:  c.Session.GetUsername(),
		Timestamp: time.Now().Unix(),
	}, c.ID)

	if err := s.presence.Deregister(ctx, streamID, c.Session.GetUserID()); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to deregister presence")
	}
}

// GetHistory returns one page of chat history, chronological within the
// page. The newest page always hits the store; cursor pages are cached
// behind singleflight since they never change.
func (s *sessionService) GetHistory(ctx context.Context, streamID, beforeID string, limit int) (*domain.ChatHistoryPage, error) {
	if limit < 1 {
		limit = s.history.PageSize
	}

	if beforeID == "" {
		return s.fetchPage(ctx, streamID, beforeID, limit)
	}

	key := s.cache.BuildKey(streamID, beforeID, limit)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.fetchPageCached(ctx, streamID, beforeID, limit, key)
	})
	if err != nil {
		return nil, err
	}

	page, ok := result.(*domain.ChatHistoryPage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return page, nil
}

func (s *sessionService) fetchPageCached(ctx context.Context, streamID, beforeID string, limit int, key string) (*domain.ChatHistoryPage, error) {
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("history cache get error")
	}

	page, err := s.fetchPage(ctx, streamID, beforeID, limit)
	if err != nil {
		return nil, err
	}

	// Write back without blocking the response.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, key, page, s.history.CacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("history cache set error")
		}
	}()

	return page, nil
}

func (s *sessionService) fetchPage(ctx context.Context, streamID, beforeID string, limit int) (*domain.ChatHistoryPage, error) {
	messages, hasMore, err := s.messages.ListByStream(ctx, streamID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	// The store returns newest-first; flip to chronological for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	page := &domain.ChatHistoryPage{
		Messages: messages,
		HasMore:  hasMore,
	}
	if hasMore && len(messages) > 0 {
		page.NextCursor = messages[0].ID
	}
	return page, nil
}

func (s *sessionService) sendHistory(ctx context.Context, c *hub.Client, streamID string) error {
	page, err := s.GetHistory(ctx, streamID, "", s.history.PageSize)
	if err != nil {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to load chat history"))
		return err
	}

	return c.SendMessage(&domain.ChatHistoryMessage{
		Type:     domain.MsgTypeChatHistory,
		StreamID: streamID,
		Messages: page.Messages,
	})
}

func (s *sessionService) Start(ctx context.Context) error {
	if err := s.presence.StartHeartbeat(ctx); err != nil {
		return fmt.Errorf("failed to start presence heartbeat: %w", err)
	}
	l := log.L()
	l.Info().Msg("session service started")
	return nil
}

func (s *sessionService) Stop() error {
	s.presence.StopHeartbeat()
	return nil
}
