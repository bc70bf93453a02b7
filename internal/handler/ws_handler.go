package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Eprince-hub/live-chat/internal/auth"
	"github.com/Eprince-hub/live-chat/internal/config"
	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/internal/hub"
	"github.com/Eprince-hub/live-chat/internal/service"
	"github.com/Eprince-hub/live-chat/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades connections and dispatches their messages. The bearer
// token is verified before the upgrade, so an unauthenticated client never
// gets a session at all.
type WSHandler struct {
	hub      *hub.Hub
	service  service.SessionService
	verifier *auth.Verifier
	wsCfg    config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.SessionService, verifier *auth.Verifier, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:      h,
		service:  svc,
		verifier: verifier,
		wsCfg:    wsCfg,
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	identity, err := h.verifier.Verify(bearerToken(c))
	if err != nil {
		// One generic refusal for every failure mode.
		c.JSON(http.StatusUnauthorized, domain.APIResponse{
			Success: false,
			Error:   "authentication failed",
		})
		return
	}

	c.Set(log.FieldUserID, identity.UserID)
	c.Set(log.FieldUsername, identity.Username)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	client.Session.Authenticate(identity.UserID, identity.Username, identity.Email)

	h.hub.Register(client)

	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldUserID, identity.UserID).Msg("client connected")

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleDisconnect)
}

// bearerToken reads the credential from the token query parameter or the
// Authorization header.
func bearerToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := context.Background()
	l := log.L()

	switch base.Type {
	case domain.MsgTypeJoinStream:
		var msg domain.JoinStreamMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join_stream message"))
			return
		}
		if err := h.service.HandleJoinStream(ctx, client, msg.StreamID); err != nil {
			l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("join stream failed")
		}

	case domain.MsgTypeLeaveStream:
		if err := h.service.HandleLeaveStream(ctx, client); err != nil {
			l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("leave stream failed")
		}

	case domain.MsgTypeChatMessage:
		var msg domain.ChatMessageIn
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid chat_message"))
			return
		}
		if err := h.service.HandleChatMessage(ctx, client, msg.Content); err != nil {
			l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("chat message failed")
		}

	case domain.MsgTypeTyping:
		var msg domain.TypingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid typing message"))
			return
		}
		h.service.HandleTyping(ctx, client, msg.StreamID, msg.IsTyping)

	case domain.MsgTypeReaction:
		var msg domain.ReactionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid reaction message"))
			return
		}
		if err := h.service.HandleReaction(ctx, client, msg.MessageID, msg.Reaction); err != nil {
			l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("reaction failed")
		}

	case domain.MsgTypeSignal:
		var msg domain.SignalMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			// Malformed envelopes are dropped; signaling is best-effort.
			return
		}
		h.service.HandleSignal(ctx, client, &msg)

	case domain.MsgTypeStreamEvent:
		var msg domain.StreamEventMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid stream_event message"))
			return
		}
		h.service.HandleStreamEvent(ctx, client, &msg)

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

func (h *WSHandler) handleDisconnect(client *hub.Client) {
	if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("disconnect cleanup failed")
	}
	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Msg("client disconnected")
}
