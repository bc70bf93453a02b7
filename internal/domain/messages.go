package domain

import "encoding/json"

// WebSocket message types from client.
const (
	MsgTypeJoinStream  = "join_stream"
	MsgTypeLeaveStream = "leave_stream"
	MsgTypeChatMessage = "chat_message"
	MsgTypeTyping      = "typing"
	MsgTypeReaction    = "reaction"
	MsgTypeSignal      = "webrtc_signal"
	MsgTypeStreamEvent = "stream_event"
	MsgTypePing        = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeChatHistory     = "chat_history"
	MsgTypeMessageReaction = "message_reaction"
	MsgTypeUserJoined      = "user_joined"
	MsgTypeUserLeft        = "user_left"
	MsgTypeOffer           = "webrtc_offer"
	MsgTypeAnswer          = "webrtc_answer"
	MsgTypeICECandidate    = "webrtc_ice_candidate"
	MsgTypeError           = "error"
	MsgTypePong            = "pong"
)

// Error codes
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRoomNotFound    = "ROOM_NOT_FOUND"
	ErrCodeNotInRoom       = "NOT_IN_ROOM"
	ErrCodeMessageNotFound = "MESSAGE_NOT_FOUND"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type JoinStreamMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

type LeaveStreamMessage struct {
	Type string `json:"type"`
}

type ChatMessageIn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type TypingMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
	IsTyping bool   `json:"is_typing"`
}

type ReactionMessage struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	Reaction  string `json:"reaction"`
}

// StreamEventMessage carries an opaque stream-level event (stream started,
// product pinned, ...) that a room member wants fanned out. The gateway
// never inspects the payload.
type StreamEventMessage struct {
	Type     string          `json:"type"`
	StreamID string          `json:"stream_id"`
	Event    json.RawMessage `json:"event"`
}

// SignalMessage carries WebRTC negotiation payloads. Exactly one of Offer,
// Answer, or Candidate is set; the gateway never inspects their contents.
// TargetUserID optionally narrows delivery to a single room member.
type SignalMessage struct {
	Type         string          `json:"type"`
	StreamID     string          `json:"stream_id"`
	TargetUserID string          `json:"target_user_id,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// Server -> Client messages

type ChatHistoryMessage struct {
	Type     string        `json:"type"`
	StreamID string        `json:"stream_id"`
	Messages []ChatMessage `json:"messages"`
}

type ChatMessageOut struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	StreamID  string `json:"stream_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type MessageReactionOut struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	StreamID  string `json:"stream_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Reaction  string `json:"reaction"`
	Timestamp int64  `json:"timestamp"`
}

type TypingOut struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

type UserJoinedMessage struct {
	Type      string `json:"type"`
	StreamID  string `json:"stream_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

type UserLeftMessage struct {
	Type      string `json:"type"`
	StreamID  string `json:"stream_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// Signal fan-out messages carry the opaque payload plus the sender's
// identity so peers know who is negotiating.

type OfferOut struct {
	Type     string          `json:"type"`
	StreamID string          `json:"stream_id"`
	UserID   string          `json:"user_id"`
	Offer    json.RawMessage `json:"offer"`
}

type AnswerOut struct {
	Type     string          `json:"type"`
	StreamID string          `json:"stream_id"`
	UserID   string          `json:"user_id"`
	Answer   json.RawMessage `json:"answer"`
}

type ICECandidateOut struct {
	Type      string          `json:"type"`
	StreamID  string          `json:"stream_id"`
	UserID    string          `json:"user_id"`
	Candidate json.RawMessage `json:"candidate"`
}

type StreamEventOut struct {
	Type     string          `json:"type"`
	StreamID string          `json:"stream_id"`
	UserID   string          `json:"user_id"`
	Event    json.RawMessage `json:"event"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
