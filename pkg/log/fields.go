package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Session layer
	FieldClientID  = "client_id"
	FieldStreamID  = "stream_id"
	FieldMessageID = "message_id"

	// Service
	FieldService = "service"
)
