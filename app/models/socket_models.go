package models

// IdentifyRequest binds a socket to the user behind the bearer token
type IdentifyRequest struct {
	Token string `json:"token"`
}

// IdentifyResponse acknowledges a successful identify
type IdentifyResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"user_id"`
	SocketID  string `json:"socket_id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

// ConnectionError represents a socket-level error sent to the client
type ConnectionError struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorType string `json:"error_type"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	SocketID  string `json:"socket_id"`
	Event     string `json:"event"`
}

// Error codes
const (
	ErrorCodeMissingField  = "MISSING_FIELD"
	ErrorCodeInvalidFormat = "INVALID_FORMAT"
	ErrorCodeInvalidToken  = "INVALID_TOKEN"
)

// Error types
const (
	ErrorTypeField          = "FIELD_ERROR"
	ErrorTypeFormat         = "FORMAT_ERROR"
	ErrorTypeAuthentication = "AUTHENTICATION_ERROR"
)
