package handler

import "time"

// Response is the uniform JSON envelope for all API responses.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   string `json:"details,omitempty"`
}

// NewResponse creates a success envelope wrapping data.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error envelope.
func NewErrorResponse(requestID, code, message, details string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// CreateSessionRequest is the body of POST /v1/sessions.
type CreateSessionRequest struct {
	Attributes     map[string]any `json:"attributes,omitempty"`
	MaxIdleSeconds int64          `json:"max_idle_seconds,omitempty"`
}

// SetAttributeRequest is the body of PUT /v1/sessions/{id}/attributes/{key}.
type SetAttributeRequest struct {
	Value any `json:"value"`
}

// RevokeResponse reports the outcome of a session revocation.
type RevokeResponse struct {
	SessionID string `json:"session_id"`
	Revoked   bool   `json:"revoked"`
}

// TouchResponse reports the refreshed access time after a keep-alive.
type TouchResponse struct {
	SessionID      string    `json:"session_id"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// RekeyResponse reports an identifier rotation.
type RekeyResponse struct {
	OldSessionID string `json:"old_session_id"`
	Session      any    `json:"session"`
}

// HealthResponse is returned by the health probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
