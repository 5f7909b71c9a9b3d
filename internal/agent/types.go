// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

// =============================================================================
// WIRE TYPES
// =============================================================================

// EventType tags events on the chat stream.
type EventType string

const (
	// EventToken carries a chunk of generated text.
	EventToken EventType = "token"
	// EventDone terminates a successful stream.
	EventDone EventType = "done"
	// EventError terminates a failed stream; Data holds the reason.
	EventError EventType = "error"
)

// StreamEvent is a single event on the chat stream, decoded from one NDJSON
// line. Token events arrive in generation order; the stream ends with exactly
// one done or error event.
type StreamEvent struct {
	Type EventType `json:"type"`
	Data string    `json:"data,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	MaxTokens int    `json:"max_tokens,omitempty"`
	Stream    bool   `json:"stream"`
}

// CreateSessionRequest is the request body for POST /api/sessions.
type CreateSessionRequest struct {
	SessionID string `json:"session_id"`
}

// SidecarError is the JSON error body returned on non-2xx responses.
type SidecarError struct {
	Error string `json:"error"`
}
