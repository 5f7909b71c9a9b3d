// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages kept in session history.
// When a new turn would exceed it, the oldest messages are evicted so the
// most recent MaxMessages-2 plus the new turn's pair remain.
const MaxMessages = 100

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds the message history of one chat session together with the
// streaming bookkeeping that ties events to the turn they belong to.
//
// A Session is explicitly owned: it is created once and passed by pointer to
// every component that needs it. It is not safe for concurrent use; all
// mutation happens on the update loop.
type Session struct {
	// Identity
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages in send order.
	Messages []*Message `json:"messages"`

	// Receiving is set while a stream is open for the current turn and
	// cleared on Done/Error. The drain scheduler keeps ticking while either
	// the pending buffer is non-empty or Receiving is set.
	Receiving bool `json:"-"`

	// generation tags the currently open stream. Clear and Reset bump it so
	// events from a superseded stream are recognized and dropped.
	generation uint64
}

// NewSession creates a session seeded with the canonical greeting.
func NewSession() *Session {
	return &Session{
		ID:        "sess_" + uuid.NewString(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  []*Message{NewGreetingMessage()},
	}
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// BeginTurn appends a user message and an empty assistant placeholder for
// the reply, evicting oldest history first if the pair would exceed
// MaxMessages. Eviction happens only here, at turn start, so the
// currently-typing message can never be evicted mid-turn.
//
// Returns the assistant placeholder the drain scheduler will append into.
func (s *Session) BeginTurn(userText string) *Message {
	if len(s.Messages)+2 > MaxMessages {
		keep := MaxMessages - 2
		if keep < 0 {
			keep = 0
		}
		s.Messages = s.Messages[len(s.Messages)-keep:]
	}

	user := NewUserMessage(userText)
	reply := NewAssistantMessage()
	s.Messages = append(s.Messages, user, reply)
	s.UpdatedAt = time.Now()
	return reply
}

// Typing returns the currently typing message, or nil if the session is idle.
// The typing message is always the last one; typing never outlives a turn.
func (s *Session) Typing() *Message {
	last := s.Last()
	if last != nil && last.IsTyping {
		return last
	}
	return nil
}

// AppendToTyping appends revealed text to the typing message.
// Only the drain scheduler calls this.
func (s *Session) AppendToTyping(text string) {
	if typing := s.Typing(); typing != nil {
		typing.Append(text)
		s.UpdatedAt = time.Now()
	}
}

// FinalizeTyping ends the current turn's typing state.
func (s *Session) FinalizeTyping() {
	if typing := s.Typing(); typing != nil {
		typing.Finalize()
		s.UpdatedAt = time.Now()
	}
}

// =============================================================================
// STREAM GENERATIONS
// =============================================================================

// NextGeneration advances and returns the stream generation for a new turn.
func (s *Session) NextGeneration() uint64 {
	s.generation++
	return s.generation
}

// Generation returns the tag of the currently live stream.
func (s *Session) Generation() uint64 {
	return s.generation
}

// IsStale reports whether an event generation belongs to a superseded stream.
func (s *Session) IsStale(gen uint64) bool {
	return gen != s.generation
}

// =============================================================================
// QUERIES
// =============================================================================

// Last returns the most recent message, or nil if empty.
func (s *Session) Last() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// Len returns the number of messages.
func (s *Session) Len() int {
	return len(s.Messages)
}

// IsEmpty returns true when only the greeting (or nothing) is present.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) <= 1
}

// Snapshot returns a read-only view of the history for presentation.
// The slice is copied; the messages themselves are shared.
func (s *Session) Snapshot() []*Message {
	out := make([]*Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear resets the session to the canonical greeting and bumps the stream
// generation so in-flight events from the old stream are dropped. The
// backend-side session drop is the caller's responsibility (best-effort).
func (s *Session) Clear() {
	s.Messages = []*Message{NewGreetingMessage()}
	s.Receiving = false
	s.generation++
	s.UpdatedAt = time.Now()
}
