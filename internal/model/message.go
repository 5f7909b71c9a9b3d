// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fuxi-quant/fuxi-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "FuxiQuant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session.
//
// Content is append-only while IsTyping is set; once a message is finalized
// it never changes again. Role is immutable after creation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Typing state. At most one message in a session is typing at a time.
	// PERFORMANCE: strings.Builder avoids quadratic allocations while the
	// drain scheduler appends revealed characters.
	IsTyping    bool            `json:"-"`
	typeContent strings.Builder `json:"-"`

	// Reasoning presentation state. ThinkingAutoCollapsed latches so the
	// automatic collapse on segment completion fires exactly once; after
	// that the fold is under user control.
	ThinkingCollapsed     bool `json:"-"`
	ThinkingAutoCollapsed bool `json:"-"`
	ThinkingFollowBottom  bool `json:"-"`
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an empty assistant placeholder in typing state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:                   "msg_" + uuid.NewString(),
		Role:                 RoleAssistant,
		Timestamp:            time.Now(),
		IsTyping:             true,
		ThinkingFollowBottom: true,
	}
}

// NewGreetingMessage creates the canonical greeting shown in a fresh session.
func NewGreetingMessage() *Message {
	return &Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      RoleAssistant,
		Content:   "Hi! I'm the FuxiQuant assistant. Ask me anything about your strategies and data.",
		Timestamp: time.Now(),
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Append appends revealed text to a typing message.
// No-op on finalized messages; Content is immutable once typing ends.
func (m *Message) Append(text string) {
	if m.IsTyping {
		m.typeContent.WriteString(text)
	}
}

// Finalize completes typing and freezes the content.
func (m *Message) Finalize() {
	if !m.IsTyping {
		return
	}
	m.Content = m.typeContent.String()
	m.typeContent.Reset()
	m.IsTyping = false
}

// DisplayContent returns the content to display (typing or final).
func (m *Message) DisplayContent() string {
	if m.IsTyping {
		return m.typeContent.String()
	}
	return m.Content
}

// ContentLen returns the current content length in bytes.
func (m *Message) ContentLen() int {
	if m.IsTyping {
		return m.typeContent.Len()
	}
	return len(m.Content)
}

// AutoCollapseThinking collapses the reasoning fold on segment completion.
// Latches so repeated calls after the first have no effect, leaving the fold
// under user control.
func (m *Message) AutoCollapseThinking() {
	if m.ThinkingAutoCollapsed {
		return
	}
	m.ThinkingCollapsed = true
	m.ThinkingAutoCollapsed = true
	m.ThinkingFollowBottom = false
}

// ToggleThinking flips the reasoning fold.
func (m *Message) ToggleThinking() {
	m.ThinkingCollapsed = !m.ThinkingCollapsed
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.DisplayContent(), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.typeContent.Len() == 0
}
