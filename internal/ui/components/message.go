// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/fuxi-quant/fuxi-tui/internal/model"
	"github.com/fuxi-quant/fuxi-tui/internal/thinking"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// reasoningTailLines is how many trailing reasoning lines stay visible while
// the reasoning section streams with follow-bottom active.
const reasoningTailLines = 4

// MessageView renders chat messages to styled terminal text. It owns a
// per-message parse cache so an unchanged message costs no rescan, and a
// markdown renderer for finalized replies.
type MessageView struct {
	theme       *styles.Theme
	markdown    *MarkdownRenderer
	syntaxTheme string
	width       int

	parsers map[string]*thinking.CachedParser
}

// NewMessageView creates a message renderer.
func NewMessageView(theme *styles.Theme, syntaxTheme string) *MessageView {
	return &MessageView{
		theme:       theme,
		markdown:    NewMarkdownRenderer(80),
		syntaxTheme: syntaxTheme,
		width:       80,
		parsers:     make(map[string]*thinking.CachedParser),
	}
}

// SetWidth updates the wrap width for subsequent renders.
func (v *MessageView) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	v.width = width
	v.markdown.SetWidth(width - 4)
}

// Width returns the current wrap width.
func (v *MessageView) Width() int {
	return v.width
}

// SetSyntaxTheme switches the chroma style used for streaming code blocks.
func (v *MessageView) SetSyntaxTheme(name string) {
	v.syntaxTheme = name
}

// ParseFor exposes the cached parse of a message's content so callers can
// inspect reasoning structure without re-scanning.
func (v *MessageView) ParseFor(msg *model.Message) thinking.Result {
	return v.parse(msg)
}

// Render renders one message to a multi-line string at the current width.
func (v *MessageView) Render(msg *model.Message) string {
	if msg == nil {
		return ""
	}

	switch msg.Role {
	case model.RoleUser:
		return v.renderUser(msg)
	case model.RoleAssistant:
		return v.renderAssistant(msg)
	default:
		return WrapContent(msg.DisplayContent(), v.width)
	}
}

// Forget drops cached parse state for a message that no longer exists.
func (v *MessageView) Forget(id string) {
	delete(v.parsers, id)
}

// Reset drops all cached parse state (used when the transcript is cleared).
func (v *MessageView) Reset() {
	v.parsers = make(map[string]*thinking.CachedParser)
}

// ==========================================================================
// USER MESSAGES
// ==========================================================================

func (v *MessageView) renderUser(msg *model.Message) string {
	header := v.theme.UserLabel.Render(msg.Role.DisplayName()) + " " +
		v.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	content := WrapContent(msg.DisplayContent(), v.width-4)
	body := v.theme.UserBubble.Render(content)

	return header + "\n" + body
}

// ==========================================================================
// ASSISTANT MESSAGES
// ==========================================================================

func (v *MessageView) renderAssistant(msg *model.Message) string {
	header := v.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " +
		v.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	parsed := v.parse(msg)

	var sections []string

	if parsed.HasReasoning {
		sections = append(sections, v.renderReasoning(msg, parsed))
	}

	if response := v.renderResponse(msg, parsed); response != "" {
		sections = append(sections, response)
	}

	if len(sections) == 0 {
		// Reply opened but nothing has arrived yet.
		sections = append(sections, v.theme.ThinkingText.Render("..."))
	}

	body := v.theme.AssistantBubble.Render(strings.Join(sections, "\n"))
	return header + "\n" + body
}

// renderReasoning renders the reasoning fold: a toggle header plus either
// the full body, a streaming tail, or nothing when collapsed.
func (v *MessageView) renderReasoning(msg *model.Message, parsed thinking.Result) string {
	reasoning := strings.TrimSpace(parsed.Reasoning)
	lines := strings.Split(WrapContent(reasoning, v.width-8), "\n")

	if msg.ThinkingCollapsed {
		header := v.theme.ReasoningCollapsed.Render(
			fmt.Sprintf("[+] thinking (%d lines)", len(lines)))
		return header
	}

	header := v.theme.ReasoningHeader.Render("[-] thinking")

	visible := lines
	if msg.IsTyping && !parsed.Complete && msg.ThinkingFollowBottom && len(lines) > reasoningTailLines {
		visible = lines[len(lines)-reasoningTailLines:]
	}

	body := v.theme.ReasoningBody.Render(strings.Join(visible, "\n"))
	return header + "\n" + body
}

// renderResponse renders the response section. Finalized replies go through
// glamour; streaming replies stay plain with chroma-highlighted code blocks.
func (v *MessageView) renderResponse(msg *model.Message, parsed thinking.Result) string {
	response := parsed.Response
	if response == "" && msg.IsTyping {
		return ""
	}

	if msg.IsTyping {
		rendered := RenderCodeBlocks(WrapContent(response, v.width-4), v.width-4, v.syntaxTheme)
		return rendered + v.theme.ThinkingText.Render("_")
	}

	rendered := v.markdown.Render(response)
	return strings.TrimRight(rendered, "\n")
}

// parse returns the cached parse of the message content.
func (v *MessageView) parse(msg *model.Message) thinking.Result {
	parser, ok := v.parsers[msg.ID]
	if !ok {
		parser = &thinking.CachedParser{}
		v.parsers[msg.ID] = parser
	}
	return parser.Parse(msg.DisplayContent())
}

// =============================================================================
// SCROLL AFFORDANCE
// =============================================================================

// RenderJumpPill renders the "jump to latest" affordance shown while the
// transcript is detached from the bottom.
func RenderJumpPill(theme *styles.Theme, newMessages int) string {
	label := "v latest"
	if newMessages > 0 {
		label = fmt.Sprintf("v latest (%d new)", newMessages)
	}
	return theme.JumpPill.Render(label)
}
