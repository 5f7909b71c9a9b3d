// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StreamState describes the sidecar stream for the status bar.
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamReceiving
	StreamFailed
)

// StatusBar is the single-line footer: stream state on the left, backlog
// gauge in the middle while receiving, shortcut hints on the right.
type StatusBar struct {
	theme *styles.Theme
	width int

	state        StreamState
	backlog      int
	maxBacklog   int
	messageCount int
	prompt       string
	notice       string
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		theme: theme,
		width: 80,
	}
}

// SetWidth updates the bar width.
func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetState updates the stream state. A state change supersedes any
// transient notice, and the prompt preview only survives while receiving.
func (sb *StatusBar) SetState(state StreamState) {
	sb.state = state
	sb.notice = ""
	if state != StreamReceiving {
		sb.prompt = ""
	}
}

// SetPrompt sets a short preview of the in-flight question, shown next to
// the receiving indicator.
func (sb *StatusBar) SetPrompt(preview string) {
	sb.prompt = preview
}

// SetNotice sets a transient idle-state message, e.g. a failed backend
// session drop. Cleared on the next state change.
func (sb *StatusBar) SetNotice(text string) {
	sb.notice = text
}

// SetBacklog updates the pending-character gauge. maxBacklog is the
// coalescing bound, used to scale the gauge.
func (sb *StatusBar) SetBacklog(backlog, maxBacklog int) {
	sb.backlog = backlog
	sb.maxBacklog = maxBacklog
}

// SetMessageCount updates the transcript size display.
func (sb *StatusBar) SetMessageCount(n int) {
	sb.messageCount = n
}

// View renders the status bar.
func (sb *StatusBar) View() string {
	left := sb.renderState()
	right := sb.renderShortcuts()
	middle := sb.renderBacklog()

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	middleWidth := lipgloss.Width(middle)

	gap := sb.width - leftWidth - rightWidth - middleWidth - 2
	if gap < 0 {
		// Too narrow: drop the middle section first, then shortcuts.
		middle = ""
		gap = sb.width - leftWidth - rightWidth - 2
		if gap < 0 {
			right = ""
			gap = 0
		}
	}

	leftGap := gap / 2
	line := left + strings.Repeat(" ", leftGap) + middle +
		strings.Repeat(" ", gap-leftGap) + right

	return sb.theme.StatusBar.Width(sb.width).Render(line)
}

// renderState renders the stream state indicator.
func (sb *StatusBar) renderState() string {
	switch sb.state {
	case StreamReceiving:
		label := " receiving"
		if sb.prompt != "" {
			label += " | " + sb.prompt
		}
		return sb.theme.StreamActive.Render(styles.StatusIndicators.Active + label)
	case StreamFailed:
		return sb.theme.StreamError.Render(styles.StatusIndicators.Error + " error")
	default:
		if sb.notice != "" {
			return sb.theme.StreamError.Render(styles.StatusIndicators.Error + " " + sb.notice)
		}
		label := "ready"
		if sb.messageCount > 0 {
			label = fmt.Sprintf("ready | %d messages", sb.messageCount)
		}
		return sb.theme.StreamIdle.Render(label)
	}
}

// renderBacklog renders the pending-character gauge while receiving.
func (sb *StatusBar) renderBacklog() string {
	if sb.state != StreamReceiving || sb.maxBacklog <= 0 || sb.backlog <= 0 {
		return ""
	}

	percent := float64(sb.backlog) / float64(sb.maxBacklog) * 100
	gauge := styles.RenderProgressBar(8, percent)
	return sb.theme.StreamIdle.Render(fmt.Sprintf("buf %s", gauge))
}

// renderShortcuts renders the key hints for the current state.
func (sb *StatusBar) renderShortcuts() string {
	type hint struct{ key, desc string }

	var hints []hint
	if sb.state == StreamReceiving {
		hints = []hint{
			{"ctrl+c", "quit"},
		}
	} else {
		hints = []hint{
			{"enter", "send"},
			{"tab", "fold"},
			{"ctrl+l", "clear"},
			{"ctrl+c", "quit"},
		}
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts,
			sb.theme.ShortcutKey.Render(h.key)+" "+sb.theme.ShortcutDesc.Render(h.desc))
	}

	out := strings.Join(parts, "  ")

	// Trim hints from the right when the bar is narrow.
	for len(parts) > 1 && runewidth.StringWidth(out) > sb.width/2 {
		parts = parts[:len(parts)-1]
		out = strings.Join(parts, "  ")
	}

	return out
}
