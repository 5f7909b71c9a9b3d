// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fuxi-quant/fuxi-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen: transcript window, optional jump pill,
// status bar, and input line.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	var sections []string

	if m.session.Len() <= 1 && !m.session.Receiving {
		sections = append(sections, m.welcome.View())
	} else {
		sections = append(sections, m.renderTranscript())
	}

	if m.showJumpPill() {
		pill := components.RenderJumpPill(m.theme, m.jumpNew)
		sections = append(sections, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, pill))
	}

	sections = append(sections, m.statusBar.View())
	sections = append(sections, m.renderInput())

	return strings.Join(sections, "\n")
}

// renderTranscript renders only the rows the virtualizer says intersect
// the viewport, then slices the joined lines to the exact window.
func (m Model) renderTranscript() string {
	height := m.chatHeight()
	start, end := m.virt.Window(m.scrollTop, height)
	if start >= end {
		return strings.Repeat("\n", height-1)
	}

	// Rendered rows must occupy exactly their cached height or the line
	// math below drifts; heights come from the same renderer, so a
	// mismatch means a stale cache.
	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(i)...)
	}

	// The window starts OffsetOf(start) rows into the document; skip down
	// to the viewport's first visible line.
	skip := m.scrollTop - m.virt.OffsetOf(start)
	if skip < 0 {
		skip = 0
	}
	if skip > len(lines) {
		skip = len(lines)
	}
	lines = lines[skip:]
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// renderInput renders the input line, with a spinner prefix while a reply
// is streaming.
func (m Model) renderInput() string {
	if m.session.Receiving {
		return m.spinner.View(m.theme) + " " + m.input.View()
	}
	return m.input.View()
}
