// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the fuxi-tui chat.
package components

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// CONTENT WRAPPING WITH RUNEWIDTH SUPPORT
// =============================================================================

// WrapContent wraps content to fit within the specified width, using
// go-runewidth for proper Unicode and wide character handling. Asian
// characters and emojis count as two cells.
func WrapContent(content string, width int) string {
	if width <= 0 {
		return content
	}

	var wrapped strings.Builder
	for i, line := range strings.Split(content, "\n") {
		if i > 0 {
			wrapped.WriteByte('\n')
		}

		if runewidth.StringWidth(line) <= width {
			wrapped.WriteString(line)
			continue
		}

		wrapped.WriteString(wordWrap(line, width))
	}

	return wrapped.String()
}

// wordWrap wraps a single line to the specified width, breaking at word
// boundaries when possible and mid-word only when a word exceeds the width.
func wordWrap(line string, width int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}

	var result strings.Builder
	lineWidth := 0

	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		// Hard-break words wider than the wrap width.
		if wordWidth > width {
			if lineWidth > 0 {
				result.WriteByte('\n')
				lineWidth = 0
			}
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if lineWidth+rw > width {
					result.WriteByte('\n')
					lineWidth = 0
				}
				result.WriteRune(r)
				lineWidth += rw
			}
			continue
		}

		switch {
		case lineWidth == 0:
			result.WriteString(word)
			lineWidth = wordWidth
		case lineWidth+1+wordWidth <= width:
			result.WriteByte(' ')
			result.WriteString(word)
			lineWidth += 1 + wordWidth
		default:
			result.WriteByte('\n')
			result.WriteString(word)
			lineWidth = wordWidth
		}
	}

	return result.String()
}

// LineCount returns the number of terminal rows the content occupies after
// wrapping to the given width.
func LineCount(content string, width int) int {
	if content == "" {
		return 1
	}
	return strings.Count(WrapContent(content, width), "\n") + 1
}

// MaxLineWidth returns the display width of the widest line.
func MaxLineWidth(content string) int {
	max := 0
	for _, line := range strings.Split(content, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}
