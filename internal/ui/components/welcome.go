// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// fuxiLogo is the ASCII banner shown before the first message.
const fuxiLogo = `
  ___  _   _  _  _  _
 | __|| | | || || |(_)
 | _| | |_| | \  / | |
 |_|   \___/  /_\_\|_|
`

// Welcome renders the startup screen with version and sidecar status.
type Welcome struct {
	theme   *styles.Theme
	version string
	width   int
	height  int

	sidecarOK bool
}

// NewWelcome creates a welcome screen.
func NewWelcome(theme *styles.Theme, version string) *Welcome {
	return &Welcome{
		theme:   theme,
		version: version,
		width:   80,
		height:  24,
	}
}

// SetSize updates dimensions for centering.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// SetSidecarStatus records whether the sidecar responded to the health check.
func (w *Welcome) SetSidecarStatus(ok bool) {
	w.sidecarOK = ok
}

// View renders the welcome box centered in the available space.
func (w *Welcome) View() string {
	logo := w.theme.WelcomeLogo.Render(strings.TrimPrefix(fuxiLogo, "\n"))
	version := w.theme.WelcomeVersion.Render("fuxi-tui " + w.version)

	status := styles.RenderSuccess("sidecar connected")
	if !w.sidecarOK {
		status = styles.RenderWarning("sidecar offline - start it and press enter")
	}

	info := w.theme.WelcomeInfo.Render("Type a message and press enter to chat.")

	box := w.theme.WelcomeBox.Render(
		lipgloss.JoinVertical(lipgloss.Center, logo, version, "", status, "", info))

	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, box)
}
