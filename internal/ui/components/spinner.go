// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is the loading indicator shown while the sidecar is working.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool
	showTimer bool
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}

	return Spinner{
		spinner:   s,
		message:   "Working",
		showTimer: true,
	}
}

// NewThinkingSpinner creates the spinner shown while a reply streams.
func NewThinkingSpinner() Spinner {
	s := NewSpinner()
	s.spinner.Spinner = spinner.Spinner{
		Frames: styles.DotsSpinner.Frames,
		FPS:    styles.DotsSpinner.Duration(),
	}
	s.message = "Thinking"
	return s
}

// NewConnectingSpinner creates the spinner shown while waiting for the
// sidecar to come up.
func NewConnectingSpinner() Spinner {
	s := NewSpinner()
	s.spinner.Spinner = spinner.Spinner{
		Frames: styles.PulseSpinner.Frames,
		FPS:    styles.PulseSpinner.Duration(),
	}
	s.message = "Connecting to sidecar"
	s.showTimer = false
	return s
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start activates the spinner and resets its timer.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// SetMessage updates the spinner label.
func (s *Spinner) SetMessage(message string) {
	s.message = message
}

// Elapsed returns the time since the spinner started.
func (s *Spinner) Elapsed() time.Duration {
	if !s.isActive {
		return 0
	}
	return time.Since(s.startTime)
}

// Update advances the spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner with its message and elapsed time.
func (s Spinner) View(theme *styles.Theme) string {
	if !s.isActive {
		return ""
	}

	out := theme.Spinner.Render(s.spinner.View()) + " " +
		theme.ThinkingText.Render(s.message)

	if s.showTimer {
		elapsed := time.Since(s.startTime).Round(time.Second)
		out += " " + theme.Timestamp.Render(fmt.Sprintf("(%s)", elapsed))
	}

	return out
}
