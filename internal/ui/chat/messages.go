// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types and commands used by the
// chat interface. Stream events carry the generation of the stream that
// produced them; events from a superseded generation (cleared mid-flight)
// are dropped on arrival.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamEventMsg delivers one sidecar event to the update loop. Source is
// the channel that produced the event, so a stale event re-listens on its
// own superseded channel rather than the current one.
type StreamEventMsg struct {
	Generation uint64
	Source     <-chan agent.StreamEvent
	Event      agent.StreamEvent
}

// DrainTickMsg drives one step of the drain scheduler.
type DrainTickMsg struct {
	Generation uint64
	Time       time.Time
}

// SmoothScrollTickMsg advances the smooth-scroll animation one frame.
type SmoothScrollTickMsg struct {
	Time time.Time
}

// =============================================================================
// SIDECAR MESSAGES
// =============================================================================

// SidecarStatusMsg reports the startup health check result.
type SidecarStatusMsg struct {
	OK  bool
	Err error
}

// SessionClearedMsg reports the best-effort backend session drop that
// accompanies a local clear. Failures are logged, never fatal.
type SessionClearedMsg struct {
	Err error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg signals that the config file changed on disk and the
// global config has been reloaded.
type ConfigReloadedMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// listenForEvents returns a command that delivers the next event from the
// stream channel. The update loop re-issues it after each event until the
// channel closes.
func listenForEvents(ch <-chan agent.StreamEvent, generation uint64) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return StreamEventMsg{Generation: generation, Source: ch, Event: ev}
	}
}

// drainTickCmd schedules the next drain step. The tick re-arms itself from
// the update loop while the buffer is non-empty or the stream is still
// receiving, and lapses once both are false.
func drainTickCmd(generation uint64) tea.Cmd {
	return tea.Tick(drainInterval, func(t time.Time) tea.Msg {
		return DrainTickMsg{Generation: generation, Time: t}
	})
}

// smoothScrollTickCmd schedules the next smooth-scroll animation frame.
func smoothScrollTickCmd() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg {
		return SmoothScrollTickMsg{Time: t}
	})
}
