// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/model"
	"github.com/fuxi-quant/fuxi-tui/internal/telemetry"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/components"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// requestTimeout bounds session management calls. Chat streams use the
// background context; there is no mid-stream cancellation surface.
const requestTimeout = 10 * time.Second

func newRequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case StreamEventMsg:
		return m.handleStreamEvent(msg)

	case DrainTickMsg:
		return m.handleDrainTick(msg)

	case SmoothScrollTickMsg:
		return m.handleSmoothScrollTick(msg)

	case SidecarStatusMsg:
		m.sidecarOK = msg.OK
		m.welcome.SetSidecarStatus(msg.OK)
		return m, nil

	case SessionClearedMsg:
		// Best-effort backend drop; a failure is worth a glance but the
		// local clear already happened.
		if msg.Err != nil {
			m.statusBar.SetNotice(fmt.Sprintf("session reset failed: %v", msg.Err))
		}
		return m, nil

	case ConfigReloadedMsg:
		m.applyConfig(config.Global())
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.sendMessage()

	case key.Matches(msg, m.keys.ToggleFold):
		m.toggleFold()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		return m.clearSession()

	case key.Matches(msg, m.keys.ScrollUp):
		m.scrollBy(-1)
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.scrollBy(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-m.chatHeight())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(m.chatHeight())
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.animating = false
		m.follow.HandleScroll(SourceUser)
		m.scrollTop = 0
		m.syncAtBottom()
		return m, nil

	case key.Matches(msg, m.keys.End), key.Matches(msg, m.keys.JumpToLatest):
		// Explicit user request to rejoin the live edge.
		m.follow.ForceFollow()
		m.jumpNew = 0
		return m, m.scrollToBottomSmooth()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollBy(-wheelScrollLines)
	case tea.MouseButtonWheelDown:
		m.scrollBy(wheelScrollLines)
	}
	return m, nil
}

// toggleFold flips the reasoning fold on the most recent assistant message
// that has one. Manual toggles hand the fold to the user for good.
func (m *Model) toggleFold() {
	msgs := m.session.Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != model.RoleAssistant {
			continue
		}
		res := m.messageView.ParseFor(msgs[i])
		if !res.HasReasoning {
			continue
		}
		msgs[i].ToggleThinking()
		m.measureRow(i)
		if m.follow.IsFollowing() {
			m.scrollToBottomInstant()
		} else {
			m.scrollTop = m.virt.ClampScrollTop(m.scrollTop, m.chatHeight())
			m.syncAtBottom()
		}
		return
	}
}

// =============================================================================
// SENDING
// =============================================================================

// sendMessage opens a turn: the user message and an empty assistant
// placeholder are committed, the stream is opened, and the drain scheduler
// is armed. Sends are ignored while a stream is already open.
func (m Model) sendMessage() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	// One turn in flight: the previous reply must be fully revealed, not
	// just fully received, before the next send is accepted.
	if text == "" || m.session.Receiving || m.session.Typing() != nil {
		return m, nil
	}
	m.input.Reset()

	// Mirror any turn-start eviction into the row caches before the new
	// pair lands.
	before := m.session.Snapshot()
	m.session.BeginTurn(text)
	if evicted := len(before) + 2 - m.session.Len(); evicted > 0 {
		for i := 0; i < evicted && i < len(before); i++ {
			m.messageView.Forget(before[i].ID)
		}
		m.virt.DropFront(evicted)
	}
	m.virt.SetCount(m.session.Len())
	m.measureRow(m.session.Len() - 2)
	m.measureRow(m.session.Len() - 1)

	m.session.Receiving = true
	generation := m.session.NextGeneration()
	m.parser.Invalidate()
	m.pending.Reset()

	m.turnStartedAt = time.Now()
	m.firstTokenAt = time.Time{}
	m.revealedChars = 0
	m.peakBacklog = 0
	m.turnErr = ""

	// Sending is an explicit user action, so the viewport rejoins the
	// live edge even if it was detached.
	m.follow.ForceFollow()
	m.jumpNew = 0
	m.scrollToBottomInstant()

	m.statusBar.SetState(components.StreamReceiving)
	m.statusBar.SetPrompt(m.session.Messages[m.session.Len()-2].Preview(32))
	m.spinner.SetMessage("thinking")

	ch := m.client.ChatStreamChan(context.Background(), m.session.ID, text)
	m.streamCh = ch
	m.ticking = true

	return m, tea.Batch(
		listenForEvents(ch, generation),
		drainTickCmd(generation),
		m.spinner.Start(),
	)
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m Model) handleStreamEvent(msg StreamEventMsg) (Model, tea.Cmd) {
	// Re-listen on the channel that produced the event, not the model's
	// current one: a stale event keeps draining its superseded channel to
	// close without ever racing the live stream's listener.
	relisten := listenForEvents(msg.Source, msg.Generation)
	if m.session.IsStale(msg.Generation) {
		return m, relisten
	}

	switch msg.Event.Type {
	case agent.EventToken:
		if m.firstTokenAt.IsZero() {
			m.firstTokenAt = time.Now()
		}
		m.pending.Enqueue(msg.Event.Data)
		if n := m.pending.Len(); n > m.peakBacklog {
			m.peakBacklog = n
		}
		m.statusBar.SetBacklog(m.pending.Len(), m.policy.MaxBacklog)

		var tick tea.Cmd
		if !m.ticking {
			m.ticking = true
			tick = drainTickCmd(msg.Generation)
		}
		return m, tea.Batch(relisten, tick)

	case agent.EventDone:
		m.session.Receiving = false
		return m, relisten

	case agent.EventError:
		// Errors surface as an inline diagnostic in the transcript; the
		// turn otherwise finalizes normally.
		diag := msg.Event.Data
		if diag == "" {
			diag = "stream failed"
		}
		m.pending.Enqueue(fmt.Sprintf("\n\n[error: %s]", diag))
		m.turnErr = diag
		m.session.Receiving = false
		m.statusBar.SetState(components.StreamFailed)
		return m, relisten
	}

	return m, relisten
}

// =============================================================================
// DRAIN SCHEDULER
// =============================================================================

// handleDrainTick reveals one batch of buffered characters. The tick
// re-arms itself while either characters remain or the stream is open, and
// finalizes the turn once both are exhausted.
func (m Model) handleDrainTick(msg DrainTickMsg) (Model, tea.Cmd) {
	if m.session.IsStale(msg.Generation) {
		return m, nil
	}

	if chunk := m.pending.Drain(m.policy.Amount(m.pending.Len())); chunk != "" {
		m.session.AppendToTyping(chunk)
		m.revealedChars += len([]rune(chunk))
		m.statusBar.SetBacklog(m.pending.Len(), m.policy.MaxBacklog)

		if typing := m.session.Typing(); typing != nil {
			res := m.parser.Parse(typing.DisplayContent())
			if res.Complete && m.cfg.Chat.ReasoningAutoCollapse {
				typing.AutoCollapseThinking()
			}
			m.measureTyping()
		}
		if m.follow.IsFollowing() {
			m.scrollToBottomInstant()
		} else {
			m.syncAtBottom()
		}
	}

	if m.pending.Len() > 0 || m.session.Receiving {
		return m, drainTickCmd(msg.Generation)
	}

	m.ticking = false
	m.finalizeTurn()
	return m, nil
}

// finalizeTurn commits the typing message, re-renders it through the
// markdown pipeline, and records turn stats.
func (m *Model) finalizeTurn() {
	wasDetached := !m.follow.IsFollowing()

	m.session.FinalizeTyping()
	m.spinner.Stop()
	m.statusBar.SetState(components.StreamIdle)
	m.statusBar.SetBacklog(0, m.policy.MaxBacklog)
	m.statusBar.SetMessageCount(m.session.Len())

	// A one-line generation summary shown under the message just finished.
	// Only the latest turn carries it; history is never persisted.
	if m.cfg.Telemetry.Enabled && m.turnErr == "" && !m.turnStartedAt.IsZero() && m.session.Len() > 0 {
		m.statsLine = m.formatTurnStats()
		m.statsMsgID = m.session.Messages[m.session.Len()-1].ID
	}

	// Finalized content renders through glamour, which can change the row
	// height, so the last row is measured again.
	if m.session.Len() > 0 {
		m.measureRow(m.session.Len() - 1)
	}
	if m.follow.IsFollowing() {
		m.scrollToBottomInstant()
	} else {
		m.syncAtBottom()
	}
	if wasDetached {
		m.jumpNew++
	}

	m.recordTurn(m.turnErr)
}

// formatTurnStats builds the one-line summary under a finished message.
func (m *Model) formatTurnStats() string {
	elapsed := time.Since(m.turnStartedAt)
	line := fmt.Sprintf("%.1fs", elapsed.Seconds())
	if !m.firstTokenAt.IsZero() {
		line += fmt.Sprintf(" | first token %dms", m.firstTokenAt.Sub(m.turnStartedAt).Milliseconds())
	}
	if m.revealedChars > 0 && elapsed > 0 {
		line += fmt.Sprintf(" | %.0f chars/s", float64(m.revealedChars)/elapsed.Seconds())
	}
	return line
}

// recordTurn writes best-effort telemetry for the turn just finished.
func (m *Model) recordTurn(errText string) {
	if m.recorder == nil || m.turnStartedAt.IsZero() {
		return
	}
	ttft := time.Duration(0)
	if !m.firstTokenAt.IsZero() {
		ttft = m.firstTokenAt.Sub(m.turnStartedAt)
	}
	m.recorder.RecordTurn(telemetry.TurnStats{
		SessionID:     m.session.ID,
		StartedAt:     m.turnStartedAt,
		TimeToFirst:   ttft,
		Duration:      time.Since(m.turnStartedAt),
		RevealedChars: m.revealedChars,
		PeakBacklog:   m.peakBacklog,
		Error:         errText,
	})
	m.turnStartedAt = time.Time{}
}

// =============================================================================
// SMOOTH SCROLL
// =============================================================================

func (m Model) handleSmoothScrollTick(msg SmoothScrollTickMsg) (Model, tea.Cmd) {
	if !m.animating {
		return m, nil
	}

	elapsed := time.Since(m.animStartedAt)
	t := float64(elapsed) / float64(smoothScrollDuration)
	if t >= 1 {
		m.animating = false
		m.scrollTop = m.animTarget
		m.follow.HandleScroll(SourceProgram)
		m.syncAtBottom()
		return m, nil
	}

	eased := styles.EaseOutCubic(t)
	m.scrollTop = m.animStart + int(float64(m.animTarget-m.animStart)*eased)
	m.follow.HandleScroll(SourceProgram)
	m.syncAtBottom()
	return m, smoothScrollTickCmd()
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// clearSession resets the transcript to the greeting and bumps the stream
// generation so in-flight events are orphaned. The backend session is
// reset best-effort.
func (m Model) clearSession() (Model, tea.Cmd) {
	sessionID := m.session.ID

	m.session.Clear()
	m.pending.Reset()
	m.parser.Invalidate()
	m.statsLine = ""
	m.statsMsgID = ""
	m.messageView.Reset()
	m.virt.Reset()
	m.measureAll()

	m.ticking = false
	m.streamCh = nil
	m.spinner.Stop()
	m.statusBar.SetState(components.StreamIdle)
	m.statusBar.SetBacklog(0, m.policy.MaxBacklog)
	m.statusBar.SetMessageCount(m.session.Len())

	m.follow.ForceFollow()
	m.jumpNew = 0
	m.scrollTop = 0
	m.animating = false
	m.syncAtBottom()

	client := m.client
	return m, func() tea.Msg {
		ctx, cancel := newRequestContext()
		defer cancel()
		return SessionClearedMsg{Err: client.ResetSession(ctx, sessionID)}
	}
}

// applyConfig picks up a hot-reloaded config: drain pacing and syntax
// theme apply immediately, transport settings on the next startup.
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.policy = DrainPolicyFor(cfg.Chat.DrainProfile)
	m.messageView.SetSyntaxTheme(cfg.UI.SyntaxTheme)
	m.virt.InvalidateAll()
	m.measureAll()
	m.scrollTop = m.virt.ClampScrollTop(m.scrollTop, m.chatHeight())
	m.syncAtBottom()
}
