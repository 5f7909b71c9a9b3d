// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/model"
	"github.com/fuxi-quant/fuxi-tui/internal/telemetry"
	"github.com/fuxi-quant/fuxi-tui/internal/thinking"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/components"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// smoothScrollDuration is how long an animated jump-to-latest takes.
	smoothScrollDuration = 250 * time.Millisecond

	// wheelScrollLines is how many rows one mouse wheel notch moves.
	wheelScrollLines = 3
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view: a virtualized transcript over a bounded session,
// an input line, and a status bar. Stream tokens are buffered and revealed
// by the drain scheduler rather than rendered as they arrive.
type Model struct {
	// Dependencies
	cfg      *config.Config
	client   *agent.Client
	recorder *telemetry.Recorder

	// Conversation state
	session *model.Session
	parser  *thinking.CachedParser

	// Streaming state
	pending   *PendingBuffer
	policy    DrainPolicy
	streamCh  <-chan agent.StreamEvent
	ticking   bool
	sidecarOK bool

	// Scroll state
	virt      *Virtualizer
	follow    *FollowController
	scrollTop int
	jumpNew   int

	// Smooth scroll animation
	animating     bool
	animStart     int
	animTarget    int
	animStartedAt time.Time

	// Per-turn stats
	turnStartedAt time.Time
	firstTokenAt  time.Time
	revealedChars int
	peakBacklog   int
	turnErr       string
	statsLine     string
	statsMsgID    string

	// UI components
	theme       *styles.Theme
	keys        KeyMap
	messageView *components.MessageView
	statusBar   *components.StatusBar
	welcome     *components.Welcome
	spinner     components.Spinner
	input       textinput.Model

	// Layout
	width  int
	height int
	ready  bool
}

// New creates the chat model. The recorder may be nil; telemetry is
// best-effort and never blocks the chat loop.
func New(cfg *config.Config, client *agent.Client, recorder *telemetry.Recorder, version string) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask FuxiQuant anything..."
	input.CharLimit = 4096
	input.Focus()

	session := model.NewSession()
	if !cfg.Chat.GreetingEnabled {
		session.Messages = session.Messages[:0]
	}

	return Model{
		cfg:         cfg,
		client:      client,
		recorder:    recorder,
		session:     session,
		parser:      thinking.NewCachedParser(),
		pending:     NewPendingBuffer(),
		policy:      DrainPolicyFor(cfg.Chat.DrainProfile),
		virt:        NewVirtualizer(),
		follow:      NewFollowController(),
		theme:       theme,
		keys:        DefaultKeyMap(),
		messageView: components.NewMessageView(theme, cfg.UI.SyntaxTheme),
		statusBar:   components.NewStatusBar(theme),
		welcome:     components.NewWelcome(theme, version),
		spinner:     components.NewThinkingSpinner(),
		input:       input,
	}
}

// Init starts the sidecar health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkSidecarCmd())
}

// Session exposes the conversation for tests and the entry point.
func (m Model) Session() *model.Session {
	return m.session
}

// checkSidecarCmd probes the sidecar health endpoint once at startup.
func (m Model) checkSidecarCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := newRequestContext()
		defer cancel()
		if err := client.CheckRunning(ctx); err != nil {
			return SidecarStatusMsg{OK: false, Err: err}
		}
		return SidecarStatusMsg{OK: true}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// chatHeight returns the rows available for the transcript.
func (m Model) chatHeight() int {
	// One row for the status bar, one for the input line.
	h := m.height - 2
	if m.showJumpPill() {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// showJumpPill reports whether the jump-to-latest affordance is visible.
func (m Model) showJumpPill() bool {
	return !m.follow.IsFollowing() && !m.follow.AtBottom() && m.session.Len() > 1
}

// setSize applies a terminal resize: widths propagate to every component
// and all cached row heights are invalidated since wrapping changed.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.theme.SetSize(width, height)
	m.messageView.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.welcome.SetSize(width, m.chatHeight())
	m.input.Width = width - 4

	m.virt.InvalidateAll()
	m.measureAll()
	m.scrollTop = m.virt.ClampScrollTop(m.scrollTop, m.chatHeight())
	if m.follow.IsFollowing() {
		m.scrollToBottomInstant()
	}
}

// =============================================================================
// MEASUREMENT
// =============================================================================

// renderRow renders one transcript row as its lines, plus one blank
// separator line. Row heights cached in the virtualizer are exactly
// len(renderRow(i)).
func (m *Model) renderRow(i int) []string {
	msgs := m.session.Messages
	if i < 0 || i >= len(msgs) {
		return nil
	}
	lines := strings.Split(m.messageView.Render(msgs[i]), "\n")
	if m.statsLine != "" && msgs[i].ID == m.statsMsgID {
		lines = append(lines, styles.RenderMuted(m.statsLine))
	}
	return append(lines, "")
}

// measureRow renders row i and commits its height.
func (m *Model) measureRow(i int) {
	m.virt.Measure(i, len(m.renderRow(i)))
}

// measureAll re-measures every row. Used after resize and clear; the
// session is bounded, so this stays cheap.
func (m *Model) measureAll() {
	m.virt.SetCount(m.session.Len())
	for i := 0; i < m.session.Len(); i++ {
		m.measureRow(i)
	}
}

// measureTyping re-measures the currently-typing row after a drain step.
func (m *Model) measureTyping() {
	if m.session.Typing() == nil {
		return
	}
	m.measureRow(m.session.Len() - 1)
}

// =============================================================================
// SCROLLING
// =============================================================================

// scrollToBottomInstant pins the viewport to the end without animation.
// Used on every drain step while following; animating each step would
// fight the 30fps reveal cadence.
func (m *Model) scrollToBottomInstant() {
	m.scrollTop = m.virt.ScrollTopForIndex(m.virt.Count()-1, m.chatHeight())
	m.follow.HandleScroll(SourceProgram)
	m.syncAtBottom()
}

// scrollToBottomSmooth starts an eased animation toward the end and
// returns the command that drives its frames.
func (m *Model) scrollToBottomSmooth() tea.Cmd {
	target := m.virt.MaxScrollTop(m.chatHeight())
	if target == m.scrollTop {
		m.syncAtBottom()
		return nil
	}
	m.animating = true
	m.animStart = m.scrollTop
	m.animTarget = target
	m.animStartedAt = time.Now()
	return smoothScrollTickCmd()
}

// scrollBy moves the viewport by delta rows at the user's request. A user
// scroll while following detaches; it also cancels any running animation.
func (m *Model) scrollBy(delta int) {
	m.animating = false
	m.follow.HandleScroll(SourceUser)
	m.scrollTop = m.virt.ClampScrollTop(m.scrollTop+delta, m.chatHeight())
	m.syncAtBottom()
}

// syncAtBottom refreshes the follow controller's bottom-proximity bit.
func (m *Model) syncAtBottom() {
	m.follow.UpdateAtBottom(m.virt.TotalHeight(), m.scrollTop, m.chatHeight())
	if m.follow.AtBottom() {
		m.jumpNew = 0
	}
}
