// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/fuxi-quant/fuxi-tui/internal/model"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// WRAPPING TESTS
// =============================================================================

func TestWrapContentShortLine(t *testing.T) {
	if got := WrapContent("hello", 10); got != "hello" {
		t.Errorf("WrapContent() = %q, want unchanged", got)
	}
}

func TestWrapContentBreaksAtWords(t *testing.T) {
	got := WrapContent("alpha beta gamma", 11)

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got)
	}
	if lines[0] != "alpha beta" || lines[1] != "gamma" {
		t.Errorf("lines = %q", lines)
	}
}

func TestWrapContentHardBreaksLongWords(t *testing.T) {
	got := WrapContent("abcdefghij", 4)

	for i, line := range strings.Split(got, "\n") {
		if len(line) > 4 {
			t.Errorf("line %d = %q exceeds width 4", i, line)
		}
	}
}

func TestWrapContentWideRunes(t *testing.T) {
	// Four CJK characters are eight cells wide; at width 4 they wrap to
	// two per line.
	got := WrapContent("你好世界", 4)

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2: %q", len(lines), got)
	}
}

func TestWrapContentPreservesBlankLines(t *testing.T) {
	got := WrapContent("a\n\nb", 10)
	if got != "a\n\nb" {
		t.Errorf("WrapContent() = %q, want blank line preserved", got)
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		content string
		width   int
		want    int
	}{
		{"", 10, 1},
		{"hello", 10, 1},
		{"a\nb\nc", 10, 3},
		{"alpha beta gamma", 11, 2},
	}

	for _, tt := range tests {
		if got := LineCount(tt.content, tt.width); got != tt.want {
			t.Errorf("LineCount(%q, %d) = %d, want %d", tt.content, tt.width, got, tt.want)
		}
	}
}

func TestMaxLineWidth(t *testing.T) {
	if got := MaxLineWidth("ab\nabcd\nabc"); got != 4 {
		t.Errorf("MaxLineWidth() = %d, want 4", got)
	}
}

// =============================================================================
// CODE BLOCK TESTS
// =============================================================================

func TestRenderCodeBlocksPassesProse(t *testing.T) {
	text := "just some prose\nwith two lines"
	got := RenderCodeBlocks(text, 80, "monokai")

	if !strings.Contains(got, "just some prose") {
		t.Errorf("prose missing from output: %q", got)
	}
}

func TestRenderCodeBlocksHighlightsFence(t *testing.T) {
	text := "before\n```go\nfunc main() {}\n```\nafter"
	got := RenderCodeBlocks(text, 80, "monokai")

	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Error("surrounding prose missing")
	}
	if strings.Contains(got, "```") {
		t.Error("fence markers should be consumed")
	}
	if !strings.Contains(got, "main") {
		t.Error("code content missing")
	}
}

func TestRenderCodeBlocksUnclosedFence(t *testing.T) {
	// A streaming reply can end mid-fence; the partial block still renders.
	text := "```python\nprint('hi')"
	got := RenderCodeBlocks(text, 80, "monokai")

	if !strings.Contains(got, "print") {
		t.Errorf("partial code missing: %q", got)
	}
}

func TestHighlightFallsBackToPlain(t *testing.T) {
	code := "some plain text"
	got := Highlight(code, "", "no-such-style")

	if got == "" {
		t.Error("Highlight() returned empty output")
	}
}

// =============================================================================
// MESSAGE VIEW TESTS
// =============================================================================

func newTestView() *MessageView {
	return NewMessageView(styles.NewTheme(), "monokai")
}

func TestRenderUserMessage(t *testing.T) {
	v := newTestView()
	msg := model.NewUserMessage("hello there")

	out := v.Render(msg)

	if !strings.Contains(out, "You") {
		t.Error("user label missing")
	}
	if !strings.Contains(out, "hello there") {
		t.Error("content missing")
	}
}

func TestRenderAssistantReasoningExpanded(t *testing.T) {
	v := newTestView()
	msg := model.NewAssistantMessage()
	msg.Append("<think>pondering the request</think>done!")
	msg.Finalize()

	out := v.Render(msg)

	if !strings.Contains(out, "[-] thinking") {
		t.Error("expanded reasoning header missing")
	}
	if !strings.Contains(out, "pondering the request") {
		t.Error("reasoning body missing")
	}
	if !strings.Contains(out, "done!") {
		t.Error("response missing")
	}
}

func TestRenderAssistantReasoningCollapsed(t *testing.T) {
	v := newTestView()
	msg := model.NewAssistantMessage()
	msg.Append("<think>pondering</think>done!")
	msg.Finalize()
	msg.AutoCollapseThinking()

	out := v.Render(msg)

	if !strings.Contains(out, "[+] thinking") {
		t.Error("collapsed reasoning header missing")
	}
	if strings.Contains(out, "pondering") {
		t.Error("collapsed reasoning body should be hidden")
	}
	if !strings.Contains(out, "done!") {
		t.Error("response missing when reasoning collapsed")
	}
}

func TestRenderAssistantStreamingTail(t *testing.T) {
	v := newTestView()
	msg := model.NewAssistantMessage()

	// Ten reasoning lines, still streaming: only the tail stays visible.
	var b strings.Builder
	b.WriteString("<think>")
	for i := 0; i < 10; i++ {
		b.WriteString("reasoning line number ")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString("\n")
	}
	msg.Append(b.String())

	out := v.Render(msg)

	if strings.Contains(out, "reasoning line number x\n") {
		t.Error("oldest reasoning line should be scrolled out of the tail")
	}
	if !strings.Contains(out, "[-] thinking") {
		t.Error("reasoning header missing during streaming")
	}
}

func TestRenderAssistantPlaceholder(t *testing.T) {
	v := newTestView()
	msg := model.NewAssistantMessage()

	out := v.Render(msg)

	if !strings.Contains(out, "...") {
		t.Error("placeholder missing for empty typing message")
	}
}

func TestMessageViewCacheReset(t *testing.T) {
	v := newTestView()
	msg := model.NewAssistantMessage()
	msg.Append("hello")
	v.Render(msg)

	if len(v.parsers) != 1 {
		t.Fatalf("parser cache size = %d, want 1", len(v.parsers))
	}

	v.Forget(msg.ID)
	if len(v.parsers) != 0 {
		t.Error("Forget did not drop cache entry")
	}

	v.Render(msg)
	v.Reset()
	if len(v.parsers) != 0 {
		t.Error("Reset did not clear cache")
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBarStates(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(100)

	sb.SetState(StreamIdle)
	sb.SetMessageCount(5)
	if out := sb.View(); !strings.Contains(out, "5 messages") {
		t.Errorf("idle view missing message count: %q", out)
	}

	sb.SetState(StreamReceiving)
	if out := sb.View(); !strings.Contains(out, "receiving") {
		t.Errorf("receiving view missing state: %q", out)
	}

	sb.SetState(StreamFailed)
	if out := sb.View(); !strings.Contains(out, "error") {
		t.Errorf("failed view missing state: %q", out)
	}
}

func TestStatusBarNoticeAndPrompt(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(100)

	sb.SetState(StreamReceiving)
	sb.SetPrompt("backtest the strategy")
	if out := sb.View(); !strings.Contains(out, "backtest the strategy") {
		t.Errorf("receiving view missing prompt preview: %q", out)
	}

	// Prompt only survives while receiving.
	sb.SetState(StreamIdle)
	if out := sb.View(); strings.Contains(out, "backtest") {
		t.Errorf("prompt preview should clear when idle: %q", out)
	}

	sb.SetNotice("session reset failed: timeout")
	if out := sb.View(); !strings.Contains(out, "session reset failed") {
		t.Errorf("idle view missing notice: %q", out)
	}

	// A state change supersedes the notice.
	sb.SetState(StreamReceiving)
	sb.SetState(StreamIdle)
	if out := sb.View(); strings.Contains(out, "session reset failed") {
		t.Errorf("notice should clear on state change: %q", out)
	}
}

func TestStatusBarBacklogGauge(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme())
	sb.SetWidth(100)
	sb.SetState(StreamReceiving)
	sb.SetBacklog(500, 1000)

	if out := sb.View(); !strings.Contains(out, "buf") {
		t.Errorf("backlog gauge missing: %q", out)
	}

	// Gauge hidden while idle.
	sb.SetState(StreamIdle)
	if out := sb.View(); strings.Contains(out, "buf") {
		t.Error("backlog gauge should hide while idle")
	}
}

// =============================================================================
// JUMP PILL TESTS
// =============================================================================

func TestRenderJumpPill(t *testing.T) {
	theme := styles.NewTheme()

	if out := RenderJumpPill(theme, 0); !strings.Contains(out, "latest") {
		t.Errorf("pill missing label: %q", out)
	}
	if out := RenderJumpPill(theme, 3); !strings.Contains(out, "3 new") {
		t.Errorf("pill missing new-message count: %q", out)
	}
}
