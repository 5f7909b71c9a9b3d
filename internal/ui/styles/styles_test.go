// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Spot-check that styles were initialized (zero-value styles render
	// text unchanged; these should all have attributes set).
	if !theme.UserLabel.GetBold() {
		t.Error("UserLabel should be bold")
	}
	if !theme.ReasoningBody.GetItalic() {
		t.Error("ReasoningBody should be italic")
	}
	if !theme.JumpPill.GetBold() {
		t.Error("JumpPill should be bold")
	}
}

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)

	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize() = %dx%d, want 120x40", theme.Width, theme.Height)
	}
}

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinnerDuration(t *testing.T) {
	cfg := SpinnerConfig{Frames: []string{"|", "/"}, FPS: 10}

	if cfg.Duration().Milliseconds() != 100 {
		t.Errorf("Duration() = %v, want 100ms", cfg.Duration())
	}
}

// =============================================================================
// PROGRESS BAR TESTS
// =============================================================================

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
		want    string
	}{
		{"empty", 4, 0, "----"},
		{"full", 4, 100, "####"},
		{"half", 4, 50, "##--"},
		{"zero width", 0, 50, ""},
		{"clamps over 100", 4, 150, "####"},
		{"clamps negative", 4, -10, "----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgressBar(tt.width, tt.percent)
			if got != tt.want {
				t.Errorf("RenderProgressBar(%d, %v) = %q, want %q", tt.width, tt.percent, got, tt.want)
			}
		})
	}
}

func TestRenderProgressBarWidth(t *testing.T) {
	for percent := 0.0; percent <= 100; percent += 7 {
		bar := RenderProgressBar(10, percent)
		if len(bar) != 10 {
			t.Errorf("bar width at %v%% = %d, want 10", percent, len(bar))
		}
	}
}

// =============================================================================
// EASING TESTS
// =============================================================================

func TestEasingEndpoints(t *testing.T) {
	funcs := map[string]EasingFunc{
		"linear":     EaseLinear,
		"outQuad":    EaseOutQuad,
		"inOutQuad":  EaseInOutQuad,
		"outCubic":   EaseOutCubic,
	}

	for name, fn := range funcs {
		if got := fn(0); got != 0 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := fn(1); got != 1 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestEasingMonotonic(t *testing.T) {
	funcs := map[string]EasingFunc{
		"linear":    EaseLinear,
		"outQuad":   EaseOutQuad,
		"inOutQuad": EaseInOutQuad,
		"outCubic":  EaseOutCubic,
	}

	for name, fn := range funcs {
		prev := fn(0)
		for i := 1; i <= 20; i++ {
			cur := fn(float64(i) / 20)
			if cur < prev {
				t.Errorf("%s not monotonic at step %d", name, i)
			}
			prev = cur
		}
	}
}

// =============================================================================
// STATUS INDICATOR TESTS
// =============================================================================

func TestRenderStatusHelpers(t *testing.T) {
	if !strings.Contains(RenderSuccess("saved"), "[OK]") {
		t.Error("RenderSuccess missing [OK] indicator")
	}
	if !strings.Contains(RenderError("failed"), "[X]") {
		t.Error("RenderError missing [X] indicator")
	}
	if !strings.Contains(RenderWarning("slow"), "[!]") {
		t.Error("RenderWarning missing [!] indicator")
	}
}
