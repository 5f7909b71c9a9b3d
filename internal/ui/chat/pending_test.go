// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
)

// =============================================================================
// PENDING BUFFER TESTS
// =============================================================================

func TestPendingBufferOrder(t *testing.T) {
	b := NewPendingBuffer()
	b.Enqueue("hello ")
	b.Enqueue("world")

	// Draining in arbitrary chunk sizes must reproduce the input exactly.
	var out strings.Builder
	for _, n := range []int{3, 1, 4, 2, 100} {
		out.WriteString(b.Drain(n))
	}

	if got := out.String(); got != "hello world" {
		t.Errorf("drained = %q, want %q", got, "hello world")
	}
	if b.Len() != 0 {
		t.Errorf("Len() after full drain = %d, want 0", b.Len())
	}
}

func TestPendingBufferUnicode(t *testing.T) {
	b := NewPendingBuffer()
	b.Enqueue("héllo 世界")

	// Drain counts characters, not bytes: multibyte runes never split.
	first := b.Drain(5)
	if first != "héllo" {
		t.Errorf("Drain(5) = %q, want %q", first, "héllo")
	}
	rest := b.Drain(10)
	if rest != " 世界" {
		t.Errorf("remaining = %q, want %q", rest, " 世界")
	}
}

func TestPendingBufferDrainEdges(t *testing.T) {
	b := NewPendingBuffer()
	if got := b.Drain(5); got != "" {
		t.Errorf("Drain on empty = %q, want empty", got)
	}

	b.Enqueue("abc")
	if got := b.Drain(0); got != "" {
		t.Errorf("Drain(0) = %q, want empty", got)
	}
	if got := b.Drain(-1); got != "" {
		t.Errorf("Drain(-1) = %q, want empty", got)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
}

// =============================================================================
// DRAIN POLICY TESTS
// =============================================================================

func TestDrainPolicyBands(t *testing.T) {
	p := DrainPolicyFor("adaptive")

	tests := []struct {
		backlog int
		want    int
	}{
		{0, 0},
		{1, p.Slow},
		{50, p.Slow},
		{51, p.Normal},
		{100, p.Normal},
		{101, p.Fast},
		{1000, p.Fast},
	}

	for _, tt := range tests {
		if got := p.Amount(tt.backlog); got != tt.want {
			t.Errorf("Amount(%d) = %d, want %d", tt.backlog, got, tt.want)
		}
	}
}

func TestDrainPolicySkipAhead(t *testing.T) {
	p := DrainPolicyFor("adaptive")

	// Past the backlog bound, one tick reveals everything but the
	// smoothing tail instead of pacing through the excess.
	backlog := p.MaxBacklog + 500
	if got := p.Amount(backlog); got != backlog-p.SmoothTail {
		t.Errorf("Amount(%d) = %d, want %d", backlog, got, backlog-p.SmoothTail)
	}

	// At the bound exactly, normal pacing still applies.
	if got := p.Amount(p.MaxBacklog); got != p.Fast {
		t.Errorf("Amount(MaxBacklog) = %d, want %d", got, p.Fast)
	}
}

func TestDrainPolicyProfiles(t *testing.T) {
	fast := DrainPolicyFor("fast")
	slow := DrainPolicyFor("slow")
	adaptive := DrainPolicyFor("adaptive")
	unknown := DrainPolicyFor("bogus")

	if fast.Amount(1) != fast.Amount(500) {
		t.Error("fast profile should reveal at a pinned rate")
	}
	if slow.Amount(1) != slow.Amount(500) {
		t.Error("slow profile should reveal at a pinned rate")
	}
	if adaptive.Amount(1) == adaptive.Amount(500) {
		t.Error("adaptive profile should scale with backlog")
	}
	if unknown != adaptive {
		t.Error("unknown profile should fall back to adaptive")
	}
}
