// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the pending buffer and its adaptive drain policy.
// Tokens arrive in bursts from the sidecar; the buffer decouples arrival
// rate from reveal rate so text appears at a visually smooth pace. Each
// drain tick dequeues a backlog-dependent number of characters and appends
// them to the typing message.
package chat

import (
	"strings"
	"time"
)

// =============================================================================
// PENDING BUFFER
// =============================================================================

// PendingBuffer is a FIFO of not-yet-revealed characters. The stream event
// handler is the sole producer and the drain tick the sole consumer; both
// run on the Bubble Tea loop, so no locking is needed.
type PendingBuffer struct {
	runes []rune
}

// NewPendingBuffer creates an empty buffer.
func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{}
}

// Enqueue appends token text to the tail.
func (b *PendingBuffer) Enqueue(text string) {
	b.runes = append(b.runes, []rune(text)...)
}

// Drain removes up to n characters from the head and returns them as a
// string. Characters come out in exactly the order they went in.
func (b *PendingBuffer) Drain(n int) string {
	if n <= 0 || len(b.runes) == 0 {
		return ""
	}
	if n > len(b.runes) {
		n = len(b.runes)
	}

	out := string(b.runes[:n])

	// Shift rather than re-slice so the backing array does not pin the
	// whole stream in memory.
	remaining := copy(b.runes, b.runes[n:])
	b.runes = b.runes[:remaining]

	return out
}

// Len returns the backlog: the number of buffered characters.
func (b *PendingBuffer) Len() int {
	return len(b.runes)
}

// Reset discards all buffered characters.
func (b *PendingBuffer) Reset() {
	b.runes = b.runes[:0]
}

// =============================================================================
// DRAIN POLICY
// =============================================================================

// drainInterval is the spacing of drain ticks (30fps). The tick re-arms
// itself while work remains and lapses otherwise; it is not a persistent
// timer.
const drainInterval = 33 * time.Millisecond

// DrainPolicy selects how many characters each tick reveals, scaled by
// backlog so bursts catch up without making slow generation look jittery.
// The thresholds are pacing constants, not correctness-bearing.
type DrainPolicy struct {
	// Characters per tick by backlog band
	Fast   int
	Normal int
	Slow   int

	// Band thresholds: backlog > FastAt reveals Fast, > NormalAt reveals
	// Normal, else Slow
	FastAt   int
	NormalAt int

	// MaxBacklog bounds backlog growth. When exceeded, the next tick
	// skips ahead: everything except a smoothing tail is revealed at
	// once rather than letting the backlog grow without bound.
	MaxBacklog int
	SmoothTail int
}

// DrainPolicyFor returns the policy for a configured profile name.
// "adaptive" is the default; "fast" and "slow" pin the reveal rate.
func DrainPolicyFor(profile string) DrainPolicy {
	switch strings.ToLower(profile) {
	case "fast":
		return DrainPolicy{
			Fast: 24, Normal: 24, Slow: 24,
			FastAt: 100, NormalAt: 50,
			MaxBacklog: 4096, SmoothTail: 256,
		}
	case "slow":
		return DrainPolicy{
			Fast: 3, Normal: 3, Slow: 3,
			FastAt: 100, NormalAt: 50,
			MaxBacklog: 4096, SmoothTail: 256,
		}
	default:
		return DrainPolicy{
			Fast: 12, Normal: 6, Slow: 2,
			FastAt: 100, NormalAt: 50,
			MaxBacklog: 4096, SmoothTail: 256,
		}
	}
}

// Amount returns how many characters to reveal this tick for the given
// backlog.
func (p DrainPolicy) Amount(backlog int) int {
	if backlog <= 0 {
		return 0
	}

	// Skip-ahead: the producer has outrun the fastest reveal rate by too
	// much, so catch up in one burst and keep only a short tail animating.
	if backlog > p.MaxBacklog {
		return backlog - p.SmoothTail
	}

	switch {
	case backlog > p.FastAt:
		return p.Fast
	case backlog > p.NormalAt:
		return p.Normal
	default:
		return p.Slow
	}
}
