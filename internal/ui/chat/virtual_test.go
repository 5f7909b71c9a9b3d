// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "testing"

// =============================================================================
// VIRTUALIZER TESTS
// =============================================================================

func TestVirtualizerEstimateThenMeasure(t *testing.T) {
	v := NewVirtualizer()
	v.SetCount(3)

	if got := v.TotalHeight(); got != 3*estimatedRowHeight {
		t.Errorf("TotalHeight() = %d, want %d", got, 3*estimatedRowHeight)
	}
	if v.IsMeasured(1) {
		t.Error("fresh row should not be measured")
	}

	v.Measure(1, 7)
	if !v.IsMeasured(1) {
		t.Error("row 1 should be measured")
	}
	if got := v.Height(1); got != 7 {
		t.Errorf("Height(1) = %d, want 7", got)
	}
	if got := v.TotalHeight(); got != estimatedRowHeight+7+estimatedRowHeight {
		t.Errorf("TotalHeight() = %d, want %d", got, 2*estimatedRowHeight+7)
	}

	// Offsets reflect the mixed heights.
	if got := v.OffsetOf(2); got != estimatedRowHeight+7 {
		t.Errorf("OffsetOf(2) = %d, want %d", got, estimatedRowHeight+7)
	}
}

func TestVirtualizerInvalidateAll(t *testing.T) {
	v := NewVirtualizer()
	v.SetCount(2)
	v.Measure(0, 5)
	v.Measure(1, 9)

	v.InvalidateAll()

	// Heights survive as estimates; measured flags reset.
	if v.IsMeasured(0) || v.IsMeasured(1) {
		t.Error("InvalidateAll should clear measured flags")
	}
	if got := v.TotalHeight(); got != 14 {
		t.Errorf("TotalHeight() = %d, want 14", got)
	}
}

func TestVirtualizerWindowContiguous(t *testing.T) {
	v := NewVirtualizer()
	v.SetCount(50)
	for i := 0; i < 50; i++ {
		v.Measure(i, 4)
	}

	// View of 12 lines at offset 40: visible rows 10..12, plus overscan.
	start, end := v.Window(40, 12)
	if start > 10-overscanRows || end < 13+overscanRows {
		t.Errorf("Window(40, 12) = [%d, %d), should cover rows 8..14", start, end)
	}
	if start < 0 || end > 50 {
		t.Errorf("Window(40, 12) = [%d, %d), out of bounds", start, end)
	}

	// Every row in the window must be in range and the range contiguous
	// by construction; verify the visible span is fully covered.
	if v.OffsetOf(start) > 40 {
		t.Errorf("window start offset %d is below scrollTop 40", v.OffsetOf(start))
	}
	if v.OffsetOf(end-1)+v.Height(end-1) < 52 {
		t.Error("window end does not cover the visible span")
	}
}

func TestVirtualizerWindowEdges(t *testing.T) {
	v := NewVirtualizer()

	if s, e := v.Window(0, 10); s != 0 || e != 0 {
		t.Errorf("Window on empty = [%d, %d), want [0, 0)", s, e)
	}

	v.SetCount(3)
	s, e := v.Window(0, 1000)
	if s != 0 || e != 3 {
		t.Errorf("oversized view Window = [%d, %d), want [0, 3)", s, e)
	}
}

func TestVirtualizerDropFront(t *testing.T) {
	v := NewVirtualizer()
	v.SetCount(4)
	v.Measure(0, 2)
	v.Measure(1, 3)
	v.Measure(2, 5)
	v.Measure(3, 7)

	v.DropFront(2)

	if got := v.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if got := v.Height(0); got != 5 {
		t.Errorf("Height(0) after drop = %d, want 5", got)
	}
	if got := v.TotalHeight(); got != 12 {
		t.Errorf("TotalHeight() = %d, want 12", got)
	}
}

func TestVirtualizerScrollTargets(t *testing.T) {
	v := NewVirtualizer()
	v.SetCount(10)
	for i := 0; i < 10; i++ {
		v.Measure(i, 5)
	}

	// Extent 50, view 20: max scroll 30.
	if got := v.MaxScrollTop(20); got != 30 {
		t.Errorf("MaxScrollTop(20) = %d, want 30", got)
	}

	// Bottom-align row 9: its bottom is at 50, view of 20 starts at 30.
	if got := v.ScrollTopForIndex(9, 20); got != 30 {
		t.Errorf("ScrollTopForIndex(9, 20) = %d, want 30", got)
	}
	// Bottom-align row 2: bottom at 15, view of 20 clamps to 0.
	if got := v.ScrollTopForIndex(2, 20); got != 0 {
		t.Errorf("ScrollTopForIndex(2, 20) = %d, want 0", got)
	}

	if got := v.ClampScrollTop(-5, 20); got != 0 {
		t.Errorf("ClampScrollTop(-5) = %d, want 0", got)
	}
	if got := v.ClampScrollTop(99, 20); got != 30 {
		t.Errorf("ClampScrollTop(99) = %d, want 30", got)
	}
}
