// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// VIEWPORT VIRTUALIZER
// =============================================================================

// estimatedRowHeight is the assumed height of an unmeasured row in terminal
// lines: a one-line header, one content line, and a blank separator.
const estimatedRowHeight = 3

// overscanRows is how many extra rows are materialized above and below the
// visible span so small scrolls never expose unrendered gaps.
const overscanRows = 2

// Virtualizer tracks per-row heights over the message list so the view can
// materialize only the rows intersecting the visible scroll range. Heights
// start as estimates and are replaced by measurements after each render
// commit; the total scrollable extent is recomputed on every update.
//
// PERFORMANCE: rendering cost per frame is bounded by the window size, not
// the transcript length.
type Virtualizer struct {
	heights  []int
	measured []bool

	// offsets[i] is the top of row i; offsets[len] is the total extent.
	// Rebuilt lazily after any height or count change.
	offsets []int
	dirty   bool
}

// NewVirtualizer creates an empty virtualizer.
func NewVirtualizer() *Virtualizer {
	return &Virtualizer{dirty: true}
}

// =============================================================================
// ROW MANAGEMENT
// =============================================================================

// SetCount resizes to n rows. New rows get the estimated height; surviving
// rows keep their measurements.
func (v *Virtualizer) SetCount(n int) {
	if n < 0 {
		n = 0
	}

	switch {
	case n < len(v.heights):
		v.heights = v.heights[:n]
		v.measured = v.measured[:n]
	case n > len(v.heights):
		for i := len(v.heights); i < n; i++ {
			v.heights = append(v.heights, estimatedRowHeight)
			v.measured = append(v.measured, false)
		}
	}
	v.dirty = true
}

// DropFront removes the first k rows, shifting the rest up. Used when the
// retention policy evicts the oldest messages.
func (v *Virtualizer) DropFront(k int) {
	if k <= 0 {
		return
	}
	if k > len(v.heights) {
		k = len(v.heights)
	}
	v.heights = append(v.heights[:0], v.heights[k:]...)
	v.measured = append(v.measured[:0], v.measured[k:]...)
	v.dirty = true
}

// Reset discards all rows.
func (v *Virtualizer) Reset() {
	v.heights = v.heights[:0]
	v.measured = v.measured[:0]
	v.dirty = true
}

// Count returns the number of rows.
func (v *Virtualizer) Count() int {
	return len(v.heights)
}

// =============================================================================
// MEASUREMENT
// =============================================================================

// Measure records the rendered height of row i, superseding the estimate.
// Must be called only after the render that produced the height has been
// committed, so measurements never race structural updates.
func (v *Virtualizer) Measure(i, height int) {
	if i < 0 || i >= len(v.heights) || height < 1 {
		return
	}
	if v.heights[i] == height && v.measured[i] {
		return
	}
	v.heights[i] = height
	v.measured[i] = true
	v.dirty = true
}

// InvalidateAll reverts every row to measured-pending state, keeping the
// last known heights as estimates. Called on width changes, which change
// wrapping and thus every height.
func (v *Virtualizer) InvalidateAll() {
	for i := range v.measured {
		v.measured[i] = false
	}
	v.dirty = true
}

// IsMeasured reports whether row i has a committed measurement.
func (v *Virtualizer) IsMeasured(i int) bool {
	return i >= 0 && i < len(v.measured) && v.measured[i]
}

// Height returns the current (measured-or-estimated) height of row i.
func (v *Virtualizer) Height(i int) int {
	if i < 0 || i >= len(v.heights) {
		return 0
	}
	return v.heights[i]
}

// =============================================================================
// GEOMETRY
// =============================================================================

// rebuild recomputes the prefix offsets.
func (v *Virtualizer) rebuild() {
	if !v.dirty {
		return
	}

	if cap(v.offsets) < len(v.heights)+1 {
		v.offsets = make([]int, len(v.heights)+1)
	} else {
		v.offsets = v.offsets[:len(v.heights)+1]
	}

	total := 0
	for i, h := range v.heights {
		v.offsets[i] = total
		total += h
	}
	v.offsets[len(v.heights)] = total
	v.dirty = false
}

// TotalHeight returns the total scrollable extent: the sum of all rows'
// current heights.
func (v *Virtualizer) TotalHeight() int {
	v.rebuild()
	return v.offsets[len(v.offsets)-1]
}

// OffsetOf returns the top line of row i.
func (v *Virtualizer) OffsetOf(i int) int {
	v.rebuild()
	if i < 0 {
		return 0
	}
	if i >= len(v.heights) {
		return v.TotalHeight()
	}
	return v.offsets[i]
}

// indexAt returns the row containing line y (binary search over offsets).
func (v *Virtualizer) indexAt(y int) int {
	v.rebuild()
	n := len(v.heights)
	if n == 0 || y < 0 {
		return 0
	}
	if y >= v.offsets[n] {
		return n - 1
	}

	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if v.offsets[mid] <= y {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Window returns the contiguous row range [start, end) intersecting the
// visible span [scrollTop, scrollTop+viewHeight) plus overscan.
func (v *Virtualizer) Window(scrollTop, viewHeight int) (start, end int) {
	n := len(v.heights)
	if n == 0 || viewHeight <= 0 {
		return 0, 0
	}

	start = v.indexAt(scrollTop) - overscanRows
	if start < 0 {
		start = 0
	}

	end = v.indexAt(scrollTop+viewHeight-1) + 1 + overscanRows
	if end > n {
		end = n
	}

	return start, end
}

// =============================================================================
// SCROLL TARGETS
// =============================================================================

// MaxScrollTop returns the largest valid scroll offset for a view of the
// given height.
func (v *Virtualizer) MaxScrollTop(viewHeight int) int {
	max := v.TotalHeight() - viewHeight
	if max < 0 {
		max = 0
	}
	return max
}

// ScrollTopForIndex returns the scroll offset that places the bottom of row
// i at the bottom of the view (the target for both instant and smooth
// jump-to-index).
func (v *Virtualizer) ScrollTopForIndex(i, viewHeight int) int {
	bottom := v.OffsetOf(i) + v.Height(i)
	top := bottom - viewHeight
	if top < 0 {
		top = 0
	}
	if max := v.MaxScrollTop(viewHeight); top > max {
		top = max
	}
	return top
}

// ClampScrollTop bounds a scroll offset to the valid range.
func (v *Virtualizer) ClampScrollTop(scrollTop, viewHeight int) int {
	if scrollTop < 0 {
		return 0
	}
	if max := v.MaxScrollTop(viewHeight); scrollTop > max {
		return max
	}
	return scrollTop
}
