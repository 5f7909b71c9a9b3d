// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// SCROLL-FOLLOW CONTROLLER
// =============================================================================

// FollowState is the scroll-follow mode.
type FollowState int

const (
	// Following pins the view to the newest content: every content
	// growth triggers an instant scroll to the last row.
	Following FollowState = iota
	// Detached leaves scroll position under user control until an
	// explicit re-follow trigger fires.
	Detached
)

func (s FollowState) String() string {
	if s == Following {
		return "following"
	}
	return "detached"
}

// ScrollSource distinguishes who moved the viewport. Programmatic scrolls
// issued while following must never be mistaken for the user taking over.
type ScrollSource int

const (
	SourceUser ScrollSource = iota
	SourceProgram
)

// atBottomThreshold is how close to the end (in lines) the view can be and
// still count as at-bottom for the jump affordance.
const atBottomThreshold = 2

// FollowController reconciles autoscroll with user-initiated scrolling.
// Transitions are purely event-driven; there are no timeouts.
type FollowController struct {
	state    FollowState
	atBottom bool
}

// NewFollowController starts in Following with the view at the bottom.
func NewFollowController() *FollowController {
	return &FollowController{
		state:    Following,
		atBottom: true,
	}
}

// State returns the current mode.
func (f *FollowController) State() FollowState {
	return f.state
}

// IsFollowing reports whether autoscroll is active.
func (f *FollowController) IsFollowing() bool {
	return f.state == Following
}

// AtBottom reports the derived display flag used to decide whether the
// "jump to latest" affordance is visible. It is never authoritative for
// mode transitions: being at the bottom does not re-enter Following.
func (f *FollowController) AtBottom() bool {
	return f.atBottom
}

// HandleScroll records a scroll event. A user-initiated scroll while
// following detaches; a programmatic scroll never does.
func (f *FollowController) HandleScroll(source ScrollSource) {
	if source == SourceUser && f.state == Following {
		f.state = Detached
	}
}

// ForceFollow re-enters Following unconditionally. Fired by sending a new
// message or the explicit jump-to-bottom action.
func (f *FollowController) ForceFollow() {
	f.state = Following
	f.atBottom = true
}

// UpdateAtBottom recomputes the at-bottom flag from the current geometry.
func (f *FollowController) UpdateAtBottom(totalHeight, scrollTop, viewHeight int) {
	f.atBottom = totalHeight-scrollTop-viewHeight < atBottomThreshold
}
