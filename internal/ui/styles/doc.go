// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the fuxi-tui chat.
//
// # Design
//
// All colors are lipgloss.AdaptiveColor pairs so the UI renders correctly
// on both light and dark terminals. The Theme struct bundles every styled
// component; construct one with NewTheme at startup and share it across
// views.
//
//	theme := styles.NewTheme()
//	header := theme.Header.Render("FuxiQuant")
//
// # Animations
//
// Spinner frame sets, easing functions for the smooth-scroll animation,
// and the typing cursor live in animations.go. All indicator characters
// are ASCII-only for maximum terminal compatibility.
package styles
