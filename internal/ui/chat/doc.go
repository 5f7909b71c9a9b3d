// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the streaming chat view.
//
// Tokens from the sidecar land in a pending buffer and are revealed by a
// backlog-adaptive drain scheduler at a steady cadence, so bursty network
// arrival never shows up as jittery text. The transcript is virtualized:
// only rows intersecting the viewport are rendered, with estimated heights
// refined to measured ones as rows are rendered. A small follow state
// machine keeps the viewport pinned to the live edge until the user scrolls
// away, and never steals the scrollback position back.
package chat
