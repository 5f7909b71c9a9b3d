// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface: one-shot questions,
// a readline-style REPL, status and stats reporting, and configuration
// management. The TUI remains the default when fuxi is run bare.
package cli
