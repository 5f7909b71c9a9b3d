// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the fuxi-tui
// chat: message rendering with the reasoning fold, syntax-highlighted code
// blocks, the status bar, spinners, and the welcome screen.
//
// # Rendering Pipeline
//
// MessageView is the single entry point for turning a model.Message into
// styled terminal text. Streaming replies render plainly with chroma code
// blocks so partial markdown never flickers; finalized replies re-render
// through glamour. Parse results are cached per message so unchanged
// messages cost nothing on redraw.
//
// All width math uses go-runewidth so wide characters and emojis wrap
// correctly.
package components
