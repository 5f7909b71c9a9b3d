// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing a chat session and its bounded message history.
//
// # Key Types
//
//   - Session: one chat session; ordered messages, retention policy, and the
//     stream generation counter that ties events to the turn they belong to
//   - Message: single message with role, content, typing state, and the
//     reasoning-fold presentation flags
//   - Role: message role enumeration (user, assistant)
//
// # Usage
//
// Start a turn and stream into the placeholder:
//
//	sess := model.NewSession()
//	reply := sess.BeginTurn("hello")
//	sess.AppendToTyping("hi there")
//	sess.FinalizeTyping()
//	_ = reply
package model
