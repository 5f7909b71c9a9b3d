// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the FuxiQuant inference
// sidecar, the local process that hosts the model and streams replies.
//
// # Key Types
//
//   - Client: session lifecycle and streaming chat over the sidecar API
//   - StreamEvent: one NDJSON event (token, done, or error)
//   - ClientError: categorized errors with sentinel values for common cases
//
// # Streaming
//
// Chat invokes a callback per event; ChatStreamChan adapts that to a channel
// that is closed after the terminal event. Every stream ends with exactly one
// terminal event, including streams that fail to open.
//
// # Usage
//
//	client := agent.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    // sidecar offline
//	}
//	for ev := range client.ChatStreamChan(ctx, sessID, "hello") {
//	    switch ev.Type {
//	    case agent.EventToken:
//	        // append ev.Data
//	    case agent.EventDone:
//	        // finalize
//	    case agent.EventError:
//	        // surface ev.Data
//	    }
//	}
package agent
