// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader processes a newline-delimited JSON event stream from the
// sidecar. Each line decodes to one StreamEvent; malformed lines are skipped
// rather than aborting the stream.
type StreamReader struct {
	scanner *bufio.Scanner
}

// NewStreamReader creates a reader over an NDJSON event stream.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	// Token events are small, but error data can carry a full sidecar
	// traceback; allow lines up to 1MB.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	return &StreamReader{scanner: scanner}
}

// Process reads events until the terminal event, EOF, or context
// cancellation, invoking the callback for each decoded event in order.
//
// A stream that ends without a terminal event (sidecar crash mid-reply) is
// reported as an error so callers can synthesize the trailing error event.
func (r *StreamReader) Process(ctx context.Context, callback EventCallback) error {
	for r.scanner.Scan() {
		select {
		case <-ctx.Done():
			return &ClientError{Type: ErrTypeTimeout, Message: "stream cancelled", Cause: ctx.Err()}
		default:
		}

		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev StreamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			// Skip malformed lines; the terminal event still arrives.
			continue
		}

		if callback != nil {
			callback(ev)
		}

		if ev.Terminal() {
			return nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &ClientError{Type: ErrTypeTimeout, Message: "stream cancelled", Cause: err}
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
	}

	return &ClientError{Type: ErrTypeConnection, Message: "stream ended without terminal event"}
}
