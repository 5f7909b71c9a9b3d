// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestClient returns a client pointed at the given test server, with the
// rate limiter effectively disabled.
func newTestClient(srv *httptest.Server) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:           srv.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	})
}

// writeNDJSON writes one event per line and flushes.
func writeNDJSON(w http.ResponseWriter, events ...StreamEvent) {
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for _, ev := range events {
		_ = enc.Encode(ev)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// =============================================================================
// EVENT TESTS
// =============================================================================

func TestStreamEventTerminal(t *testing.T) {
	tests := []struct {
		ev       StreamEvent
		terminal bool
	}{
		{StreamEvent{Type: EventToken, Data: "hi"}, false},
		{StreamEvent{Type: EventDone}, true},
		{StreamEvent{Type: EventError, Data: "boom"}, true},
	}

	for _, tt := range tests {
		if got := tt.ev.Terminal(); got != tt.terminal {
			t.Errorf("Terminal() for %q = %v, want %v", tt.ev.Type, got, tt.terminal)
		}
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %q, want /api/health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() = %v, want nil", err)
	}
}

func TestCheckRunningOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	client := newTestClient(srv)
	err := client.CheckRunning(context.Background())

	if !IsNotRunning(err) {
		t.Errorf("CheckRunning() against closed server = %v, want not-running error", err)
	}
}

// =============================================================================
// SESSION LIFECYCLE TESTS
// =============================================================================

func TestCreateSession(t *testing.T) {
	var gotBody CreateSessionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions" {
			t.Errorf("request = %s %s, want POST /api/sessions", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.CreateSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("CreateSession() = %v, want nil", err)
	}

	if gotBody.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want 'sess-1'", gotBody.SessionID)
	}
}

func TestResetSessionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	err := client.ResetSession(context.Background(), "missing")

	if !IsSessionNotFound(err) {
		t.Errorf("ResetSession() = %v, want session-not-found error", err)
	}
}

func TestRemoveSessionIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		// Unknown session: removal still succeeds.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.RemoveSession(context.Background(), "gone"); err != nil {
		t.Errorf("RemoveSession() on unknown session = %v, want nil", err)
	}
}

// =============================================================================
// STREAMING CHAT TESTS
// =============================================================================

func TestChatStreamsEventsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.SessionID != "sess-1" {
			t.Errorf("SessionID = %q, want 'sess-1'", req.SessionID)
		}
		if req.Message != "hi" {
			t.Errorf("Message = %q, want 'hi'", req.Message)
		}

		writeNDJSON(w,
			StreamEvent{Type: EventToken, Data: "<think>"},
			StreamEvent{Type: EventToken, Data: "thinking"},
			StreamEvent{Type: EventToken, Data: "</think>"},
			StreamEvent{Type: EventToken, Data: "hello!"},
			StreamEvent{Type: EventDone},
		)
	}))
	defer srv.Close()

	client := newTestClient(srv)

	var got []StreamEvent
	err := client.Chat(context.Background(), "sess-1", "hi", func(ev StreamEvent) {
		got = append(got, ev)
	})
	if err != nil {
		t.Fatalf("Chat() = %v, want nil", err)
	}

	if len(got) != 5 {
		t.Fatalf("received %d events, want 5", len(got))
	}

	var text strings.Builder
	for _, ev := range got[:4] {
		if ev.Type != EventToken {
			t.Errorf("event type = %q, want token", ev.Type)
		}
		text.WriteString(ev.Data)
	}
	if text.String() != "<think>thinking</think>hello!" {
		t.Errorf("concatenated tokens = %q", text.String())
	}

	if got[4].Type != EventDone {
		t.Errorf("last event = %q, want done", got[4].Type)
	}
}

func TestChatSkipsMalformedLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"token","data":"a"}`)
		fmt.Fprintln(w, `not json at all`)
		fmt.Fprintln(w, `{"type":"done"}`)
	}))
	defer srv.Close()

	client := newTestClient(srv)

	var got []StreamEvent
	err := client.Chat(context.Background(), "s", "m", func(ev StreamEvent) {
		got = append(got, ev)
	})
	if err != nil {
		t.Fatalf("Chat() = %v, want nil", err)
	}

	if len(got) != 2 {
		t.Fatalf("received %d events, want 2 (malformed line skipped)", len(got))
	}
}

func TestChatTruncatedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tokens but no terminal event: simulates a sidecar crash.
		writeNDJSON(w, StreamEvent{Type: EventToken, Data: "par"})
	}))
	defer srv.Close()

	client := newTestClient(srv)
	err := client.Chat(context.Background(), "s", "m", func(ev StreamEvent) {})

	if err == nil {
		t.Error("Chat() on truncated stream = nil, want error")
	}
}

func TestChatErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeNDJSON(w,
			StreamEvent{Type: EventToken, Data: "par"},
			StreamEvent{Type: EventError, Data: "model crashed"},
		)
	}))
	defer srv.Close()

	client := newTestClient(srv)

	var last StreamEvent
	err := client.Chat(context.Background(), "s", "m", func(ev StreamEvent) {
		last = ev
	})
	if err != nil {
		t.Fatalf("Chat() = %v, want nil (error arrives as event)", err)
	}

	if last.Type != EventError || last.Data != "model crashed" {
		t.Errorf("last event = %+v, want error event with reason", last)
	}
}

func TestChatStreamChanClosesAfterTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeNDJSON(w,
			StreamEvent{Type: EventToken, Data: "hey"},
			StreamEvent{Type: EventDone},
		)
	}))
	defer srv.Close()

	client := newTestClient(srv)

	var got []StreamEvent
	for ev := range client.ChatStreamChan(context.Background(), "s", "m") {
		got = append(got, ev)
	}

	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if !got[len(got)-1].Terminal() {
		t.Error("channel closed without terminal event")
	}
}

func TestChatStreamChanSynthesizesErrorOnOpenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := newTestClient(srv)

	var got []StreamEvent
	for ev := range client.ChatStreamChan(context.Background(), "s", "m") {
		got = append(got, ev)
	}

	if len(got) != 1 {
		t.Fatalf("received %d events, want exactly 1 synthesized error", len(got))
	}
	if got[0].Type != EventError {
		t.Errorf("event type = %q, want error", got[0].Type)
	}
}

// =============================================================================
// ERROR TAXONOMY TESTS
// =============================================================================

func TestErrorClassifiers(t *testing.T) {
	if !IsNotRunning(ErrNotRunning) {
		t.Error("IsNotRunning(ErrNotRunning) = false")
	}
	if !IsTimeout(ErrTimeout) {
		t.Error("IsTimeout(ErrTimeout) = false")
	}
	if IsNotRunning(ErrTimeout) {
		t.Error("IsNotRunning(ErrTimeout) = true")
	}

	wrapped := &ClientError{Type: ErrTypeTimeout, Message: "slow", Cause: context.DeadlineExceeded}
	if !IsTimeout(wrapped) {
		t.Error("IsTimeout(wrapped timeout) = false")
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := &ClientError{Type: ErrTypeConnection, Message: "failed", Cause: cause}

	if err.Unwrap() != cause {
		t.Error("Unwrap() did not return cause")
	}
	if !strings.Contains(err.Error(), "underlying") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != "http://127.0.0.1:8161" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}

	// Zero-value config gets the same defaults.
	client := NewClientWithConfig(&ClientConfig{})
	if client.config.BaseURL != cfg.BaseURL {
		t.Errorf("zero-value BaseURL = %q", client.config.BaseURL)
	}
}
