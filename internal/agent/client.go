// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the sidecar client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeSessionNotFound
	ErrTypeModelNotLoaded
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning      = &ClientError{Type: ErrTypeNotRunning, Message: "sidecar is not running"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrSessionNotFound = &ClientError{Type: ErrTypeSessionNotFound, Message: "session not found"}
	ErrModelNotLoaded  = &ClientError{Type: ErrTypeModelNotLoaded, Message: "model not loaded"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the sidecar client.
type ClientConfig struct {
	// BaseURL is the sidecar API base URL (default: http://127.0.0.1:8161)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// MaxTokens is the per-request generation cap sent to the sidecar
	// (0 = sidecar default)
	MaxTokens int

	// RequestsPerSecond paces request submission; health checks and session
	// calls share the limiter (default: 4)
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8161",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the FuxiQuant sidecar API.
// It provides session lifecycle calls and the streaming chat operation.
//
// The Client is safe for concurrent use, though the TUI issues at most one
// chat stream at a time.
//
// Example:
//
//	client := agent.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    log.Fatal("sidecar not available:", err)
//	}
//	err := client.Chat(ctx, sessID, "hello", func(ev agent.StreamEvent) { ... })
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new sidecar client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new sidecar client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8161"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 4
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the sidecar is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "health check throttled", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from sidecar: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// CreateSession registers a session with the sidecar. Idempotent: creating
// an existing session succeeds.
func (c *Client) CreateSession(ctx context.Context, sessionID string) error {
	body, err := json.Marshal(CreateSessionRequest{SessionID: sessionID})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	return c.postSessionOp(ctx, "/api/sessions", body)
}

// ResetSession asks the sidecar to drop the context of a session while
// keeping it registered. Best-effort: callers log failures and continue.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	return c.postSessionOp(ctx, "/api/sessions/"+sessionID+"/reset", nil)
}

// RemoveSession asks the sidecar to drop a session entirely. Idempotent:
// removing an unknown session succeeds.
func (c *Client) RemoveSession(ctx context.Context, sessionID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "request throttled", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.BaseURL+"/api/sessions/"+sessionID, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "remove session failed: " + resp.Status,
		}
	}

	return nil
}

// postSessionOp issues a session lifecycle POST and maps the response.
func (c *Client) postSessionOp(ctx context.Context, path string, body []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "request throttled", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrSessionNotFound
	case http.StatusServiceUnavailable:
		return ErrModelNotLoaded
	default:
		var sidecarErr SidecarError
		if err := json.NewDecoder(resp.Body).Decode(&sidecarErr); err == nil && sidecarErr.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: sidecarErr.Error}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "session request failed: " + resp.Status,
		}
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// EventCallback is called for each event received during streaming.
type EventCallback func(ev StreamEvent)

// Chat sends a chat request and streams the reply, calling the callback for
// each event in arrival order. One attempt per turn: a failure to open the
// stream is returned synchronously and the caller synthesizes the terminal
// error event; no retries.
//
// The stream always ends with exactly one terminal event (done or error).
// Chat returns once the stream is finished.
func (c *Client) Chat(ctx context.Context, sessionID, message string, callback EventCallback) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "request throttled", Cause: err}
	}

	reqBody := ChatRequest{
		SessionID: sessionID,
		Message:   message,
		MaxTokens: c.config.MaxTokens,
		Stream:    true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming (we handle timeout via
	// context). The sidecar runs locally over plain HTTP.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to stream processing
	case http.StatusNotFound:
		return ErrSessionNotFound
	case http.StatusServiceUnavailable:
		return ErrModelNotLoaded
	default:
		var sidecarErr SidecarError
		if err := json.NewDecoder(resp.Body).Decode(&sidecarErr); err == nil && sidecarErr.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: sidecarErr.Error}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "chat request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// ChatStreamChan sends a chat request and returns a channel of events.
// The channel is closed after the terminal event. A synchronous open failure
// is synthesized as a trailing error event, so consumers see exactly one
// terminal event either way.
func (c *Client) ChatStreamChan(ctx context.Context, sessionID, message string) <-chan StreamEvent {
	ch := make(chan StreamEvent)

	go func() {
		defer close(ch)

		sawTerminal := false
		err := c.Chat(ctx, sessionID, message, func(ev StreamEvent) {
			if ev.Terminal() {
				sawTerminal = true
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})

		if err != nil && !sawTerminal {
			select {
			case ch <- StreamEvent{Type: EventError, Data: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// IsNotRunning checks if an error indicates the sidecar is not running.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsSessionNotFound checks if an error is a missing-session error.
func IsSessionNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeSessionNotFound
	}
	return errors.Is(err, ErrSessionNotFound)
}
