// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package thinking parses the two-part response protocol emitted by the
// FuxiQuant sidecar: an optional reasoning segment delimited by <think> and
// </think>, followed by the visible answer.
package thinking

import "strings"

// Protocol markers emitted by the model.
const (
	OpenMarker  = "<think>"
	CloseMarker = "</think>"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// Result holds the parsed parts of an assistant message.
type Result struct {
	// Reasoning is the text between the markers (or after the opener while
	// the segment is still streaming).
	Reasoning string

	// HasReasoning reports whether an opening marker was found.
	HasReasoning bool

	// Response is the visible answer. Empty while the reasoning segment is
	// still open.
	Response string

	// Complete reports whether the closing marker has arrived.
	Complete bool
}

// =============================================================================
// PARSER
// =============================================================================

// Parse splits accumulated message content into reasoning and response.
//
// Parse is a pure function of its input: it re-scans the full content every
// time rather than keeping incremental state, so a marker split across two
// arrival chunks is detected correctly once enough text has accumulated.
func Parse(content string) Result {
	open := strings.Index(content, OpenMarker)
	if open < 0 {
		// No reasoning segment; the whole content is the answer.
		return Result{Response: content}
	}

	rest := content[open+len(OpenMarker):]
	close := strings.Index(rest, CloseMarker)
	if close < 0 {
		// Reasoning still streaming.
		return Result{
			Reasoning:    rest,
			HasReasoning: true,
		}
	}

	return Result{
		Reasoning:    rest[:close],
		HasReasoning: true,
		Response:     strings.TrimSpace(rest[close+len(CloseMarker):]),
		Complete:     true,
	}
}

// =============================================================================
// CACHED PARSER
// =============================================================================

// CachedParser memoizes the last Parse result keyed by content length.
//
// The chat view consults the parser on every render tick of a long-lived
// streaming message. Content is append-only while a message is typing, so an
// unchanged length means unchanged content and the previous result can be
// reused without a rescan.
//
// Not safe for concurrent use; each message view owns its own instance.
type CachedParser struct {
	lastLen int
	last    Result
	valid   bool
}

// NewCachedParser creates an empty cached parser.
func NewCachedParser() *CachedParser {
	return &CachedParser{}
}

// Parse returns the parse result for content, rescanning only when the
// content length has changed since the previous call.
func (p *CachedParser) Parse(content string) Result {
	if p.valid && len(content) == p.lastLen {
		return p.last
	}

	p.last = Parse(content)
	p.lastLen = len(content)
	p.valid = true
	return p.last
}

// Invalidate drops the memoized result. Call when the underlying message is
// replaced rather than appended to.
func (p *CachedParser) Invalidate() {
	p.valid = false
	p.lastLen = 0
	p.last = Result{}
}
