// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for fuxi.
//
// Handles "fuxi ask", which sends one question to the sidecar and streams
// the response to stdout.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/thinking"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the glamour renderer for finalized output, nil when
// initialization failed (plain text fallback).
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display, falling
// back to the raw content on any failure.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// stdoutIsTTY reports whether stdout is a terminal. Markdown and ANSI
// styling are skipped for piped output.
func stdoutIsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// RunAsk executes a single question and prints the reply.
func RunAsk(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return fmt.Errorf("ask: empty question (usage: fuxi ask \"question\")")
	}

	cfg := config.Global()
	client := newClient(cfg, args)

	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("sidecar not reachable: %w", err)
	}

	sessionID := "cli_" + newSessionSuffix()
	if err := client.CreateSession(ctx, sessionID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		_ = client.RemoveSession(cleanupCtx, sessionID)
	}()

	content, streamErr := streamToStdout(ctx, client, sessionID, args)
	if streamErr != nil {
		return streamErr
	}

	if args.JSON {
		return printAskJSON(args.Query, content)
	}

	// Streaming already echoed raw text; on a TTY, repaint the response
	// as rendered markdown.
	if stdoutIsTTY() && !args.Quiet {
		res := thinking.Parse(content)
		fmt.Println()
		fmt.Println(strings.Repeat("-", 40))
		fmt.Print(renderMarkdown(res.Response))
	}

	return nil
}

// streamToStdout streams one reply, echoing text as it arrives, and
// returns the accumulated content.
func streamToStdout(ctx context.Context, client *agent.Client, sessionID string, args Args) (string, error) {
	var sb strings.Builder
	inReasoning := false

	err := client.Chat(ctx, sessionID, args.Query, func(ev agent.StreamEvent) {
		switch ev.Type {
		case agent.EventToken:
			sb.WriteString(ev.Data)

			if args.JSON {
				return
			}
			// Reasoning passes through only in verbose mode, dimmed so it
			// reads as scratch work.
			text := ev.Data
			for text != "" {
				if inReasoning {
					end := strings.Index(text, thinking.CloseMarker)
					if end < 0 {
						if args.Verbose {
							fmt.Print(styles.RenderMuted(text))
						}
						return
					}
					if args.Verbose {
						fmt.Print(styles.RenderMuted(text[:end]))
						fmt.Println()
					}
					inReasoning = false
					text = text[end+len(thinking.CloseMarker):]
					continue
				}
				start := strings.Index(text, thinking.OpenMarker)
				if start < 0 {
					fmt.Print(text)
					return
				}
				fmt.Print(text[:start])
				inReasoning = true
				text = text[start+len(thinking.OpenMarker):]
			}

		case agent.EventError:
			if !args.JSON {
				fmt.Fprintf(os.Stderr, "\n%s %s\n", styles.RenderError("[error]"), ev.Data)
			}
			sb.WriteString(fmt.Sprintf("\n\n[error: %s]", ev.Data))
		}
	})
	if !args.JSON {
		fmt.Println()
	}
	return sb.String(), err
}

// printAskJSON emits the machine-readable result.
func printAskJSON(query, content string) error {
	res := thinking.Parse(content)
	out := struct {
		Query     string `json:"query"`
		Response  string `json:"response"`
		Reasoning string `json:"reasoning,omitempty"`
	}{
		Query:     query,
		Response:  res.Response,
		Reasoning: res.Reasoning,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
