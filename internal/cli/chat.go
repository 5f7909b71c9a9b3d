// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL chat for fuxi.
//
// A readline-style alternative to the TUI for terminals where a full
// alternate-screen interface is unwanted (ssh sessions, tmux panes, logs
// that should stay scrollable).
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
	"github.com/fuxi-quant/fuxi-tui/internal/util"
)

// cleanupTimeout bounds the best-effort backend session cleanup.
const cleanupTimeout = 3 * time.Second

// newSessionSuffix returns a fresh backend session ID suffix.
func newSessionSuffix() string {
	return uuid.NewString()
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt, with arrow-key
// history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history atomically with owner-only
// permissions.
func (c *ChatCLI) SaveHistory() {
	var buf bytes.Buffer
	if _, err := c.line.WriteHistory(&buf); err != nil {
		return
	}
	_ = util.AtomicWriteFile(c.historyFile, buf.Bytes(), 0600)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// RunChat runs the interactive REPL.
func RunChat(args Args) error {
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

	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		fmt.Println(styles.RenderInfo("fuxi chat - /help for commands, ctrl+d to exit"))
	}

	turns := 0
	started := time.Now()

	for {
		line, err := input.ReadInput("fuxi> ")
		if err != nil {
			// Ctrl+C or EOF: exit gracefully.
			fmt.Println()
			printExitSummary(turns, started)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := handleSlashCommand(line, client, sessionID, args)
			if err != nil {
				fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
			}
			if !keepGoing {
				printExitSummary(turns, started)
				return nil
			}
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			printExitSummary(turns, started)
			return nil
		}

		askArgs := args
		askArgs.Query = line
		if _, err := streamToStdout(ctx, client, sessionID, askArgs); err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
			continue
		}
		turns++
	}
}

// handleSlashCommand dispatches REPL commands. Returns false to exit.
func handleSlashCommand(line string, client *agent.Client, sessionID string, args Args) (bool, error) {
	cmd := strings.Fields(line)[0]

	switch cmd {
	case "/help", "/h":
		fmt.Println(`Commands:
  /clear      Reset the conversation
  /stats      Show local streaming stats
  /config     Show active configuration
  /quit, /q   Exit`)
		return true, nil

	case "/clear":
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := client.ResetSession(ctx, sessionID); err != nil {
			return true, fmt.Errorf("reset session: %w", err)
		}
		fmt.Println(styles.RenderSuccess("conversation cleared"))
		return true, nil

	case "/stats":
		statsArgs := args
		statsArgs.Days = 7
		return true, RunStats(statsArgs)

	case "/config":
		return true, runConfigShow(config.Global(), false)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command %q (try /help)", cmd)
	}
}

// printExitSummary prints a one-line session wrap-up.
func printExitSummary(turns int, started time.Time) {
	if turns == 0 {
		return
	}
	fmt.Printf("%d turns in %s\n", turns, time.Since(started).Round(time.Second))
}
