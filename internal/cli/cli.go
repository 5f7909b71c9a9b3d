// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for fuxi-tui.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdStats
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	BaseURL string

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Days       int

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `fuxi - terminal chat for the FuxiQuant local inference sidecar

Fuxi streams replies from a locally running FuxiQuant sidecar and renders
them in the terminal, with reasoning folds and markdown output.

Usage:
  fuxi                       Start TUI (default)
  fuxi ask "question"        Ask a single question
  fuxi chat                  Interactive chat (readline-style)
  fuxi status, s             Show sidecar status
  fuxi config [show|path|set <key> <value>]
                             Configuration management
  fuxi stats [--days N]      Show local streaming stats
  fuxi version               Show version information
  fuxi help                  Show this help

Global flags:
  --url URL                  Sidecar base URL (default from config)
  --json                     Output in JSON format where supported
  -q, --quiet                Minimal output
  -v, --verbose              Verbose output (ask/chat: show reasoning)

Examples:
  fuxi ask "summarize today's BTC funding rates"
  fuxi ask --verbose "why did the backtest diverge?"
  fuxi status --json
  fuxi config set chat.drain_profile fast
  fuxi stats --days 7

Config keys:
  sidecar.base_url, sidecar.max_tokens, chat.drain_profile,
  chat.reasoning_auto_collapse, ui.theme, ui.syntax_theme,
  telemetry.enabled

Environment:
  FUXI_SIDECAR_URL, FUXI_MAX_TOKENS, FUXI_THEME, FUXI_DRAIN_PROFILE,
  FUXI_TELEMETRY override the corresponding config values.
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseFrom(os.Args[1:])
}

// ParseFrom parses the given argument list. Split out from Parse for tests.
func ParseFrom(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		args.Query = strings.Join(remaining, " ")
		return CmdAsk, args

	case "chat":
		return CmdChat, args

	case "status", "s":
		return CmdStatus, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "stats":
		parseStatsArgs(&args, remaining)
		return CmdStats, args

	case "version", "--version", "-V":
		return CmdVersion, args

	case "help", "--help", "-h":
		return CmdHelp, args

	default:
		// Unknown word: treat the whole line as an ask query, which makes
		// `fuxi why is the fill rate low` work.
		args.Query = strings.Join(append([]string{cmd}, remaining...), " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags strips global flags, returning the remaining positional
// arguments.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--url":
			if i+1 < len(argv) {
				i++
				args.BaseURL = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--url=") {
				args.BaseURL = strings.TrimPrefix(arg, "--url=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, args
}

// parseConfigArgs parses config subcommands: show (default), path, set, reset.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if args.Subcommand == "set" {
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// parseStatsArgs parses the stats window flag.
func parseStatsArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		switch {
		case remaining[i] == "--days" && i+1 < len(remaining):
			i++
			if n, err := strconv.Atoi(remaining[i]); err == nil {
				args.Days = n
			}
		case strings.HasPrefix(remaining[i], "--days="):
			if n, err := strconv.Atoi(strings.TrimPrefix(remaining[i], "--days=")); err == nil {
				args.Days = n
			}
		}
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// newClient builds a sidecar client from config plus CLI overrides.
func newClient(cfg *config.Config, args Args) *agent.Client {
	baseURL := cfg.Sidecar.BaseURL
	if args.BaseURL != "" {
		baseURL = args.BaseURL
	}
	return agent.NewClientWithConfig(&agent.ClientConfig{
		BaseURL:           baseURL,
		Timeout:           time.Duration(cfg.Sidecar.TimeoutSecs) * time.Second,
		MaxTokens:         cfg.Sidecar.MaxTokens,
		RequestsPerSecond: cfg.Sidecar.RequestsPerSecond,
	})
}

// PrintUsage writes the top-level usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information.
func PrintVersion() {
	fmt.Printf("fuxi %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
