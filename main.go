// fuxi TUI - terminal chat for the FuxiQuant local inference sidecar.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/cli"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/telemetry"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate

	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdAsk:
		err = cli.RunAsk(args)
	case cli.CmdChat:
		err = cli.RunChat(args)
	case cli.CmdStatus:
		err = cli.RunStatus(args)
	case cli.CmdConfig:
		err = cli.RunConfig(args)
	case cli.CmdStats:
		err = cli.RunStats(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		err = runTUI(args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) error {
	cfg := config.Global()

	client := agent.NewClientWithConfig(&agent.ClientConfig{
		BaseURL:           sidecarURL(cfg, args),
		Timeout:           time.Duration(cfg.Sidecar.TimeoutSecs) * time.Second,
		MaxTokens:         cfg.Sidecar.MaxTokens,
		RequestsPerSecond: cfg.Sidecar.RequestsPerSecond,
	})

	// Telemetry is local-only and best-effort: a broken stats database
	// never blocks the chat.
	var recorder *telemetry.Recorder
	if cfg.Telemetry.Enabled {
		if dbPath, err := cli.StatsDBPath(cfg); err == nil {
			if rec, err := telemetry.Open(dbPath); err == nil {
				recorder = rec
			}
		}
	}
	defer recorder.Close()

	m := chat.New(cfg, client, recorder, Version)

	p := tea.NewProgram(
		appModel{chat: m},
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Hot-reload config edits into the running program.
	if watcher, err := config.NewWatcher(func(*config.Config) {
		p.Send(chat.ConfigReloadedMsg{})
	}); err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running fuxi: %w", err)
	}
	return nil
}

// sidecarURL resolves the sidecar base URL from config plus CLI override.
func sidecarURL(cfg *config.Config, args cli.Args) string {
	if args.BaseURL != "" {
		return args.BaseURL
	}
	return cfg.Sidecar.BaseURL
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// appModel adapts the chat model to the tea.Model interface.
type appModel struct {
	chat chat.Model
}

func (a appModel) Init() tea.Cmd {
	return a.chat.Init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a appModel) View() string {
	return a.chat.View()
}
