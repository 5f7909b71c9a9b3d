// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/fuxi-quant/fuxi-tui/internal/config"
)

// =============================================================================
// ARGUMENT PARSING TESTS
// =============================================================================

func TestParseFromCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		cmd  Command
	}{
		{"bare", nil, CmdTUI},
		{"tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"config", []string{"config"}, CmdConfig},
		{"stats", []string{"stats"}, CmdStats},
		{"version", []string{"version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"bare question", []string{"why", "is", "it", "slow"}, CmdAsk},
	}

	for _, tt := range tests {
		cmd, _ := ParseFrom(tt.argv)
		if cmd != tt.cmd {
			t.Errorf("%s: ParseFrom(%v) = %v, want %v", tt.name, tt.argv, cmd, tt.cmd)
		}
	}
}

func TestParseFromAskQuery(t *testing.T) {
	cmd, args := ParseFrom([]string{"ask", "what", "is", "drift"})
	if cmd != CmdAsk {
		t.Fatalf("command = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is drift" {
		t.Errorf("Query = %q, want %q", args.Query, "what is drift")
	}

	// Unknown leading word folds into the query.
	_, args = ParseFrom([]string{"explain", "basis", "risk"})
	if args.Query != "explain basis risk" {
		t.Errorf("Query = %q, want %q", args.Query, "explain basis risk")
	}
}

func TestParseFromGlobalFlags(t *testing.T) {
	cmd, args := ParseFrom([]string{"--json", "-v", "--url", "http://127.0.0.1:9000", "status"})
	if cmd != CmdStatus {
		t.Fatalf("command = %v, want CmdStatus", cmd)
	}
	if !args.JSON || !args.Verbose {
		t.Error("global flags not parsed")
	}
	if args.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}

	_, args = ParseFrom([]string{"--url=http://10.0.0.1:8161", "ask", "hi"})
	if args.BaseURL != "http://10.0.0.1:8161" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
}

func TestParseFromConfigSet(t *testing.T) {
	cmd, args := ParseFrom([]string{"config", "set", "chat.drain_profile", "fast"})
	if cmd != CmdConfig {
		t.Fatalf("command = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "set" || args.ConfigKey != "chat.drain_profile" || args.ConfigVal != "fast" {
		t.Errorf("parsed set = %q %q %q", args.Subcommand, args.ConfigKey, args.ConfigVal)
	}

	_, args = ParseFrom([]string{"config"})
	if args.Subcommand != "show" {
		t.Errorf("default subcommand = %q, want show", args.Subcommand)
	}
}

func TestParseFromStatsDays(t *testing.T) {
	_, args := ParseFrom([]string{"stats", "--days", "7"})
	if args.Days != 7 {
		t.Errorf("Days = %d, want 7", args.Days)
	}
	_, args = ParseFrom([]string{"stats", "--days=30"})
	if args.Days != 30 {
		t.Errorf("Days = %d, want 30", args.Days)
	}
}

// =============================================================================
// CONFIG KEY TESTS
// =============================================================================

func TestApplyConfigKey(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"sidecar.base_url", "http://127.0.0.1:9999", false},
		{"sidecar.max_tokens", "2048", false},
		{"sidecar.max_tokens", "lots", true},
		{"chat.drain_profile", "fast", false},
		{"chat.reasoning_auto_collapse", "false", false},
		{"chat.reasoning_auto_collapse", "maybe", true},
		{"telemetry.enabled", "true", false},
		{"no.such.key", "x", true},
	}

	for _, tt := range tests {
		err := applyConfigKey(cfg, tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("applyConfigKey(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}

	if cfg.Sidecar.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", cfg.Sidecar.MaxTokens)
	}
	if cfg.Chat.DrainProfile != "fast" {
		t.Errorf("DrainProfile = %q, want fast", cfg.Chat.DrainProfile)
	}
	if cfg.Chat.ReasoningAutoCollapse {
		t.Error("ReasoningAutoCollapse should be false")
	}
}
