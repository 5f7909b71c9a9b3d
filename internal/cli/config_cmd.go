// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for fuxi.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fuxi-quant/fuxi-tui/internal/config"
)

// RunConfig dispatches config subcommands.
func RunConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return runConfigShow(config.Global(), args.JSON)

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "set":
		return runConfigSet(args.ConfigKey, args.ConfigVal)

	case "reset":
		cfg := config.Default()
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		config.SetGlobal(cfg)
		fmt.Println("config reset to defaults")
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (show, path, set, reset)", args.Subcommand)
	}
}

func runConfigShow(cfg *config.Config, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	fmt.Printf(`sidecar.base_url              = %s
sidecar.max_tokens            = %d
sidecar.timeout_secs          = %d
sidecar.requests_per_second   = %g
chat.greeting_enabled         = %v
chat.reasoning_auto_collapse  = %v
chat.drain_profile            = %s
ui.theme                      = %s
ui.syntax_theme               = %s
ui.markdown_enabled           = %v
ui.compact_mode               = %v
telemetry.enabled             = %v
telemetry.db_path             = %s
`,
		cfg.Sidecar.BaseURL,
		cfg.Sidecar.MaxTokens,
		cfg.Sidecar.TimeoutSecs,
		cfg.Sidecar.RequestsPerSecond,
		cfg.Chat.GreetingEnabled,
		cfg.Chat.ReasoningAutoCollapse,
		cfg.Chat.DrainProfile,
		cfg.UI.Theme,
		cfg.UI.SyntaxTheme,
		cfg.UI.MarkdownEnabled,
		cfg.UI.CompactMode,
		cfg.Telemetry.Enabled,
		cfg.Telemetry.DBPath,
	)
	return nil
}

// runConfigSet sets one config key, validates, and saves.
func runConfigSet(key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: fuxi config set <key> <value>")
	}

	cfg := config.Global().Clone()
	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	config.SetGlobal(cfg)
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

// applyConfigKey writes one dotted key into the config.
func applyConfigKey(cfg *config.Config, key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s wants true/false, got %q", key, value)
		}
		return b, nil
	}

	switch strings.ToLower(key) {
	case "sidecar.base_url":
		cfg.Sidecar.BaseURL = value
	case "sidecar.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s wants an integer, got %q", key, value)
		}
		cfg.Sidecar.MaxTokens = n
	case "sidecar.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s wants an integer, got %q", key, value)
		}
		cfg.Sidecar.TimeoutSecs = n
	case "chat.greeting_enabled":
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.Chat.GreetingEnabled = b
	case "chat.reasoning_auto_collapse":
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.Chat.ReasoningAutoCollapse = b
	case "chat.drain_profile":
		cfg.Chat.DrainProfile = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.syntax_theme":
		cfg.UI.SyntaxTheme = value
	case "ui.markdown_enabled":
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.UI.MarkdownEnabled = b
	case "ui.compact_mode":
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.UI.CompactMode = b
	case "telemetry.enabled":
		b, err := parseBool()
		if err != nil {
			return err
		}
		cfg.Telemetry.Enabled = b
	case "telemetry.db_path":
		cfg.Telemetry.DBPath = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
