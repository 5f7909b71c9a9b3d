// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for fuxi-tui.
//
// # Sources
//
// Configuration merges, in order of precedence:
//
//  1. FUXI_* environment variables
//  2. ~/.fuxi/config.toml (or config.json)
//  3. Built-in defaults
//
// # Hot Reload
//
// A Watcher observes the config directory via fsnotify and reloads the
// global config when the file changes, invoking a callback so the UI can
// pick up theme or pacing changes without a restart.
//
// # Usage
//
//	cfg := config.Global()
//	w, _ := config.NewWatcher(func(cfg *config.Config) {
//	    program.Send(chat.ConfigReloadedMsg{})
//	})
//	_ = w.Watch()
//	defer w.Close()
package config
