// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stats.go - Local streaming stats command for fuxi.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/telemetry"
)

// StatsDBPath resolves the stats database location from config.
func StatsDBPath(cfg *config.Config) (string, error) {
	if cfg.Telemetry.DBPath != "" {
		return cfg.Telemetry.DBPath, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "stats.db"), nil
}

// RunStats prints aggregate streaming stats for the given window.
func RunStats(args Args) error {
	cfg := config.Global()
	if !cfg.Telemetry.Enabled {
		fmt.Println("telemetry is disabled (fuxi config set telemetry.enabled true)")
		return nil
	}

	dbPath, err := StatsDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve stats db: %w", err)
	}

	rec, err := telemetry.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open stats db: %w", err)
	}
	defer rec.Close()

	sum, err := rec.Summarize(args.Days)
	if err != nil {
		return err
	}

	if args.JSON {
		out := struct {
			Days          int   `json:"days"`
			Turns         int   `json:"turns"`
			AvgTTFTMS     int64 `json:"avg_ttft_ms"`
			AvgDurationMS int64 `json:"avg_duration_ms"`
			TotalRevealed int64 `json:"total_revealed_chars"`
			MaxBacklog    int   `json:"max_backlog"`
			Errors        int   `json:"errors"`
		}{
			Days:          args.Days,
			Turns:         sum.Turns,
			AvgTTFTMS:     sum.AvgTTFT.Milliseconds(),
			AvgDurationMS: sum.AvgDuration.Milliseconds(),
			TotalRevealed: sum.TotalRevealed,
			MaxBacklog:    sum.MaxBacklog,
			Errors:        sum.Errors,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	window := "all time"
	if args.Days > 0 {
		window = fmt.Sprintf("last %d days", args.Days)
	}
	fmt.Printf("streaming stats (%s)\n\n", window)
	if sum.Turns == 0 {
		fmt.Println("no turns recorded")
		return nil
	}
	fmt.Printf("  turns:            %d\n", sum.Turns)
	fmt.Printf("  avg first token:  %s\n", sum.AvgTTFT.Round(time.Millisecond))
	fmt.Printf("  avg turn:         %s\n", sum.AvgDuration.Round(time.Millisecond))
	fmt.Printf("  chars revealed:   %d\n", sum.TotalRevealed)
	fmt.Printf("  peak backlog:     %d\n", sum.MaxBacklog)
	fmt.Printf("  errors:           %d\n", sum.Errors)
	return nil
}
