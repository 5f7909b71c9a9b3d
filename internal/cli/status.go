// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Sidecar status command for fuxi.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fuxi-quant/fuxi-tui/internal/agent"
	"github.com/fuxi-quant/fuxi-tui/internal/config"
	"github.com/fuxi-quant/fuxi-tui/internal/ui/styles"
)

// statusReport is the machine-readable status payload.
type statusReport struct {
	SidecarURL   string `json:"sidecar_url"`
	Reachable    bool   `json:"reachable"`
	LatencyMS    int64  `json:"latency_ms"`
	Error        string `json:"error,omitempty"`
	DrainProfile string `json:"drain_profile"`
	Telemetry    bool   `json:"telemetry"`
	Version      string `json:"version"`
}

// RunStatus checks sidecar reachability and prints the result.
func RunStatus(args Args) error {
	cfg := config.Global()
	client := newClient(cfg, args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report := statusReport{
		SidecarURL:   client.GetConfig().BaseURL,
		DrainProfile: cfg.Chat.DrainProfile,
		Telemetry:    cfg.Telemetry.Enabled,
		Version:      Version,
	}

	start := time.Now()
	err := client.CheckRunning(ctx)
	report.LatencyMS = time.Since(start).Milliseconds()
	report.Reachable = err == nil
	if err != nil {
		report.Error = err.Error()
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("fuxi %s\n\n", Version)
	if report.Reachable {
		fmt.Println(styles.RenderSuccess(fmt.Sprintf("sidecar reachable at %s (%dms)", report.SidecarURL, report.LatencyMS)))
	} else {
		fmt.Println(styles.RenderError(fmt.Sprintf("sidecar unreachable at %s", report.SidecarURL)))
		if agent.IsNotRunning(err) {
			fmt.Println(styles.RenderInfo("start the FuxiQuant sidecar, then retry"))
		} else if report.Error != "" {
			fmt.Println("  " + report.Error)
		}
	}
	fmt.Printf("\ndrain profile: %s\ntelemetry:     %v\n", report.DrainProfile, report.Telemetry)

	if !report.Reachable {
		os.Exit(1)
	}
	return nil
}
