// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fuxi-quant/fuxi-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete fuxi-tui configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Sidecar connection configuration
	Sidecar SidecarConfig `toml:"sidecar" json:"sidecar"`

	// Chat behavior configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Telemetry configuration
	Telemetry TelemetryConfig `toml:"telemetry" json:"telemetry"`
}

// SidecarConfig contains inference sidecar connection settings.
type SidecarConfig struct {
	// BaseURL is the sidecar API base URL
	BaseURL string `toml:"base_url" json:"base_url"`
	// MaxTokens caps generation length per request (0 = sidecar default)
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// TimeoutSecs is the timeout for non-streaming requests
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond paces request submission to the sidecar
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// GreetingEnabled seeds new sessions with the assistant greeting
	GreetingEnabled bool `toml:"greeting_enabled" json:"greeting_enabled"`
	// ReasoningAutoCollapse folds the reasoning section when the reply
	// transitions from reasoning to response
	ReasoningAutoCollapse bool `toml:"reasoning_auto_collapse" json:"reasoning_auto_collapse"`
	// DrainProfile selects the reveal pacing: "adaptive", "fast", "slow"
	// "adaptive" (default) scales reveal speed with backlog size
	DrainProfile string `toml:"drain_profile" json:"drain_profile"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// SyntaxTheme is the chroma style used for code blocks
	SyntaxTheme string `toml:"syntax_theme" json:"syntax_theme"`
	// MarkdownEnabled renders finalized responses through glamour
	MarkdownEnabled bool `toml:"markdown_enabled" json:"markdown_enabled"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// TelemetryConfig contains local usage statistics settings. Stats never
// leave the machine.
type TelemetryConfig struct {
	// Enabled controls whether per-turn stats are recorded
	Enabled bool `toml:"enabled" json:"enabled"`
	// DBPath is the stats database path (empty = ~/.fuxi/stats.db)
	DBPath string `toml:"db_path" json:"db_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Sidecar: SidecarConfig{
			BaseURL:           "http://127.0.0.1:8161",
			MaxTokens:         0, // sidecar default
			TimeoutSecs:       30,
			RequestsPerSecond: 4,
		},

		Chat: ChatConfig{
			GreetingEnabled:       true,
			ReasoningAutoCollapse: true,
			DrainProfile:          "adaptive",
		},

		UI: UIConfig{
			Theme:           "dark",
			SyntaxTheme:     "monokai",
			MarkdownEnabled: true,
			CompactMode:     false,
		},

		Telemetry: TelemetryConfig{
			Enabled: true,
			DBPath:  "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the fuxi configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".fuxi"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad applies env overrides, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# fuxi-tui configuration file")
	fmt.Fprintln(&buf, "# Generated by fuxi-tui - edit with care")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// DEFAULTS AND ENVIRONMENT OVERRIDES
// =============================================================================

// SetDefaults fills in any missing values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Sidecar.BaseURL == "" {
		c.Sidecar.BaseURL = defaults.Sidecar.BaseURL
	}
	if c.Sidecar.TimeoutSecs == 0 {
		c.Sidecar.TimeoutSecs = defaults.Sidecar.TimeoutSecs
	}
	if c.Sidecar.RequestsPerSecond == 0 {
		c.Sidecar.RequestsPerSecond = defaults.Sidecar.RequestsPerSecond
	}

	if c.Chat.DrainProfile == "" {
		c.Chat.DrainProfile = defaults.Chat.DrainProfile
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.SyntaxTheme == "" {
		c.UI.SyntaxTheme = defaults.UI.SyntaxTheme
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - FUXI_SIDECAR_URL: sidecar base URL
//   - FUXI_MAX_TOKENS: generation cap per request
//   - FUXI_THEME: UI theme
//   - FUXI_DRAIN_PROFILE: reveal pacing profile
//   - FUXI_TELEMETRY: "0"/"false" disables local stats
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("FUXI_SIDECAR_URL"); u != "" {
		c.Sidecar.BaseURL = u
	}
	if tokens := os.Getenv("FUXI_MAX_TOKENS"); tokens != "" {
		if n, err := strconv.Atoi(tokens); err == nil && n >= 0 {
			c.Sidecar.MaxTokens = n
		}
	}
	if theme := os.Getenv("FUXI_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if profile := os.Getenv("FUXI_DRAIN_PROFILE"); profile != "" {
		c.Chat.DrainProfile = profile
	}
	if telemetry := os.Getenv("FUXI_TELEMETRY"); telemetry != "" {
		c.Telemetry.Enabled = telemetry != "0" && !strings.EqualFold(telemetry, "false")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Sidecar.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "sidecar.base_url",
			Message: fmt.Sprintf("invalid URL: %q", c.Sidecar.BaseURL),
		})
	}

	if c.Sidecar.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "sidecar.max_tokens",
			Message: "must be >= 0",
		})
	}

	if c.Sidecar.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "sidecar.timeout_secs",
			Message: "must be >= 1",
		})
	}

	if c.Sidecar.RequestsPerSecond <= 0 {
		errs = append(errs, ValidationError{
			Field:   "sidecar.requests_per_second",
			Message: "must be > 0",
		})
	}

	validProfiles := map[string]bool{"adaptive": true, "fast": true, "slow": true}
	if !validProfiles[strings.ToLower(c.Chat.DrainProfile)] {
		errs = append(errs, ValidationError{
			Field:   "chat.drain_profile",
			Message: fmt.Sprintf("must be one of: adaptive, fast, slow (got %q)", c.Chat.DrainProfile),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of: dark, light, auto (got %q)", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// UTILITY
// =============================================================================

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		globalConfigMu.RLock()
		already := globalConfig != nil
		globalConfigMu.RUnlock()
		if already {
			return
		}

		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
