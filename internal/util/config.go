// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aplane-algo/katex"
)

// Config holds katexrender configuration settings
type Config struct {
	PayloadDir      string   `yaml:"payload_dir" description:"Directory holding the KaTeX payload (relative to data dir)" default:"katex"`
	Payload         string   `yaml:"payload" description:"KaTeX payload file inside payload_dir" default:"katex.min.js"`
	Extensions      []string `yaml:"extensions" description:"Extension files inside payload_dir, evaluated after the payload in order" default:"[]"`
	VerifyChecksums bool     `yaml:"verify_checksums" description:"Require a checksums.sha256 manifest covering every payload file" default:"false"`

	Workers          int           `yaml:"workers" description:"Number of script engines (0 = one per CPU)" default:"0"`
	MaxCallStackSize int           `yaml:"max_call_stack_size" description:"Script call depth limit (0 = engine default)" default:"0"`
	Timeout          time.Duration `yaml:"timeout" description:"Time limit for a single render (0 = none)" default:"10s"`

	WatchDebounce time.Duration `yaml:"watch_debounce" description:"Delay before re-rendering a watched file after a change" default:"200ms"`
	HistoryFile   string        `yaml:"history_file" description:"REPL history file (relative to data dir)" default:".katex_history"`

	// Default options for every render (nil = KaTeX defaults)
	Options *katex.Opts `yaml:"options" description:"Default KaTeX options"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		PayloadDir:    "katex",
		Payload:       katex.DefaultPayloadFile,
		Extensions:    []string{},
		Timeout:       10 * time.Second,
		WatchDebounce: 200 * time.Millisecond,
		HistoryFile:   ".katex_history",
	}
}

// DefaultDataDir is the default data directory for katexrender
const DefaultDataDir = "~/.katex"

// GetDataDir returns the data directory.
// Resolution order: -d flag > KATEX_DATA env var > ~/.katex
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv("KATEX_DATA"); envDir != "" {
		return envDir
	}
	// Expand ~ to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".katex")
}

// RequireDataDir resolves the data directory from the flag value,
// KATEX_DATA environment variable, or ~/.katex default. Exits if unresolvable.
func RequireDataDir(flagValue string) string {
	dir := GetDataDir(flagValue)
	if dir == "" {
		fmt.Fprintln(os.Stderr, "Error: Could not determine data directory")
		fmt.Fprintln(os.Stderr, "Use -d <path> or set KATEX_DATA environment variable")
		os.Exit(1)
	}
	return dir
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// ResolvePath resolves a path relative to baseDir if not absolute.
// Returns path unchanged if empty or already absolute.
func ResolvePath(path, baseDir string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from config.yaml in the data directory.
// If dataDir is empty or file doesn't exist, returns default config.
// Relative payload_dir and history_file are resolved against the data directory.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}

	config.PayloadDir = ResolvePath(config.PayloadDir, dataDir)
	config.HistoryFile = ResolvePath(config.HistoryFile, dataDir)
	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty, returns default config.
// If the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in defaults for values cleared by the file
	defaults := DefaultConfig()
	if config.Payload == "" {
		config.Payload = defaults.Payload
	}
	if config.PayloadDir == "" {
		config.PayloadDir = defaults.PayloadDir
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks value ranges and the default render options.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d in config (must be >= 0)", c.Workers)
	}
	if c.MaxCallStackSize < 0 {
		return fmt.Errorf("invalid max_call_stack_size %d in config (must be >= 0)", c.MaxCallStackSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s in config (must be >= 0)", c.Timeout)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("invalid watch_debounce %s in config (must be >= 0)", c.WatchDebounce)
	}
	if err := c.Options.Validate(); err != nil {
		return fmt.Errorf("invalid options in config: %w", err)
	}
	return nil
}

// PayloadFiles returns the payload followed by the extensions, relative to
// PayloadDir.
func (c *Config) PayloadFiles() []string {
	return append([]string{c.Payload}, c.Extensions...)
}

// RendererConfig reads the payload files and builds a renderer config.
func (c *Config) RendererConfig(logger *slog.Logger) (katex.Config, error) {
	load := katex.LoadPayload
	if c.VerifyChecksums {
		load = katex.LoadVerifiedPayload
	}
	payload, extensions, err := load(c.PayloadDir, c.PayloadFiles()...)
	if err != nil {
		return katex.Config{}, err
	}
	return katex.Config{
		Payload:          payload,
		Extensions:       extensions,
		Workers:          c.Workers,
		MaxCallStackSize: c.MaxCallStackSize,
		Logger:           logger,
	}, nil
}

// DisplayConfig prints the current configuration
func DisplayConfig(dataDir string) {
	config, err := LoadConfig(dataDir)
	configPath := GetConfigPath(dataDir)

	fmt.Println("Current Configuration:")
	fmt.Println("=====================")
	fmt.Printf("Data dir:    %s\n", dataDir)
	fmt.Printf("Config file: %s\n", configPath)
	if err != nil {
		fmt.Printf("Error:       %v\n", err)
		fmt.Println()
		return
	}
	fmt.Printf("Backend:     %s\n", katex.BackendName)
	fmt.Printf("Payload:     %s\n", filepath.Join(config.PayloadDir, config.Payload))
	if len(config.Extensions) > 0 {
		fmt.Printf("Extensions:  %v\n", config.Extensions)
	}
	fmt.Printf("Checksums:   %s\n", map[bool]string{true: "required", false: "verified when present"}[config.VerifyChecksums])
	if config.Workers > 0 {
		fmt.Printf("Workers:     %d\n", config.Workers)
	} else {
		fmt.Printf("Workers:     one per CPU\n")
	}
	if config.Timeout > 0 {
		fmt.Printf("Timeout:     %s\n", config.Timeout)
	} else {
		fmt.Printf("Timeout:     none\n")
	}
	fmt.Printf("History:     %s\n", config.HistoryFile)
	fmt.Println()
}
