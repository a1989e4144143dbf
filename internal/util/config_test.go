// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aplane-algo/katex"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.PayloadDir != filepath.Join(dir, "katex") {
		t.Errorf("PayloadDir = %q, want %q", config.PayloadDir, filepath.Join(dir, "katex"))
	}
	if config.Payload != katex.DefaultPayloadFile {
		t.Errorf("Payload = %q, want %q", config.Payload, katex.DefaultPayloadFile)
	}
	if config.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", config.Timeout)
	}
	if config.HistoryFile != filepath.Join(dir, ".katex_history") {
		t.Errorf("HistoryFile = %q", config.HistoryFile)
	}
	if config.Options != nil {
		t.Errorf("Options = %+v, want nil", config.Options)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
payload_dir: /opt/katex
extensions:
  - contrib/mhchem.min.js
workers: 3
timeout: 2s
watch_debounce: 50ms
options:
  display_mode: true
  macros:
    '\RR': '\mathbb{R}'
`)

	config, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.PayloadDir != "/opt/katex" {
		t.Errorf("PayloadDir = %q, want /opt/katex", config.PayloadDir)
	}
	if config.Payload != katex.DefaultPayloadFile {
		t.Errorf("Payload = %q, default should be kept", config.Payload)
	}
	if config.Workers != 3 {
		t.Errorf("Workers = %d, want 3", config.Workers)
	}
	if config.Timeout != 2*time.Second || config.WatchDebounce != 50*time.Millisecond {
		t.Errorf("Timeout = %v, WatchDebounce = %v", config.Timeout, config.WatchDebounce)
	}
	if config.Options == nil || config.Options.DisplayMode == nil || !*config.Options.DisplayMode {
		t.Errorf("Options.DisplayMode not decoded: %+v", config.Options)
	}
	want := []string{katex.DefaultPayloadFile, "contrib/mhchem.min.js"}
	got := config.PayloadFiles()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("PayloadFiles() = %v, want %v", got, want)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative workers", "workers: -1", "workers"},
		{"negative stack", "max_call_stack_size: -5", "max_call_stack_size"},
		{"negative timeout", "timeout: -1s", "timeout"},
		{"bad duration", "timeout: soon", "parse"},
		{"bad output", "options:\n  output: svg", "output"},
		{"malformed yaml", "workers: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := LoadConfig(dir)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetDataDir(t *testing.T) {
	t.Setenv("KATEX_DATA", "/from/env")
	if got := GetDataDir("/from/flag"); got != "/from/flag" {
		t.Errorf("GetDataDir(flag) = %q, want /from/flag", got)
	}
	if got := GetDataDir(""); got != "/from/env" {
		t.Errorf("GetDataDir(env) = %q, want /from/env", got)
	}

	t.Setenv("KATEX_DATA", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := GetDataDir(""); got != filepath.Join(home, ".katex") {
		t.Errorf("GetDataDir(default) = %q, want %q", got, filepath.Join(home, ".katex"))
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		path, base, want string
	}{
		{"", "/data", ""},
		{"katex", "", "katex"},
		{"/abs/katex", "/data", "/abs/katex"},
		{"katex", "/data", "/data/katex"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.path, tt.base); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}

func TestRendererConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "katex.min.js"), []byte("var katex = {};"), 0644); err != nil {
		t.Fatal(err)
	}

	config := DefaultConfig()
	config.PayloadDir = dir
	config.Workers = 2

	rc, err := config.RendererConfig(nil)
	if err != nil {
		t.Fatalf("RendererConfig failed: %v", err)
	}
	if rc.Payload != "var katex = {};" || rc.Workers != 2 {
		t.Errorf("RendererConfig = %+v", rc)
	}

	config.VerifyChecksums = true
	if _, err := config.RendererConfig(nil); err == nil {
		t.Error("Expected error without checksums manifest")
	}
}

func TestColorTerm(t *testing.T) {
	for term, want := range map[string]bool{"": false, "dumb": false, "xterm-256color": true} {
		if got := colorTerm(term); got != want {
			t.Errorf("colorTerm(%q) = %v, want %v", term, got, want)
		}
	}
}
