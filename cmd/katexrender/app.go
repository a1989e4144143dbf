// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aplane-algo/katex"
	"github.com/aplane-algo/katex/internal/util"
)

// app holds the renderer and the per-session render settings.
type app struct {
	renderer    *katex.Renderer
	opts        *katex.Opts
	timeout     time.Duration
	debounce    time.Duration
	historyFile string
}

func newApp(r *katex.Renderer, config util.Config, display bool) *app {
	opts := config.Options.Clone()
	if opts == nil {
		opts = &katex.Opts{}
	}
	if display {
		opts.SetDisplayMode(true)
	}
	return &app{
		renderer:    r,
		opts:        opts,
		timeout:     config.Timeout,
		debounce:    config.WatchDebounce,
		historyFile: config.HistoryFile,
	}
}

func (a *app) context() (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(context.Background(), a.timeout)
	}
	return context.WithCancel(context.Background())
}

func (a *app) display() bool {
	return a.opts.DisplayMode != nil && *a.opts.DisplayMode
}

func (a *app) render(input string) (string, error) {
	ctx, cancel := a.context()
	defer cancel()
	return a.renderer.RenderContext(ctx, strings.TrimSpace(input), a.opts)
}

// renderDisplay renders with the session options and the given display mode.
func (a *app) renderDisplay(input string, display bool) (string, error) {
	opts := a.opts.Clone()
	opts.SetDisplayMode(display)

	ctx, cancel := a.context()
	defer cancel()
	return a.renderer.RenderContext(ctx, strings.TrimSpace(input), opts)
}

func (a *app) renderTo(input, output string) error {
	html, err := a.render(input)
	if err != nil {
		return err
	}
	return writeOutput(output, html)
}

// evalJS evaluates code and returns the result as indented JSON.
func (a *app) evalJS(code string) (string, error) {
	ctx, cancel := a.context()
	defer cancel()

	v, err := a.renderer.Eval(ctx, code)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// writeOutput writes s to path, or to stdout when path is empty.
func writeOutput(path, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if path == "" {
		_, err := os.Stdout.WriteString(s)
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
