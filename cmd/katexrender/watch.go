// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch renders file once, then again after every change until ctx ends.
func (a *app) watch(ctx context.Context, file, output string) error {
	renderFile := func() {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Error reading %s: %v\n", file, err)
			return
		}
		if err := a.renderTo(string(data), output); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Error rendering %s: %v\n", file, err)
			return
		}
		if output != "" {
			fmt.Fprintf(os.Stderr, "✓ Rendered %s -> %s\n", file, output)
		}
	}

	renderFile()
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", file)
	return watchFile(ctx, file, a.debounce, renderFile)
}

// watchFile calls onChange after path is written, created or replaced,
// coalescing changes closer together than debounce. It blocks until ctx
// ends.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often save by renaming a temp file over the original, which
	// drops a watch on the file itself, so watch the directory instead.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	// Debounce timer to avoid rapid re-renders
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "⚠️  File watcher error: %v\n", err)
		}
	}
}
