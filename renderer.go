// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"github.com/aplane-algo/katex/internal/enginecache"
	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// Config configures a Renderer.
type Config struct {
	// Payload is the KaTeX library source (katex.js or katex.min.js).
	Payload string
	// Extensions are evaluated after the payload, in order.
	Extensions []string
	// Workers is the number of engines. <= 0 means runtime.NumCPU().
	Workers int
	// MaxCallStackSize bounds script recursion. <= 0 keeps the engine default.
	MaxCallStackSize int
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Renderer renders TeX with a pool of engines, each loaded with the KaTeX
// payload the first time it is used. It is safe for concurrent use.
type Renderer struct {
	pool *enginecache.Pool[backend]
	log  *slog.Logger
}

// New returns a Renderer for cfg. Engines are built lazily; a payload that
// fails to load is reported by the first render, and by every render after
// it.
func New(cfg Config) (*Renderer, error) {
	if cfg.Payload == "" {
		return nil, jsengine.NewInitError("no KaTeX payload configured", nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if maxWorkers > 0 && workers > maxWorkers {
		workers = maxWorkers
	}

	cfg.Logger.Debug("starting renderer", "backend", BackendName, "workers", workers,
		"payload_bytes", len(cfg.Payload), "extensions", len(cfg.Extensions))
	build := func() (backend, error) {
		return buildBackend(cfg)
	}
	return &Renderer{
		pool: enginecache.NewPool(workers, build, enginecache.WithLogger(cfg.Logger)),
		log:  cfg.Logger,
	}, nil
}

// Render renders input in inline mode with KaTeX defaults.
func (r *Renderer) Render(input string) (string, error) {
	return r.RenderContext(context.Background(), input, nil)
}

// RenderWithOpts renders input with opts. Nil opts means KaTeX defaults.
func (r *Renderer) RenderWithOpts(input string, opts *Opts) (string, error) {
	return r.RenderContext(context.Background(), input, opts)
}

// RenderContext renders input with opts. If ctx ends during rendering the
// script is interrupted and an ExecError wrapping ctx.Err() is returned.
func (r *Renderer) RenderContext(ctx context.Context, input string, opts *Opts) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	o := opts.Value()

	var html string
	err := r.pool.Do(ctx, func(b backend) error {
		out, err := b.render(input, o)
		html = out
		return err
	})
	if err != nil {
		return "", err
	}
	return html, nil
}

// Eval evaluates code in one of the loaded engines and returns its
// completion value in owned form. State it defines stays in that engine
// only.
func (r *Renderer) Eval(ctx context.Context, code string) (owned.Value, error) {
	var result owned.Value
	err := r.pool.Do(ctx, func(b backend) error {
		v, err := b.eval(code)
		result = v
		return err
	})
	if err != nil {
		return owned.Null(), err
	}
	return result, nil
}

// Close shuts the engines down. Calls after Close fail with an ExecError.
func (r *Renderer) Close() error {
	r.log.Debug("closing renderer")
	return r.pool.Close()
}
