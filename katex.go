// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package katex renders TeX math to HTML and MathML by running the KaTeX
// library inside an embedded JavaScript engine.
//
// The engine is chosen at build time: Goja by default, otto with the
// "otto" build tag, and the host JavaScript realm under GOOS=js
// GOARCH=wasm. BackendName reports which one was compiled in.
//
// KaTeX itself is not bundled. Point KATEX_PAYLOAD at katex.min.js to use
// the package-level functions, or build a Renderer from a Config.
package katex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aplane-algo/katex/jsengine"
)

// Environment variables read by the default renderer.
const (
	EnvPayload = "KATEX_PAYLOAD"
	EnvWorkers = "KATEX_WORKERS"
)

var defaultRenderer = sync.OnceValues(func() (*Renderer, error) {
	path := os.Getenv(EnvPayload)
	if path == "" {
		return nil, jsengine.NewInitError(fmt.Sprintf("no KaTeX payload configured (set %s)", EnvPayload), nil)
	}
	payload, _, err := LoadPayload(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, jsengine.NewInitError(err.Error(), err)
	}

	cfg := Config{Payload: payload}
	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, jsengine.NewInitError(fmt.Sprintf("invalid %s %q", EnvWorkers, w), err)
		}
		cfg.Workers = n
	}
	return New(cfg)
})

// Render renders input with the default renderer.
func Render(input string) (string, error) {
	return RenderWithOpts(input, nil)
}

// RenderWithOpts renders input with opts using the default renderer. The
// default renderer is built once; if that fails, every call returns the
// same InitError.
func RenderWithOpts(input string, opts *Opts) (string, error) {
	r, err := defaultRenderer()
	if err != nil {
		return "", err
	}
	return r.RenderWithOpts(input, opts)
}
