// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import (
	"fmt"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// backend is one loaded engine as seen by the renderer. Exactly one
// implementation is compiled in, chosen by build tags.
type backend interface {
	// exec runs a library script and discards its completion value.
	exec(name, code string) error
	// render calls renderToString(input, opts).
	render(input string, opts owned.Value) (string, error)
	eval(code string) (owned.Value, error)
	Close() error
}

// entryScript exposes the function the renderer calls.
const entryScript = "renderToString = katex.renderToString;"

// load evaluates the payload, then the extensions in order, then the entry
// script. Any failure is an InitError.
func load(b backend, cfg Config) error {
	if cfg.Payload == "" {
		return jsengine.NewInitError("no KaTeX payload configured", nil)
	}
	if err := b.exec("katex.js", cfg.Payload); err != nil {
		return jsengine.AsInit(err)
	}
	for i, ext := range cfg.Extensions {
		if err := b.exec(fmt.Sprintf("extension-%d.js", i), ext); err != nil {
			return jsengine.AsInit(err)
		}
	}
	if err := b.exec("entry.js", entryScript); err != nil {
		return jsengine.AsInit(err)
	}
	return nil
}

// buildBackend creates and loads one engine. A backend that fails to load
// is closed before the error is returned.
func buildBackend(cfg Config) (backend, error) {
	b, err := newBackend(cfg)
	if err != nil {
		return nil, jsengine.AsInit(err)
	}
	if err := load(b, cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}
