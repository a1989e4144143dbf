// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

//go:build !otto && !(js && wasm)

package katex

import (
	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/gojaengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// BackendName names the compiled-in script engine.
const BackendName = "goja"

// maxWorkers caps Config.Workers; 0 means no cap.
const maxWorkers = 0

// Degradations lists how native values of the compiled-in engine map to
// owned values.
var Degradations = gojaengine.Degradations

// gojaBackend embeds the engine so Interrupt and ClearInterrupt are
// promoted and the worker pool can abort a render.
type gojaBackend struct {
	*gojaengine.Engine
}

var _ jsengine.Interrupter = gojaBackend{}

func newBackend(cfg Config) (backend, error) {
	e, err := gojaengine.New(
		gojaengine.WithMaxCallStackSize(cfg.MaxCallStackSize),
		gojaengine.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, err
	}
	return gojaBackend{e}, nil
}

func (b gojaBackend) exec(name, code string) error {
	return b.Exec(name, code)
}

func (b gojaBackend) render(input string, opts owned.Value) (string, error) {
	out, err := b.CallFunction("renderToString", owned.FromString(input), opts)
	if err != nil {
		return "", err
	}
	return out.ToString()
}

func (b gojaBackend) eval(code string) (owned.Value, error) {
	return b.Eval(code)
}
