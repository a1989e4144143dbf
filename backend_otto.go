// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

//go:build otto && !(js && wasm)

package katex

import (
	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/ottoengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// BackendName names the compiled-in script engine.
const BackendName = "otto"

// maxWorkers caps Config.Workers; 0 means no cap.
const maxWorkers = 0

// Degradations lists how native values of the compiled-in engine map to
// owned values.
var Degradations = ottoengine.Degradations

type ottoBackend struct {
	*ottoengine.Engine
}

var _ jsengine.Interrupter = ottoBackend{}

func newBackend(cfg Config) (backend, error) {
	e, err := ottoengine.New(
		ottoengine.WithStackDepthLimit(cfg.MaxCallStackSize),
		ottoengine.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, err
	}
	return ottoBackend{e}, nil
}

func (b ottoBackend) exec(_, code string) error {
	return b.Exec(code)
}

// render stays inside one scope so the result string is checked on the
// engine's own representation.
func (b ottoBackend) render(input string, opts owned.Value) (string, error) {
	s := b.GlobalScope()
	defer s.Release()

	in, err := s.NewString(input)
	if err != nil {
		return "", err
	}
	o, err := owned.Materialize[ottoengine.Value](s, opts)
	if err != nil {
		return "", err
	}
	out, err := s.CallFunction("renderToString", in, o)
	if err != nil {
		return "", err
	}
	return out.ToString()
}

func (b ottoBackend) eval(code string) (owned.Value, error) {
	return b.Eval(code)
}
