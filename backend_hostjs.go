// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

//go:build js && wasm

package katex

import (
	"github.com/aplane-algo/katex/jsengine/hostjs"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// BackendName names the compiled-in script engine.
const BackendName = "hostjs"

// Degradations lists how native values of the compiled-in engine map to
// owned values.
var Degradations = hostjs.Degradations

// maxWorkers is 1: every host engine shares the one host realm.
const maxWorkers = 1

type hostBackend struct {
	*hostjs.Engine
}

func newBackend(Config) (backend, error) {
	e, err := hostjs.New()
	if err != nil {
		return nil, err
	}
	return hostBackend{e}, nil
}

func (b hostBackend) exec(_, code string) error {
	_, err := b.Eval(code)
	return err
}

func (b hostBackend) render(input string, opts owned.Value) (string, error) {
	in, err := b.NewString(input)
	if err != nil {
		return "", err
	}
	o, err := owned.Materialize[hostjs.Value](b, opts)
	if err != nil {
		return "", err
	}
	out, err := b.CallFunction("renderToString", in, o)
	if err != nil {
		return "", err
	}
	return out.ToString()
}

func (b hostBackend) eval(code string) (owned.Value, error) {
	v, err := b.Eval(code)
	if err != nil {
		return owned.Null(), err
	}
	return v.Own()
}
