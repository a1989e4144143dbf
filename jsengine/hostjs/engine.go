// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

//go:build js && wasm

// Package hostjs implements the host-embedded backend: when the program is
// compiled to WebAssembly and runs inside a JavaScript host, scripts are
// handed to the host's own engine through syscall/js. There is no
// construction cost; every Engine shares the host realm.
//
// Values are handles into the host realm and carry the Engine that produced
// them. Numbers use the merged model (see ottoengine).
package hostjs

import (
	"fmt"
	"strings"
	"syscall/js"
	"unicode/utf8"

	"github.com/aplane-algo/katex/jsengine"
)

// Engine proxies to the host's global eval and global functions.
type Engine struct {
	global js.Value
	eval   js.Value
	str    js.Value // global String, for stringifying thrown values
	probe  js.Value
	closed bool
}

var (
	_ jsengine.Engine[Value]  = (*Engine)(nil)
	_ jsengine.Factory[Value] = (*Engine)(nil)
)

// New binds to the host realm.
func New() (e *Engine, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, jsengine.NewInitError(fmt.Sprint(r), nil)
		}
	}()

	g := js.Global()
	ev := g.Get("eval")
	if ev.Type() != js.TypeFunction {
		return nil, jsengine.NewInitError("host has no global eval", nil)
	}
	return &Engine{
		global: g,
		eval:   ev,
		str:    g.Get("String"),
		probe:  ev.Invoke(jsengine.SurrogateProbeSource),
	}, nil
}

// Eval evaluates code with the host's indirect (global) eval.
func (e *Engine) Eval(code string) (result Value, err error) {
	if e.closed {
		return Value{}, closedError()
	}
	defer e.recoverAs(jsengine.ExecError, &err)
	return e.wrap(e.eval.Invoke(code)), nil
}

// CallFunction calls globalThis[name] with args.
func (e *Engine) CallFunction(name string, args ...Value) (result Value, err error) {
	if e.closed {
		return Value{}, closedError()
	}
	native := make([]any, len(args))
	for i, a := range args {
		if a.e != e {
			return Value{}, jsengine.NewExecError("value was produced by a different engine", jsengine.ErrForeignValue)
		}
		native[i] = a.v
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	fn := e.global.Get(name)
	switch fn.Type() {
	case js.TypeUndefined:
		return Value{}, jsengine.NewExecError(fmt.Sprintf("ReferenceError: %s is not defined", name), nil)
	case js.TypeFunction:
	default:
		return Value{}, jsengine.NewExecError(fmt.Sprintf("TypeError: %s is not a function", name), nil)
	}
	return e.wrap(fn.Invoke(native...)), nil
}

// Close detaches the engine. The host realm itself is left untouched.
func (e *Engine) Close() error {
	e.closed = true
	return nil
}

func (e *Engine) wrap(v js.Value) Value {
	return Value{v: v, e: e}
}

func (e *Engine) Null() Value { return e.wrap(js.Null()) }

func (e *Engine) NewBool(b bool) (Value, error)     { return e.newValue(b) }
func (e *Engine) NewInt(i int32) (Value, error)     { return e.newValue(i) }
func (e *Engine) NewFloat(f float64) (Value, error) { return e.newValue(f) }
func (e *Engine) NewString(s string) (Value, error) { return e.newValue(s) }

func (e *Engine) newValue(x any) (Value, error) {
	if e.closed {
		return Value{}, closedError()
	}
	return e.wrap(js.ValueOf(x)), nil
}

func (e *Engine) NewArray(items []Value) (result Value, err error) {
	if e.closed {
		return Value{}, closedError()
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	arr := e.global.Get("Array").New()
	for _, item := range items {
		if item.e != e {
			return Value{}, jsengine.NewExecError("value was produced by a different engine", jsengine.ErrForeignValue)
		}
		arr.Call("push", item.v)
	}
	return e.wrap(arr), nil
}

func (e *Engine) NewObject(entries []jsengine.Entry[Value]) (result Value, err error) {
	if e.closed {
		return Value{}, closedError()
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	obj := e.global.Get("Object").New()
	for _, entry := range entries {
		if entry.Value.e != e {
			return Value{}, jsengine.NewExecError("value was produced by a different engine", jsengine.ErrForeignValue)
		}
		obj.Set(entry.Key, entry.Value.v)
	}
	return e.wrap(obj), nil
}

func closedError() error {
	return jsengine.NewExecError("engine is closed", jsengine.ErrEngineClosed)
}

// recoverAs turns a JavaScript exception, which syscall/js raises as a
// js.Error panic, into an error of the given kind.
func (e *Engine) recoverAs(kind jsengine.ErrorKind, err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch x := r.(type) {
	case js.Error:
		*err = &jsengine.Error{Kind: kind, Detail: e.str.Invoke(x.Value).String(), Err: x}
	case error:
		*err = &jsengine.Error{Kind: kind, Detail: x.Error(), Err: x}
	default:
		*err = &jsengine.Error{Kind: kind, Detail: fmt.Sprint(x)}
	}
}

// wellFormed fails when the host string s holds a lone surrogate.
// syscall/js has already replaced it with U+FFFD in text.
func (e *Engine) wellFormed(s js.Value, text string) (err error) {
	if !strings.ContainsRune(text, utf8.RuneError) {
		return nil
	}
	defer e.recoverAs(jsengine.ValueError, &err)
	if i := e.probe.Invoke(s).Int(); i >= 0 {
		return jsengine.LoneSurrogate(i)
	}
	return nil
}

// Degradations lists how native shapes without a dedicated kind are
// reported.
var Degradations = []jsengine.Degradation{
	{Native: "undefined", Kind: jsengine.KindNull},
	{Native: "number", Kind: jsengine.KindFloat, Note: "also KindInt when integral and within int32"},
	{Native: "Date", Kind: jsengine.KindFloat, Note: "epoch milliseconds"},
	{Native: "function", Kind: jsengine.KindObject, Note: "null once exported to owned form"},
	{Native: "symbol", Kind: jsengine.KindString, Note: "its String() form"},
	{Native: "Map, Set and other exotic objects", Kind: jsengine.KindObject, Note: "own enumerable keys only"},
}
