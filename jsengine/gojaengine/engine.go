// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package gojaengine implements the owned-value backend on the Goja
// interpreter. Every value leaving the engine is exported to owned.Value
// immediately, so results never borrow the runtime.
//
// Numbers keep Goja's distinction: an integral result in int32 range is
// KindInt, anything else KindFloat. Eval("1+1") is Int 2; Eval("0.5") is
// Float 0.5.
package gojaengine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// DefaultMaxCallStackSize bounds script recursion. Goja's own default is
// effectively unbounded and grows the heap until the process dies.
const DefaultMaxCallStackSize = 4096

// Engine is a Goja runtime behind the jsengine contract.
type Engine struct {
	vm  *goja.Runtime
	log *slog.Logger
}

var (
	_ jsengine.Engine[owned.Value] = (*Engine)(nil)
	_ jsengine.Interrupter         = (*Engine)(nil)
)

type options struct {
	maxCallStackSize int
	logger           *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithMaxCallStackSize sets the maximum function call depth; deeper
// recursion fails with an ExecError. Values <= 0 keep the default.
func WithMaxCallStackSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCallStackSize = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a fresh runtime with an empty global scope.
func New(opts ...Option) (*Engine, error) {
	o := options{
		maxCallStackSize: DefaultMaxCallStackSize,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	vm.SetMaxCallStackSize(o.maxCallStackSize)

	o.logger.Debug("goja engine created", "max_call_stack_size", o.maxCallStackSize)
	return &Engine{vm: vm, log: o.logger}, nil
}

// Eval runs code in the global scope and returns the completion value.
func (e *Engine) Eval(code string) (result owned.Value, err error) {
	if e.vm == nil {
		return owned.Null(), closedError()
	}
	defer recoverAs(jsengine.ExecError, &err)

	v, err := e.vm.RunString(code)
	if err != nil {
		return owned.Null(), classify(err)
	}
	return e.export(v)
}

// Exec runs code under a script name and discards the completion value.
// It is used to load libraries, whose completion value may be large.
func (e *Engine) Exec(name, code string) (err error) {
	if e.vm == nil {
		return closedError()
	}
	defer recoverAs(jsengine.ExecError, &err)

	if _, err := e.vm.RunScript(name, code); err != nil {
		return classify(err)
	}
	return nil
}

// CallFunction calls the global function name with args.
func (e *Engine) CallFunction(name string, args ...owned.Value) (result owned.Value, err error) {
	if e.vm == nil {
		return owned.Null(), closedError()
	}
	defer recoverAs(jsengine.ExecError, &err)

	fv := e.vm.Get(name)
	if fv == nil || goja.IsUndefined(fv) {
		return owned.Null(), jsengine.NewExecError(fmt.Sprintf("ReferenceError: %s is not defined", name), nil)
	}
	fn, ok := goja.AssertFunction(fv)
	if !ok {
		return owned.Null(), jsengine.NewExecError(fmt.Sprintf("TypeError: %s is not a function", name), nil)
	}

	native := make([]goja.Value, len(args))
	for i, a := range args {
		n, err := e.toNative(a)
		if err != nil {
			return owned.Null(), err
		}
		native[i] = n
	}

	v, err := fn(goja.Undefined(), native...)
	if err != nil {
		return owned.Null(), classify(err)
	}
	return e.export(v)
}

// Interrupt aborts the running script. The aborted call returns an
// ExecError. Safe to call from any goroutine.
func (e *Engine) Interrupt(reason string) {
	if vm := e.vm; vm != nil {
		e.log.Debug("interrupting goja engine", "reason", reason)
		vm.Interrupt(reason)
	}
}

// ClearInterrupt drops an interrupt that arrived after the script finished.
func (e *Engine) ClearInterrupt() {
	if e.vm != nil {
		e.vm.ClearInterrupt()
	}
}

// Close releases the runtime. Later calls fail with ErrEngineClosed.
func (e *Engine) Close() error {
	e.vm = nil
	return nil
}

func (e *Engine) export(v goja.Value) (result owned.Value, err error) {
	defer recoverAs(jsengine.ValueError, &err)
	return e.own(v, jsengine.NewExportBudget(), 0)
}

func closedError() error {
	return jsengine.NewExecError("engine is closed", jsengine.ErrEngineClosed)
}

// classify turns a Goja error into an ExecError carrying the script-level
// message verbatim.
func classify(err error) *jsengine.Error {
	switch x := err.(type) {
	case *goja.StackOverflowError:
		return jsengine.NewExecError("RangeError: Maximum call stack size exceeded", err)
	case *goja.InterruptedError:
		return jsengine.NewExecError(fmt.Sprintf("interrupted: %v", x.Value()), err)
	case *goja.Exception:
		return jsengine.NewExecError(exceptionDetail(x), err)
	}
	return jsengine.NewExecError(err.Error(), err)
}

func exceptionDetail(ex *goja.Exception) string {
	// Value().String() is "Name: message"; Error() would append the location.
	if v := ex.Value(); v != nil {
		return v.String()
	}
	return ex.Error()
}

// recoverAs converts a panic escaping Goja (typically from a Go callback or
// a throwing getter) into an error of the given kind.
func recoverAs(kind jsengine.ErrorKind, err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch x := r.(type) {
	case *goja.Exception:
		*err = &jsengine.Error{Kind: kind, Detail: exceptionDetail(x), Err: x}
	case *goja.InterruptedError:
		*err = classify(x)
	case error:
		*err = &jsengine.Error{Kind: kind, Detail: x.Error(), Err: x}
	default:
		*err = &jsengine.Error{Kind: kind, Detail: fmt.Sprint(x)}
	}
}
