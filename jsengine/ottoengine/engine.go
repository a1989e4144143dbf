// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package ottoengine implements the scoped-value backend on the otto
// interpreter. Values returned by a Scope borrow the engine and are valid
// only while that scope is current; the engine checks this at run time.
//
// Numbers use a merged model: every number reports IsFloat, and a number
// that is integral and fits int32 also reports IsInt. Eval("1+1") therefore
// satisfies both ToInt (2) and ToFloat (2.0).
package ottoengine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/robertkrimen/otto"
	"github.com/robertkrimen/otto/parser"

	"github.com/aplane-algo/katex/jsengine"
	"github.com/aplane-algo/katex/jsengine/owned"
)

// DefaultStackDepthLimit bounds script recursion.
const DefaultStackDepthLimit = 2048

// Engine is an otto runtime behind the jsengine contract.
//
// The engine itself implements jsengine.Engine[owned.Value]: each call opens
// a fresh scope, exports the result and releases the scope. Callers that
// want borrowed values use GlobalScope.
type Engine struct {
	vm      *otto.Otto
	log     *slog.Logger
	current *scopeState
	nextID  uint64
}

var (
	_ jsengine.Engine[owned.Value] = (*Engine)(nil)
	_ jsengine.Interrupter         = (*Engine)(nil)
)

type options struct {
	stackDepthLimit int
	logger          *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithStackDepthLimit sets the maximum nesting of script calls; deeper
// recursion fails with an ExecError. Values <= 0 keep the default.
func WithStackDepthLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.stackDepthLimit = n
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

// errInterrupted is panicked inside the interpreter to unwind an
// interrupted script.
type errInterrupted struct{ reason string }

// New creates a fresh runtime with an empty global scope.
func New(opts ...Option) (*Engine, error) {
	o := options{
		stackDepthLimit: DefaultStackDepthLimit,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	vm := otto.New()
	vm.SetStackDepthLimit(o.stackDepthLimit)
	vm.Interrupt = make(chan func(), 1)

	o.logger.Debug("otto engine created", "stack_depth_limit", o.stackDepthLimit)
	return &Engine{vm: vm, log: o.logger}, nil
}

// GlobalScope returns a new scope over the global object. Any scope handed
// out earlier is released, so its values can no longer be used.
func (e *Engine) GlobalScope() *Scope {
	if e.current != nil {
		e.current.released = true
	}
	e.nextID++
	st := &scopeState{engine: e, id: e.nextID}
	e.current = st
	return &Scope{st: st}
}

// Eval runs code in a transient scope and exports the result.
func (e *Engine) Eval(code string) (owned.Value, error) {
	s := e.GlobalScope()
	defer s.Release()

	v, err := s.Eval(code)
	if err != nil {
		return owned.Null(), err
	}
	return v.Own()
}

// Exec runs code and discards the completion value.
func (e *Engine) Exec(code string) (err error) {
	if e.vm == nil {
		return closedError()
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	if _, err := e.vm.Run(code); err != nil {
		return classify(err)
	}
	return nil
}

// CallFunction calls the global function name in a transient scope and
// exports the result.
func (e *Engine) CallFunction(name string, args ...owned.Value) (owned.Value, error) {
	s := e.GlobalScope()
	defer s.Release()

	native := make([]Value, len(args))
	for i, a := range args {
		v, err := owned.Materialize[Value](s, a)
		if err != nil {
			return owned.Null(), err
		}
		native[i] = v
	}
	v, err := s.CallFunction(name, native...)
	if err != nil {
		return owned.Null(), err
	}
	return v.Own()
}

// Interrupt aborts the running script. The aborted call returns an
// ExecError. Safe to call from any goroutine.
func (e *Engine) Interrupt(reason string) {
	vm := e.vm
	if vm == nil {
		return
	}
	e.log.Debug("interrupting otto engine", "reason", reason)
	select {
	case vm.Interrupt <- func() { panic(errInterrupted{reason: reason}) }:
	default:
		// An interrupt is already pending.
	}
}

// ClearInterrupt drops an interrupt that arrived after the script finished.
func (e *Engine) ClearInterrupt() {
	if e.vm == nil {
		return
	}
	for {
		select {
		case <-e.vm.Interrupt:
		default:
			return
		}
	}
}

// Close releases the runtime and the current scope.
func (e *Engine) Close() error {
	if e.current != nil {
		e.current.released = true
		e.current = nil
	}
	e.vm = nil
	return nil
}

func closedError() error {
	return jsengine.NewExecError("engine is closed", jsengine.ErrEngineClosed)
}

// classify turns an otto error into an ExecError carrying the script-level
// message verbatim.
func classify(err error) *jsengine.Error {
	var ottoErr *otto.Error
	if errors.As(err, &ottoErr) {
		// Error() is "Name: message" without the stack trace.
		return jsengine.NewExecError(ottoErr.Error(), err)
	}
	// The parser reports its own error types, which carry no name.
	var list parser.ErrorList
	if errors.As(err, &list) {
		return jsengine.NewExecError("SyntaxError: "+list.Error(), err)
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return jsengine.NewExecError("SyntaxError: "+parseErr.Error(), err)
	}
	return jsengine.NewExecError(err.Error(), err)
}

// recoverAs converts panics escaping otto, including interrupts, into an
// error of the given kind. Interrupts are always ExecErrors.
func (e *Engine) recoverAs(kind jsengine.ErrorKind, err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch x := r.(type) {
	case errInterrupted:
		*err = jsengine.NewExecError("interrupted: "+x.reason, nil)
	case error:
		*err = &jsengine.Error{Kind: kind, Detail: x.Error(), Err: x}
	default:
		*err = &jsengine.Error{Kind: kind, Detail: fmt.Sprint(x)}
	}
}
