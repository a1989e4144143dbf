// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package ottoengine

import (
	"fmt"

	"github.com/robertkrimen/otto"

	"github.com/aplane-algo/katex/jsengine"
)

type scopeState struct {
	engine   *Engine
	id       uint64
	released bool
}

// Scope is a borrow of the engine's global scope. It implements
// jsengine.Scope[Value]. A Scope is invalidated by Release, by the next
// call to Engine.GlobalScope, and by the engine-level Eval and
// CallFunction, which open scopes of their own.
type Scope struct {
	st *scopeState
}

var _ jsengine.Scope[Value] = (*Scope)(nil)

// Release ends the borrow. Values produced by the scope become unusable.
func (s *Scope) Release() {
	s.st.released = true
	if e := s.st.engine; e.current == s.st {
		e.current = nil
	}
}

// live returns the engine when the scope can still be used.
func (s *Scope) live() (*Engine, error) {
	e := s.st.engine
	if e.vm == nil {
		return nil, closedError()
	}
	if s.st.released {
		return nil, jsengine.NewExecError(fmt.Sprintf("scope %d used after release", s.st.id), jsengine.ErrScopeReleased)
	}
	return e, nil
}

// adopt checks that v was produced by this scope.
func (s *Scope) adopt(v Value) error {
	switch {
	case v.st == nil || v.st.engine != s.st.engine:
		return jsengine.NewExecError("value was produced by a different engine", jsengine.ErrForeignValue)
	case v.st != s.st || v.st.released:
		return jsengine.NewExecError(fmt.Sprintf("value from released scope %d", v.st.id), jsengine.ErrScopeReleased)
	}
	return nil
}

func (s *Scope) wrap(v otto.Value) Value {
	return Value{v: v, st: s.st}
}

func (s *Scope) Null() Value {
	return s.wrap(otto.NullValue())
}

func (s *Scope) NewBool(b bool) (Value, error) {
	return s.newValue(b)
}

func (s *Scope) NewInt(i int32) (Value, error) {
	return s.newValue(i)
}

func (s *Scope) NewFloat(f float64) (Value, error) {
	return s.newValue(f)
}

func (s *Scope) NewString(str string) (Value, error) {
	return s.newValue(str)
}

func (s *Scope) newValue(x any) (Value, error) {
	e, err := s.live()
	if err != nil {
		return Value{}, err
	}
	v, err := e.vm.ToValue(x)
	if err != nil {
		return Value{}, jsengine.NewValueError(err.Error(), err)
	}
	return s.wrap(v), nil
}

// NewArray builds an array holding items in order.
func (s *Scope) NewArray(items []Value) (result Value, err error) {
	e, err := s.live()
	if err != nil {
		return Value{}, err
	}
	native := make([]any, len(items))
	for i, item := range items {
		if err := s.adopt(item); err != nil {
			return Value{}, err
		}
		native[i] = item.v
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	arr, err := e.vm.Object("[]")
	if err != nil {
		return Value{}, classify(err)
	}
	if len(native) > 0 {
		if _, err := arr.Call("push", native...); err != nil {
			return Value{}, classify(err)
		}
	}
	return s.wrap(arr.Value()), nil
}

// NewObject builds an object; a repeated key keeps the last value.
func (s *Scope) NewObject(entries []jsengine.Entry[Value]) (result Value, err error) {
	e, err := s.live()
	if err != nil {
		return Value{}, err
	}
	for _, entry := range entries {
		if err := s.adopt(entry.Value); err != nil {
			return Value{}, err
		}
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	obj, err := e.vm.Object("({})")
	if err != nil {
		return Value{}, classify(err)
	}
	for _, entry := range entries {
		if err := obj.Set(entry.Key, entry.Value.v); err != nil {
			return Value{}, classify(err)
		}
	}
	return s.wrap(obj.Value()), nil
}

// Eval runs code in the global scope.
func (s *Scope) Eval(code string) (result Value, err error) {
	e, err := s.live()
	if err != nil {
		return Value{}, err
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	v, err := e.vm.Run(code)
	if err != nil {
		return Value{}, classify(err)
	}
	return s.wrap(v), nil
}

// CallFunction calls the global function name with args.
func (s *Scope) CallFunction(name string, args ...Value) (result Value, err error) {
	e, err := s.live()
	if err != nil {
		return Value{}, err
	}
	native := make([]any, len(args))
	for i, a := range args {
		if err := s.adopt(a); err != nil {
			return Value{}, err
		}
		native[i] = a.v
	}
	defer e.recoverAs(jsengine.ExecError, &err)

	fn, err := e.vm.Get(name)
	if err != nil {
		return Value{}, classify(err)
	}
	if fn.IsUndefined() {
		return Value{}, jsengine.NewExecError(fmt.Sprintf("ReferenceError: %s is not defined", name), nil)
	}
	if !fn.IsFunction() {
		return Value{}, jsengine.NewExecError(fmt.Sprintf("TypeError: %s is not a function", name), nil)
	}

	v, err := fn.Call(otto.UndefinedValue(), native...)
	if err != nil {
		return Value{}, classify(err)
	}
	return s.wrap(v), nil
}
