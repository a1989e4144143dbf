// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

// Value is the read side of a script value.
//
// Narrowing accessors succeed only when the value's tag matches; there is no
// implicit coercion. A mismatch returns a ValueError naming both kinds.
// Predicates are pure tag queries and never fail.
type Value interface {
	Kind() Kind

	IsNull() bool
	IsBool() bool
	IsInt() bool
	IsFloat() bool
	IsString() bool

	ToBool() (bool, error)
	ToInt() (int32, error)
	ToFloat() (float64, error)

	// ToString returns the string byte-exact. A native string that is not
	// well-formed UTF-16 fails with a ValueError.
	ToString() (string, error)
}

// Entry is one key/value pair used to build an object.
type Entry[V any] struct {
	Key   string
	Value V
}

// Factory creates values of type V. For objects, when a key repeats the
// last entry wins.
type Factory[V any] interface {
	Null() V
	NewBool(b bool) (V, error)
	NewInt(i int32) (V, error)
	NewFloat(f float64) (V, error)
	NewString(s string) (V, error)
	NewArray(items []V) (V, error)
	NewObject(entries []Entry[V]) (V, error)
}

// Engine is one execution context.
//
// Contract:
//   - Concurrency: not safe for concurrent use.
//   - Errors: every failure is an *Error. A malformed script or a thrown
//     exception is an ExecError and never a panic. Calling a name that is
//     not defined, or not callable, is an ExecError.
//   - Arity: not checked; a callee that rejects its arguments throws and
//     the throw surfaces as ExecError.
//   - Close: releases the native context; later calls fail with
//     ExecError wrapping ErrEngineClosed.
type Engine[V any] interface {
	Eval(code string) (V, error)
	CallFunction(name string, args ...V) (V, error)
	Close() error
}

// Scope is a transient borrow of a scoped engine. Values it produces are
// only valid until Release, or until the engine hands out a newer scope.
// Passing a value from a released scope fails with ErrScopeReleased; passing
// a value from another engine fails with ErrForeignValue.
type Scope[V any] interface {
	Factory[V]
	Eval(code string) (V, error)
	CallFunction(name string, args ...V) (V, error)
	Release()
}

// Interrupter is implemented by engines that can abort a running script
// from another goroutine.
//
// Interrupt may be called at any time; if nothing is running, the next run
// may be aborted instead. ClearInterrupt drops such a pending request and is
// only called from the goroutine that owns the engine.
type Interrupter interface {
	Interrupt(reason string)
	ClearInterrupt()
}
