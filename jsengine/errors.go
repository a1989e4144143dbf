// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a backend can report.
type ErrorKind int

const (
	// InitError: the engine or its init script could not be set up.
	InitError ErrorKind = iota + 1
	// ExecError: evaluation or a call failed, including lookup failures
	// and exceptions thrown by script code.
	ExecError
	// ValueError: a value could not be converted to the requested shape.
	ValueError
)

func (k ErrorKind) String() string {
	switch k {
	case InitError:
		return "init"
	case ExecError:
		return "exec"
	case ValueError:
		return "value"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Category sentinels. errors.Is(err, ErrExec) is true for every *Error of
// kind ExecError, whatever its detail.
var (
	ErrInit  = errors.New("failed to initialize js environment")
	ErrExec  = errors.New("failed to execute js")
	ErrValue = errors.New("failed to convert js value")
)

// Misuse sentinels, wrapped inside an ExecError or ValueError.
var (
	// ErrForeignValue indicates a value produced by a different engine
	// instance was handed to this one.
	ErrForeignValue = errors.New("value belongs to a different engine")

	// ErrScopeReleased indicates a scope, or a value borrowed from it, was
	// used after the scope was released or superseded.
	ErrScopeReleased = errors.New("scope has been released")

	// ErrEngineClosed indicates the engine was used after Close.
	ErrEngineClosed = errors.New("engine is closed")
)

// Error is the only error type that crosses a backend boundary.
type Error struct {
	Kind   ErrorKind
	Detail string // native message, kept verbatim
	Err    error  // native cause or misuse sentinel, may be nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (detail: %s)", e.sentinel().Error(), e.Detail)
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case InitError:
		return ErrInit
	case ValueError:
		return ErrValue
	default:
		return ErrExec
	}
}

// Is matches the category sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewInitError builds an InitError. cause may be nil.
func NewInitError(detail string, cause error) *Error {
	return &Error{Kind: InitError, Detail: detail, Err: cause}
}

// NewExecError builds an ExecError. cause may be nil.
func NewExecError(detail string, cause error) *Error {
	return &Error{Kind: ExecError, Detail: detail, Err: cause}
}

// NewValueError builds a ValueError. cause may be nil.
func NewValueError(detail string, cause error) *Error {
	return &Error{Kind: ValueError, Detail: detail, Err: cause}
}

// KindMismatch is the ValueError returned by a narrowing accessor whose
// requested kind differs from the value's tag.
func KindMismatch(want, got Kind) *Error {
	return NewValueError(fmt.Sprintf("expected %s, got %s", want, got), nil)
}

// KindOf returns the kind of err when it is an *Error, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// AsInit re-labels err as an InitError, keeping its detail. It is used when
// an exec failure happens while running an init script.
func AsInit(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: InitError, Detail: e.Detail, Err: e.Err}
	}
	return NewInitError(err.Error(), err)
}
