// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsengine

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"init", NewInitError("no payload", nil), "failed to initialize js environment (detail: no payload)"},
		{"exec", NewExecError("ReferenceError: x is not defined", nil), "failed to execute js (detail: ReferenceError: x is not defined)"},
		{"value", KindMismatch(KindInt, KindString), "failed to convert js value (detail: expected int, got string)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cause := errors.New("native")
	tests := []struct {
		name    string
		err     error
		match   error
		nomatch []error
	}{
		{"init", NewInitError("d", nil), ErrInit, []error{ErrExec, ErrValue}},
		{"exec", NewExecError("d", cause), ErrExec, []error{ErrInit, ErrValue}},
		{"value", NewValueError("d", nil), ErrValue, []error{ErrInit, ErrExec}},
		{"wrapped", fmt.Errorf("render: %w", NewExecError("d", ErrForeignValue)), ErrForeignValue, []error{ErrScopeReleased}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.match) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.match)
			}
			for _, other := range tt.nomatch {
				if errors.Is(tt.err, other) {
					t.Errorf("errors.Is(%v, %v) = true, want false", tt.err, other)
				}
			}
		})
	}

	if !errors.Is(NewExecError("d", cause), cause) {
		t.Error("Unwrap should expose the native cause")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("x: %w", NewValueError("d", nil))); got != ValueError {
		t.Errorf("KindOf = %v, want %v", got, ValueError)
	}
	if got := KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", got)
	}
}

func TestAsInit(t *testing.T) {
	exec := NewExecError("SyntaxError: Unexpected token", ErrForeignValue)
	got := AsInit(exec)
	if got.Kind != InitError {
		t.Fatalf("Kind = %v, want %v", got.Kind, InitError)
	}
	if got.Detail != exec.Detail {
		t.Errorf("Detail = %q, want %q", got.Detail, exec.Detail)
	}
	if !errors.Is(got, ErrInit) || errors.Is(got, ErrExec) {
		t.Errorf("AsInit result matches wrong category: %v", got)
	}
	if !errors.Is(got, ErrForeignValue) {
		t.Error("AsInit dropped the cause")
	}

	plain := AsInit(errors.New("boom"))
	if plain.Detail != "boom" {
		t.Errorf("Detail = %q, want %q", plain.Detail, "boom")
	}
}
