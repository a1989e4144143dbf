// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package katex

import "github.com/aplane-algo/katex/jsengine"

// Error is the error type returned by rendering. Match categories with
// errors.Is against ErrInit, ErrExec and ErrValue.
type Error = jsengine.Error

var (
	// ErrInit matches failures to build an engine or load the payload.
	ErrInit = jsengine.ErrInit
	// ErrExec matches script failures, KaTeX parse errors included.
	ErrExec = jsengine.ErrExec
	// ErrValue matches values of an unexpected kind or invalid options.
	ErrValue = jsengine.ErrValue
)
