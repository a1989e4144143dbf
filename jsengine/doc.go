// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package jsengine defines the contract shared by every embedded JavaScript
// backend: the kinds a value can take, the engine and scope interfaces, and
// the three error categories that are allowed to cross a backend boundary.
//
// Backends live in sub-packages:
//
//	gojaengine  values are exported to owned form as soon as they leave the engine
//	ottoengine  values borrow the engine through a scope and die with it
//	hostjs      values are handles into the surrounding JS realm (js && wasm)
//
// None of the engines are safe for concurrent use. Callers that need
// parallelism run one engine per goroutine; see internal/enginecache.
package jsengine
