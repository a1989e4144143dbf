// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package enginecache keeps script engines alive between calls.
//
// A Slot memoizes the result of building one engine, failure included. A
// Pool runs a fixed set of workers, each pinned to its own OS thread and
// owning one Slot, so an engine is only ever touched from the thread that
// created it.
package enginecache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aplane-algo/katex/jsengine"
)

// Slot is a write-once memo of (E, error). The first Get runs build; every
// later Get returns the same engine, or the same error. A failed build is
// never retried.
type Slot[E any] struct {
	once     sync.Once
	build    func() (E, error)
	engine   E
	err      error
	attempts atomic.Int32
}

// NewSlot returns an empty slot that will call build at most once.
func NewSlot[E any](build func() (E, error)) *Slot[E] {
	return &Slot[E]{build: build}
}

// Get builds the engine on first use and returns the memoized result.
func (s *Slot[E]) Get() (E, error) {
	s.once.Do(func() {
		s.attempts.Add(1)
		defer func() {
			if r := recover(); r != nil {
				var zero E
				s.engine = zero
				s.err = jsengine.NewInitError(fmt.Sprint(r), nil)
			}
		}()
		s.engine, s.err = s.build()
	})
	return s.engine, s.err
}

// Attempts reports how many times build ran: 0 or 1.
func (s *Slot[E]) Attempts() int {
	return int(s.attempts.Load())
}

// Peek returns the engine if it was built successfully, without building.
func (s *Slot[E]) Peek() (E, bool) {
	var zero E
	if s.attempts.Load() == 0 {
		return zero, false
	}
	e, err := s.Get()
	if err != nil {
		return zero, false
	}
	return e, true
}
