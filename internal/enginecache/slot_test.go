// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package enginecache

import (
	"errors"
	"sync"
	"testing"

	"github.com/aplane-algo/katex/jsengine"
)

func TestSlotMemoizesEngine(t *testing.T) {
	builds := 0
	s := NewSlot(func() (*fakeEngine, error) {
		builds++
		return &fakeEngine{id: builds}, nil
	})

	if _, ok := s.Peek(); ok {
		t.Fatal("Peek before Get should report nothing")
	}
	a, err := s.Get()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.Get()
	if a != b || builds != 1 || s.Attempts() != 1 {
		t.Errorf("Get built %d engines (attempts %d), want 1", builds, s.Attempts())
	}
	if e, ok := s.Peek(); !ok || e != a {
		t.Error("Peek after Get should return the engine")
	}
}

func TestSlotFailureIsNeverRetried(t *testing.T) {
	initErr := jsengine.NewInitError("SyntaxError: Unexpected end of input", nil)
	s := NewSlot(func() (*fakeEngine, error) {
		return nil, initErr
	})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Get()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != initErr {
			t.Errorf("call %d err = %v, want the cached init error", i, err)
		}
	}
	if s.Attempts() != 1 {
		t.Errorf("Attempts = %d, want 1", s.Attempts())
	}
	if _, ok := s.Peek(); ok {
		t.Error("Peek should not report a failed engine")
	}
}

func TestSlotPanicBecomesInitError(t *testing.T) {
	s := NewSlot(func() (*fakeEngine, error) {
		panic("payload exploded")
	})
	_, err := s.Get()
	if !errors.Is(err, jsengine.ErrInit) {
		t.Fatalf("err = %v, want InitError", err)
	}
	if _, err2 := s.Get(); err2 != err {
		t.Errorf("second Get err = %v, want %v", err2, err)
	}
}
