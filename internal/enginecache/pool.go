// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package enginecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/aplane-algo/katex/jsengine"
)

// ErrPoolClosed is returned by Do after Close.
var ErrPoolClosed = errors.New("engine pool is closed")

type job[E any] struct {
	ctx  context.Context
	fn   func(E) error
	done chan error
}

// Pool runs jobs on a fixed number of thread-affine workers. Each worker
// lazily builds its own engine through a Slot on first use.
type Pool[E any] struct {
	jobs    chan *job[E]
	closed  chan struct{}
	stopped chan struct{}
	slots   []*Slot[E]
	log     *slog.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// PoolOption configures NewPool.
type PoolOption func(*poolOptions)

type poolOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger for worker lifecycle events.
func WithLogger(l *slog.Logger) PoolOption {
	return func(o *poolOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewPool starts size workers (at least one). build is called once per
// worker, on that worker's thread, the first time it receives a job.
func NewPool[E any](size int, build func() (E, error), opts ...PoolOption) *Pool[E] {
	o := poolOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	if size < 1 {
		size = 1
	}

	p := &Pool[E]{
		jobs:    make(chan *job[E]),
		closed:  make(chan struct{}),
		stopped: make(chan struct{}),
		slots:   make([]*Slot[E], size),
		log:     o.logger,
	}
	for i := range p.slots {
		p.slots[i] = NewSlot(build)
		p.wg.Add(1)
		go p.work(i)
	}
	go func() {
		p.wg.Wait()
		close(p.stopped)
	}()
	return p
}

// Size returns the number of workers.
func (p *Pool[E]) Size() int {
	return len(p.slots)
}

// Attempts returns the number of engine builds attempted across workers.
func (p *Pool[E]) Attempts() int {
	n := 0
	for _, s := range p.slots {
		n += s.Attempts()
	}
	return n
}

// Do runs fn with a worker's engine and waits for it to finish.
//
// If the worker's engine failed to build, Do returns that build error, the
// same one on every call. If ctx ends while fn runs and the engine is a
// jsengine.Interrupter, the script is interrupted and Do returns an
// ExecError wrapping ctx.Err().
func (p *Pool[E]) Do(ctx context.Context, fn func(E) error) error {
	j := &job[E]{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case <-p.closed:
		return jsengine.NewExecError(ErrPoolClosed.Error(), ErrPoolClosed)
	case <-ctx.Done():
		return jsengine.NewExecError(ctx.Err().Error(), ctx.Err())
	case p.jobs <- j:
	}

	select {
	case err := <-j.done:
		return err
	case <-p.stopped:
		select {
		case err := <-j.done:
			return err
		default:
			return jsengine.NewExecError(ErrPoolClosed.Error(), ErrPoolClosed)
		}
	}
}

// Close stops the workers, waits for running jobs and closes every engine
// that has a Close() error method. It is safe to call more than once.
func (p *Pool[E]) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	<-p.stopped
	return nil
}

func (p *Pool[E]) work(id int) {
	// Never unlocked: the thread exits together with the goroutine.
	runtime.LockOSThread()
	defer p.wg.Done()

	slot := p.slots[id]
	defer func() {
		if e, ok := slot.Peek(); ok {
			if c, ok := any(e).(interface{ Close() error }); ok {
				if err := c.Close(); err != nil {
					p.log.Warn("closing engine failed", "worker", id, "error", err)
				}
			}
		}
		p.log.Debug("engine worker stopped", "worker", id)
	}()

	for {
		select {
		case <-p.closed:
			return
		case j := <-p.jobs:
			j.done <- p.run(id, slot, j)
		}
	}
}

func (p *Pool[E]) run(id int, slot *Slot[E], j *job[E]) error {
	if err := j.ctx.Err(); err != nil {
		return jsengine.NewExecError(err.Error(), err)
	}

	first := slot.Attempts() == 0
	e, err := slot.Get()
	if err != nil {
		if first {
			p.log.Warn("engine initialization failed", "worker", id, "error", err)
		}
		return err
	}
	if first {
		p.log.Debug("engine ready", "worker", id)
	}

	in, interruptible := any(e).(jsengine.Interrupter)
	if !interruptible || j.ctx.Done() == nil {
		return call(j.fn, e)
	}

	stop := make(chan struct{})
	watched := make(chan bool, 1)
	go func() {
		select {
		case <-j.ctx.Done():
			p.log.Debug("interrupting engine", "worker", id, "cause", j.ctx.Err())
			in.Interrupt(j.ctx.Err().Error())
			watched <- true
		case <-stop:
			watched <- false
		}
	}()

	err = call(j.fn, e)
	close(stop)
	if interrupted := <-watched; interrupted {
		in.ClearInterrupt()
		if err != nil {
			return jsengine.NewExecError(fmt.Sprintf("interrupted: %v", j.ctx.Err()), j.ctx.Err())
		}
	}
	return err
}

// call runs fn, reporting a panic as an ExecError.
func call[E any](fn func(E) error, e E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = jsengine.NewExecError(fmt.Sprint(r), nil)
		}
	}()
	return fn(e)
}
