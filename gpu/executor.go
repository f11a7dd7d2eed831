// Package gpu models the single-threaded GPU command context: one
// goroutine owns all device state, buffer pools, and the shape-keyed
// recycling pools that back texture and host-buffer allocation.
package gpu

import (
	"context"

	"github.com/gogpu/mixer"
)

// Priority selects which of the executor's two FIFO lanes a task runs on.
// High-priority tasks (buffer allocation) run ahead of normal-priority
// tasks (draws) so that a draw waiting on an allocation never starves it.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

type job struct {
	fn   func()
	done chan struct{}
}

// executorMarkerKey tags a context as already running on a particular
// Executor's goroutine.
type executorMarkerKey struct{}

// markCurrent returns a context that identifies e as the executor already
// driving the calling goroutine. Code that receives this context back
// (through a nested CreateDeviceBuffer/CreateHostBuffer call, say) can
// tell it is already on the GPU thread and must not recurse through
// Invoke/Submit, which would otherwise deadlock a single-goroutine
// executor against its own in-flight job.
func markCurrent(ctx context.Context, e *Executor) context.Context {
	return context.WithValue(ctx, executorMarkerKey{}, e)
}

// OnGoroutine reports whether ctx was produced by e's own Invoke or
// Submit, i.e. whether the calling code is already running on e's
// executor goroutine.
func (e *Executor) OnGoroutine(ctx context.Context) bool {
	marker, _ := ctx.Value(executorMarkerKey{}).(*Executor)
	return marker == e
}

// Executor is a cooperative single-goroutine command queue. All state it
// protects (bindings, viewport, active program, pool contents) must only
// be touched from inside a submitted job.
type Executor struct {
	high   chan job
	normal chan job
	quit   chan struct{}
	done   chan struct{}
}

// NewExecutor starts the executor's goroutine and returns a handle to it.
func NewExecutor() *Executor {
	e := &Executor{
		high:   make(chan job, 64),
		normal: make(chan job, 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	defer close(e.done)
	for {
		select {
		case j := <-e.high:
			j.fn()
			close(j.done)
			continue
		case <-e.quit:
			return
		default:
		}

		select {
		case j := <-e.high:
			j.fn()
			close(j.done)
		case j := <-e.normal:
			j.fn()
			close(j.done)
		case <-e.quit:
			return
		}
	}
}

// Invoke runs fn on the executor goroutine and blocks the caller until it
// completes. If ctx ends first, Invoke returns ctx.Err() at once, even
// when fn has already started; fn then still runs to completion on the
// executor. If the executor is closed before fn runs, Invoke returns
// mixer.ErrDeviceClosed. fn receives a context marked current for e;
// pass it on to any nested Device call so allocation can detect it is
// already on the GPU thread.
func (e *Executor) Invoke(ctx context.Context, p Priority, fn func(ctx context.Context)) error {
	inner := markCurrent(ctx, e)
	j := job{fn: func() { fn(inner) }, done: make(chan struct{})}
	ch := e.chanFor(p)
	select {
	case ch <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.quit:
		return mixer.ErrDeviceClosed
	}
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		select {
		case <-j.done:
			return nil
		default:
			return mixer.ErrDeviceClosed
		}
	}
}

func (e *Executor) chanFor(p Priority) chan job {
	if p == PriorityHigh {
		return e.high
	}
	return e.normal
}

// Close stops the executor once its current job finishes. Queued jobs
// that have not started are dropped.
func (e *Executor) Close() {
	close(e.quit)
	<-e.done
}

// Future carries the deferred result of a job submitted with Submit.
type Future[T any] struct {
	val  T
	err  error
	done chan struct{}
}

// Get blocks until the producing job completes and returns its result.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit enqueues fn on the executor at priority p and returns a Future
// for its result without blocking the caller. fn receives a context
// marked current for e, to pass on to nested Device calls the same way
// Invoke's fn does.
func Submit[T any](e *Executor, ctx context.Context, p Priority, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	inner := markCurrent(ctx, e)
	j := job{
		fn: func() {
			f.val, f.err = fn(inner)
		},
		done: make(chan struct{}),
	}
	go func() {
		select {
		case e.chanFor(p) <- j:
		case <-ctx.Done():
			f.err = ctx.Err()
			close(f.done)
			return
		case <-e.quit:
			f.err = mixer.ErrDeviceClosed
			close(f.done)
			return
		}
		select {
		case <-j.done:
		case <-e.done:
			select {
			case <-j.done:
			default:
				f.err = mixer.ErrDeviceClosed
			}
		}
		close(f.done)
	}()
	return f
}
