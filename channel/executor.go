// Package channel implements the frame mixer orchestrator (C9): the
// per-channel loop that advances the tweened transform engine, drives
// the image and audio mixers once (progressive) or twice (interlaced)
// per tick, and delivers finished frames to a bounded output queue.
package channel

import "context"

// DefaultQueueCapacity is the channel executor's typical bounded task
// queue depth, per spec §5.
const DefaultQueueCapacity = 2

type job struct {
	fn   func()
	done chan struct{}
}

// Executor is the channel-scoped, single-goroutine CPU-side executor:
// visitor traversal, tween evaluation, and audio mixing all run here,
// serialized with each other, separately from the GPU device's own
// executor. Grounded on gpu.Executor's single-goroutine shape, reduced
// to one priority class and a small bounded queue instead of two
// priority channels, matching spec §5's "channel-scoped executor with
// bounded queue (capacity 2)".
type Executor struct {
	tasks chan job
	quit  chan struct{}
	done  chan struct{}
}

// NewExecutor starts the executor goroutine with the given queue
// capacity (DefaultQueueCapacity if capacity <= 0).
func NewExecutor(capacity int) *Executor {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	e := &Executor{
		tasks: make(chan job, capacity),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	defer close(e.done)
	for {
		select {
		case j := <-e.tasks:
			j.fn()
			close(j.done)
		case <-e.quit:
			return
		}
	}
}

// Invoke runs fn on the executor goroutine and blocks the caller until
// fn completes, the context is cancelled, or the executor is closed. If
// the queue is full, Invoke blocks the caller before fn even starts,
// which is the orchestrator's backpressure point.
func (e *Executor) Invoke(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case e.tasks <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.quit:
		return context.Canceled
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
			return context.Canceled
		}
	}
}

// QueueDepth reports the number of tasks currently queued, read for
// per-tick diagnostics. Approximate: it is read without synchronizing
// with concurrent sends, matching the non-critical, advisory nature of a
// diagnostics counter.
func (e *Executor) QueueDepth() int {
	return len(e.tasks)
}

// Close stops the executor once any in-flight job finishes. Queued jobs
// that have not started are dropped; per spec, in-flight GPU readbacks
// are drained by the GPU thread itself, not by this executor.
func (e *Executor) Close() {
	close(e.quit)
	<-e.done
}
