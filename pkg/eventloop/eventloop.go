// Package eventloop runs submitted tasks one at a time, in submission order,
// on a single goroutine.
package eventloop

import (
	"context"
	"errors"
)

var ErrStopped = errors.New("event loop stopped")

type task struct {
	fn   func()
	done chan struct{}
}

type Loop struct {
	tasks   chan task
	stopped chan struct{}
}

func New(queueSize int) *Loop {
	return &Loop{
		tasks:   make(chan task, queueSize),
		stopped: make(chan struct{}),
	}
}

// Run processes tasks until ctx is done. It must be called once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-l.tasks:
			t.fn()
			close(t.done)
		}
	}
}

// Do enqueues fn and waits until it has run. Once enqueued, fn runs even if
// ctx is cancelled while waiting.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}

	select {
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- t:
	}

	select {
	case <-t.done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
