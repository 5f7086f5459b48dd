package queue

import (
	"sync"

	"github.com/kbukum/flowkit/errors"
)

// Queue is an unbounded FIFO safe for concurrent producers and consumers.
// The zero value is not usable; use New.
type Queue[T any] struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    []T
	closed   bool
}

// New creates an empty open queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the tail. It never blocks and fails only if the
// queue is closed.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.QueueClosed("push")
	}
	q.items = append(q.items, v)
	q.nonEmpty.Signal()
	return nil
}

// PushAll appends vs to the tail in order. It fails only if the queue is
// closed, in which case nothing is pushed.
func (q *Queue[T]) PushAll(vs ...T) error {
	if len(vs) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.QueueClosed("pushAll")
	}
	q.items = append(q.items, vs...)
	if len(vs) == 1 {
		q.nonEmpty.Signal()
	} else {
		q.nonEmpty.Broadcast()
	}
	return nil
}

// Pop removes and returns the head element, blocking until one is
// available. It returns ok=false only when the queue is closed and empty;
// that read is terminal.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			var zero T
			return zero, false
		}
		q.nonEmpty.Wait()
	}

	v = q.items[0]
	q.items = q.items[1:]
	return v, true
}

// Len returns the current number of queued elements. The value is a
// best-effort snapshot and may be stale under concurrent mutation.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue currently holds no elements. Snapshot
// semantics as for Len.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Closed reports whether the queue has been closed.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Drain closes the queue and removes and returns all remaining elements
// in FIFO order. Closing is one-way; a second Drain returns nil. Blocked
// Pop callers are woken and observe the terminal read.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	q.nonEmpty.Broadcast()

	out := q.items
	q.items = nil
	return out
}

// Clear discards all currently queued elements without closing the queue
// and returns the number discarded. Used by interrupt handling to cancel
// pending, not-yet-started input.
func (q *Queue[T]) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}
