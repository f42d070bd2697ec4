/*
The unbounded package provides the multi-producer/single-consumer FIFO queue
both connection actors drain. Producers never block: a slow consumer causes
the queue to grow in memory instead of exerting backpressure.
*/
package unbounded

import (
	"sync"

	"github.com/eapache/queue"
)

type Queue[T any] struct {
	mu     sync.Mutex
	items  *queue.Queue
	wake   chan struct{}
	closed bool
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: queue.New(),
		wake:  make(chan struct{}),
	}
}

// Push appends v to the queue without ever blocking. It returns false once
// the queue has been closed, in which case v is discarded.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items.Add(v)

	// Wake the consumer, if there is one waiting
	close(q.wake)
	q.wake = make(chan struct{})

	return true
}

// Pop removes and returns the oldest item, blocking until one is available.
// It returns false once the queue is closed and fully drained, or as soon as
// stop fires. A nil stop channel blocks forever.
func (q *Queue[T]) Pop(stop <-chan struct{}) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if q.items.Length() > 0 {
			v := q.items.Remove().(T)
			q.mu.Unlock()
			return v, true
		}
		if q.closed {
			q.mu.Unlock()
			return zero, false
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
		case <-stop:
			return zero, false
		}
	}
}

// Close stops the queue from accepting new items. Items already queued can
// still be popped. Closing more than once has no effect.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.wake)
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.items.Length()
}
