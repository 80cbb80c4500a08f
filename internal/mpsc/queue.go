// Package mpsc implements the unbounded, thread-safe message queue that decouples
// the engine's compute loop from the host's control thread.
package mpsc

import (
	"sync"

	"github.com/tos-network/cn-worker-core/internal/message"
)

// Queue is a multi-producer/single-consumer-safe FIFO. Write never blocks and
// never drops; Read blocks until an item is available; Drain moves everything
// buffered into the caller's slice without blocking.
//
// The queue is unbounded in the same sense the reference model is: the
// backing slice grows on demand rather than applying backpressure. A separate
// buffered Notify channel (capacity 1) lets a consumer select/poll for
// "queue became non-empty" without holding the mutex.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []message.Message
	Notify chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{Notify: make(chan struct{}, 1)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Write appends m and wakes one waiter. Never blocks, never fails.
func (q *Queue) Write(m message.Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()
	q.cond.Signal()

	select {
	case q.Notify <- struct{}{}:
	default:
	}
}

// Read blocks until the queue is non-empty, then removes and returns the head.
func (q *Queue) Read() message.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m
}

// Drain atomically moves all buffered items into out, preserving FIFO order,
// and returns the result. Never blocks.
func (q *Queue) Drain(out []message.Message) []message.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out = append(out, q.items...)
	q.items = nil
	return out
}

// Len reports the number of items currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
