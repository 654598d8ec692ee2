package workqueue

import (
	"errors"
	"sync"
)

// ErrTooManyDone is returned when TaskDone is called more times than Put.
var ErrTooManyDone = errors.New("workqueue: TaskDone called more times than items were put")

// ErrClosed is returned by Put after Close.
var ErrClosed = errors.New("workqueue: queue closed")

// Queue is safe for concurrent use by any number of producers and consumers.
// The zero value is not usable; construct with New.
type Queue[T any] struct {
	mu         sync.Mutex
	available  *sync.Cond
	finished   *sync.Cond
	items      []T
	head       int
	unfinished int
	closed     bool
}

// New returns an empty open queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.available = sync.NewCond(&q.mu)
	q.finished = sync.NewCond(&q.mu)
	return q
}

// Put appends item and wakes one blocked consumer.
func (q *Queue[T]) Put(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.unfinished++
	q.available.Signal()
	return nil
}

// Get removes and returns the oldest item, blocking while the queue is empty.
// It returns false once the queue is closed and no items remain.
func (q *Queue[T]) Get() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.items) && !q.closed {
		q.available.Wait()
	}
	var zero T
	if q.head == len(q.items) {
		return zero, false
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item, true
}

// TaskDone acknowledges one item previously returned by Get.
func (q *Queue[T]) TaskDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unfinished <= 0 {
		return ErrTooManyDone
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.finished.Broadcast()
	}
	return nil
}

// Join blocks until every item put so far has been acknowledged.
func (q *Queue[T]) Join() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.unfinished > 0 {
		q.finished.Wait()
	}
}

// Close stops further Puts and wakes all blocked consumers. Items already
// queued are still handed out.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.available.Broadcast()
}

// Len reports the number of items waiting to be handed out.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Unfinished reports items put but not yet acknowledged.
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}
