package queue

import "sync"

// InMemoryQueue implements an in-memory FIFO queue guarded by a mutex.
// Enqueue never blocks; a bounded queue rejects items once full.
type InMemoryQueue struct {
	lock     sync.Mutex
	items    []interface{}
	head     int
	capacity int
}

// NewInMemoryQueue creates a new queue. A capacity of 0 or less means the
// queue grows without bound.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &InMemoryQueue{
		capacity: capacity,
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.capacity > 0 && q.sizeLocked() >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, item)
	return nil
}

// Dequeue removes and returns the item from the front of the queue.
func (q *InMemoryQueue) Dequeue() (interface{}, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.sizeLocked() == 0 {
		return nil, false
	}
	item := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	q.compactLocked()
	return item, true
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.sizeLocked()
}

// ReadAllMessages removes and returns every pending item in FIFO order.
func (q *InMemoryQueue) ReadAllMessages() ([]interface{}, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.sizeLocked() == 0 {
		return nil, nil
	}
	messages := make([]interface{}, q.sizeLocked())
	copy(messages, q.items[q.head:])
	q.items = nil
	q.head = 0
	return messages, nil
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue) ClearQueue() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = nil
	q.head = 0
}

func (q *InMemoryQueue) sizeLocked() int {
	return len(q.items) - q.head
}

// compactLocked releases the consumed prefix once it dominates the slice.
func (q *InMemoryQueue) compactLocked() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head >= 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		for i := n; i < len(q.items); i++ {
			q.items[i] = nil
		}
		q.items = q.items[:n]
		q.head = 0
	}
}
