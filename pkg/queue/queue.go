package queue

// Queue represents a basic FIFO queue.
// Implementations must be safe for concurrent producers.
type Queue interface {
	// Enqueue adds an item to the end of the queue without blocking.
	Enqueue(item interface{}) error
	// Dequeue removes and returns the item at the front of the queue.
	// It reports false when the queue is empty.
	Dequeue() (interface{}, bool)
	Size() int
	ReadAllMessages() ([]interface{}, error)
	ClearQueue()
}
