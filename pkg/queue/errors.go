package queue

import "errors"

// ErrQueueFull is returned by Enqueue when a bounded queue is at capacity.
// The item is not stored.
var ErrQueueFull = errors.New("queue is full")

func IsQueueFull(err error) bool {
	return errors.Is(err, ErrQueueFull)
}
