package queue

import "context"

// Storage is the transport backing a queue. Push appends a task, Pop
// removes and returns the oldest pending task or ErrEmptyQueue.
// Implementations must be safe for concurrent use.
type Storage interface {
	Push(ctx context.Context, task *Task) error
	Pop(ctx context.Context, queue string) (*Task, error)
}
