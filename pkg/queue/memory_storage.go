package queue

import (
	"context"
	"sync"
)

// MemoryStorage implements Storage in memory for tests and local
// development.
type MemoryStorage struct {
	mu     sync.Mutex
	queues map[string][]*Task
}

// NewMemoryStorage creates a new in-memory queue storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{queues: make(map[string][]*Task)}
}

// Push appends the task to its queue.
func (s *MemoryStorage) Push(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taskCopy := *task
	s.queues[task.Queue] = append(s.queues[task.Queue], &taskCopy)
	return nil
}

// Pop removes and returns the oldest task, or ErrEmptyQueue.
func (s *MemoryStorage) Pop(ctx context.Context, queue string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.queues[queue]
	if len(tasks) == 0 {
		return nil, ErrEmptyQueue
	}

	task := tasks[0]
	s.queues[queue] = tasks[1:]
	return task, nil
}

// Len reports the number of pending tasks on a queue.
func (s *MemoryStorage) Len(queue string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[queue])
}
