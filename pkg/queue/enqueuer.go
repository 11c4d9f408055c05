package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enqueuer pushes tasks onto a queue.
type Enqueuer struct {
	storage Storage
	queue   string
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithEnqueuerQueue sets the queue tasks are pushed to.
func WithEnqueuerQueue(queue string) EnqueuerOption {
	return func(e *Enqueuer) {
		if queue != "" {
			e.queue = queue
		}
	}
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(storage Storage, opts ...EnqueuerOption) (*Enqueuer, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	e := &Enqueuer{
		storage: storage,
		queue:   DefaultQueueName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Enqueue marshals the payload and pushes it as a new task. The task
// name is derived from the payload type, matching the worker's typed
// handler registration.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any) error {
	if payload == nil {
		return ErrPayloadNil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	task := &Task{
		ID:        uuid.New(),
		Queue:     e.queue,
		Name:      qualifiedStructName(payload),
		Payload:   body,
		CreatedAt: time.Now(),
	}

	if err := e.storage.Push(ctx, task); err != nil {
		return fmt.Errorf("failed to push task %q to queue %q: %w", task.Name, task.Queue, err)
	}
	return nil
}
