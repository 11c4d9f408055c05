// Package queue implements the asynchronous job transport used for
// thumbnail generation. Jobs are fire-and-forget: the enqueuer pushes a
// task onto a named queue and the worker consumes it independently,
// logging and dropping failures without retry.
package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("storage cannot be nil")
	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("payload cannot be nil")
	// ErrEmptyQueue is returned by Storage.Pop when no task is available.
	ErrEmptyQueue = errors.New("no task available")
	// ErrNoHandlers is returned when a worker starts with no handlers registered.
	ErrNoHandlers = errors.New("no task handlers registered")
	// ErrHandlerNotFound is returned when no handler matches a task name.
	ErrHandlerNotFound = errors.New("no handler registered for task type")
)

// Task is a single unit of work on a queue.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Queue     string    `json:"queue"`
	Name      string    `json:"name"`
	Payload   []byte    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// qualifiedStructName derives the task name from the payload type so
// enqueuer and worker agree on it without explicit registration keys.
func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
