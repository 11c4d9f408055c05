package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Worker polls a queue and dispatches tasks to registered handlers.
// Failed tasks are logged and dropped; there is no retry and no
// dead-letter queue in this transport.
type Worker struct {
	storage  Storage
	handlers map[string]Handler
	queue    string
	workerID uuid.UUID

	pullInterval time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerQueue sets the queue the worker consumes.
func WithWorkerQueue(queue string) WorkerOption {
	return func(w *Worker) {
		if queue != "" {
			w.queue = queue
		}
	}
}

// WithPullInterval sets how long the worker sleeps when the queue is empty.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pullInterval = d
		}
	}
}

// WithWorkerLogger sets the worker's logger.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a new task worker.
func NewWorker(storage Storage, opts ...WorkerOption) (*Worker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	w := &Worker{
		storage:      storage,
		handlers:     make(map[string]Handler),
		queue:        DefaultQueueName,
		workerID:     uuid.New(),
		pullInterval: time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// RegisterHandler registers a task handler. Nil handlers are ignored.
func (w *Worker) RegisterHandler(handler Handler) {
	if handler == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[handler.Name()] = handler
}

// Start begins processing tasks in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return fmt.Errorf("worker already started")
	}
	if len(w.handlers) == 0 {
		return ErrNoHandlers
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.String("queue", w.queue))
	return nil
}

// Stop halts polling and waits for the in-flight task to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return fmt.Errorf("worker not started")
	}
	cancel()
	w.wg.Wait()

	w.logger.Info("worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.storage.Pop(ctx, w.queue)
		if err != nil {
			if !errors.Is(err, ErrEmptyQueue) && !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to pop task", slog.String("queue", w.queue), slog.String("error", err.Error()))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pullInterval):
			}
			continue
		}

		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	w.mu.Lock()
	handler, ok := w.handlers[task.Name]
	w.mu.Unlock()

	if !ok {
		w.logger.Error("dropping task",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.Name),
			slog.String("error", ErrHandlerNotFound.Error()))
		return
	}

	if err := handler.Handle(ctx, task.Payload); err != nil {
		// Fire-and-forget transport: the failure is terminal for this task.
		w.logger.Error("task failed",
			slog.String("task_id", task.ID.String()),
			slog.String("task_name", task.Name),
			slog.String("error", err.Error()))
	}
}
