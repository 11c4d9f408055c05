package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "queue:"

// RedisStorage backs a queue with a Redis list. LPUSH/RPOP gives FIFO
// ordering and at-least-once handoff to a single consumer group of one.
type RedisStorage struct {
	client redis.UniversalClient
}

// NewRedisStorage creates a Redis-backed queue storage.
func NewRedisStorage(client redis.UniversalClient) (*RedisStorage, error) {
	if client == nil {
		return nil, ErrStorageNil
	}
	return &RedisStorage{client: client}, nil
}

// Push appends the task to its queue's list.
func (s *RedisStorage) Push(ctx context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := s.client.LPush(ctx, redisKeyPrefix+task.Queue, body).Err(); err != nil {
		return fmt.Errorf("failed to push task to redis: %w", err)
	}
	return nil
}

// Pop removes and returns the oldest task, or ErrEmptyQueue.
func (s *RedisStorage) Pop(ctx context.Context, queue string) (*Task, error) {
	body, err := s.client.RPop(ctx, redisKeyPrefix+queue).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmptyQueue
		}
		return nil, fmt.Errorf("failed to pop task from redis: %w", err)
	}

	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}
