// Package session stores authentication tokens with a server-enforced
// time-to-live. Expiry happens inside the store; callers never poll.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired. An
// expired token is unconditionally invalid.
var ErrNotFound = errors.New("session: not found")

// Store is an ephemeral key/value store with per-key expiry.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// Healthcheck must return promptly; callers bound it with a short
	// deadline so liveness probes never hang.
	Healthcheck(ctx context.Context) error
}
