package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashd/stashd/internal/session"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("put then get", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "auth_abc", "user-1", time.Hour))

		value, err := store.Get(ctx, "auth_abc")
		require.NoError(t, err)
		assert.Equal(t, "user-1", value)
	})

	t.Run("absent key", func(t *testing.T) {
		store := session.NewMemoryStore()
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("expired key is invalid", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "auth_abc", "user-1", -time.Second))

		_, err := store.Get(ctx, "auth_abc")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("delete terminates the session", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "auth_abc", "user-1", time.Hour))
		require.NoError(t, store.Delete(ctx, "auth_abc"))

		_, err := store.Get(ctx, "auth_abc")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("delete absent key is not an error", func(t *testing.T) {
		store := session.NewMemoryStore()
		assert.NoError(t, store.Delete(ctx, "nope"))
	})
}
