package blob_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashd/stashd/internal/blob"
)

func newStore(t *testing.T) *blob.Store {
	t.Helper()
	store, err := blob.NewStore(blob.Config{Root: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestNewStore(t *testing.T) {
	t.Run("empty root", func(t *testing.T) {
		_, err := blob.NewStore(blob.Config{})
		assert.ErrorIs(t, err, blob.ErrInvalidConfig)
	})

	t.Run("root created lazily", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "store")
		store, err := blob.NewStore(blob.Config{Root: root})
		require.NoError(t, err)

		_, statErr := os.Stat(root)
		assert.True(t, os.IsNotExist(statErr))

		_, err = store.Write(context.Background(), []byte("data"))
		require.NoError(t, err)

		_, statErr = os.Stat(root)
		assert.NoError(t, statErr)
	})
}

func TestStore_WriteAndOpen(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	path, err := store.Write(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, store.Root(), filepath.Dir(path))

	r, err := store.Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_WriteGeneratesDistinctNames(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	a, err := store.Write(ctx, []byte("a"))
	require.NoError(t, err)
	b, err := store.Write(ctx, []byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_WriteVariant(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	path, err := store.Write(ctx, []byte("original"))
	require.NoError(t, err)

	variant, err := store.WriteVariant(ctx, path, "250", []byte("small"))
	require.NoError(t, err)
	assert.Equal(t, path+"_250", variant)
	assert.True(t, store.Exists(ctx, variant))
}

func TestStore_Exists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	path, err := store.Write(ctx, []byte("x"))
	require.NoError(t, err)

	assert.True(t, store.Exists(ctx, path))
	assert.False(t, store.Exists(ctx, filepath.Join(store.Root(), "missing")))
}

func TestStore_PathConfinement(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	outside := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	_, err := store.Open(ctx, outside)
	assert.ErrorIs(t, err, blob.ErrInvalidPath)
	assert.False(t, store.Exists(ctx, outside))

	traversal := filepath.Join(store.Root(), "..", filepath.Base(outside))
	_, err = store.Open(ctx, traversal)
	assert.ErrorIs(t, err, blob.ErrInvalidPath)
}

func TestStore_OpenMissing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Open(ctx, filepath.Join(store.Root(), "nope"))
	assert.ErrorIs(t, err, blob.ErrNotFound)
}
