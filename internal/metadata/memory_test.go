package metadata_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashd/stashd/internal/metadata"
)

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	store := metadata.NewMemoryStore()

	id := store.AddUser("alice@example.com", "digest")

	t.Run("by id", func(t *testing.T) {
		u, err := store.UserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.UserByID(ctx, "000000000000000000000000")
		assert.ErrorIs(t, err, metadata.ErrNotFound)
	})

	t.Run("by credentials", func(t *testing.T) {
		u, err := store.UserByCredentials(ctx, "alice@example.com", "digest")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
	})

	t.Run("wrong digest", func(t *testing.T) {
		_, err := store.UserByCredentials(ctx, "alice@example.com", "other")
		assert.ErrorIs(t, err, metadata.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.CountUsers(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestMemoryStore_Files(t *testing.T) {
	ctx := context.Background()
	store := metadata.NewMemoryStore()
	owner := store.AddUser("alice@example.com", "digest")

	id, err := store.InsertFile(ctx, &metadata.File{
		UserID:   owner,
		Name:     "notes",
		Type:     metadata.TypeFolder,
		ParentID: metadata.RootID,
	})
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		f, err := store.FileByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "notes", f.Name)
		assert.Equal(t, metadata.TypeFolder, f.Type)
	})

	t.Run("owner scope", func(t *testing.T) {
		_, err := store.FileByIDOwned(ctx, id, "someone-else")
		assert.ErrorIs(t, err, metadata.ErrNotFound)

		f, err := store.FileByIDOwned(ctx, id, owner)
		require.NoError(t, err)
		assert.Equal(t, id, f.ID)
	})

	t.Run("set public", func(t *testing.T) {
		f, err := store.SetFilePublic(ctx, id, owner, true)
		require.NoError(t, err)
		assert.True(t, f.IsPublic)

		_, err = store.SetFilePublic(ctx, id, "someone-else", false)
		assert.ErrorIs(t, err, metadata.ErrNotFound)
	})
}

func TestMemoryStore_FilesByParent(t *testing.T) {
	ctx := context.Background()
	store := metadata.NewMemoryStore()
	owner := store.AddUser("alice@example.com", "digest")

	var ids []string
	for i := 0; i < 45; i++ {
		id, err := store.InsertFile(ctx, &metadata.File{
			UserID:   owner,
			Name:     fmt.Sprintf("file-%02d", i),
			Type:     metadata.TypeFile,
			ParentID: metadata.RootID,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	t.Run("insertion order preserved", func(t *testing.T) {
		files, err := store.FilesByParent(ctx, owner, metadata.RootID, 0, 20)
		require.NoError(t, err)
		require.Len(t, files, 20)
		assert.Equal(t, ids[0], files[0].ID)
		assert.Equal(t, ids[19], files[19].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		page2, err := store.FilesByParent(ctx, owner, metadata.RootID, 40, 20)
		require.NoError(t, err)
		assert.Len(t, page2, 5)

		page3, err := store.FilesByParent(ctx, owner, metadata.RootID, 60, 20)
		require.NoError(t, err)
		assert.Empty(t, page3)
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		files, err := store.FilesByParent(ctx, "someone-else", metadata.RootID, 0, 20)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
