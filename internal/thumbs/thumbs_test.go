package thumbs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashd/stashd/internal/blob"
	"github.com/stashd/stashd/internal/metadata"
	"github.com/stashd/stashd/internal/thumbs"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func payload(t *testing.T, job thumbs.Job) json.RawMessage {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

func TestHandler(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*metadata.MemoryStore, *blob.Store, string, string) {
		t.Helper()
		files := metadata.NewMemoryStore()
		blobs, err := blob.NewStore(blob.Config{Root: t.TempDir()})
		require.NoError(t, err)

		owner := files.AddUser("alice@example.com", "digest")
		path, err := blobs.Write(ctx, pngBytes(t, 600, 400))
		require.NoError(t, err)

		fileID, err := files.InsertFile(ctx, &metadata.File{
			UserID:    owner,
			Name:      "photo.png",
			Type:      metadata.TypeImage,
			ParentID:  metadata.RootID,
			LocalPath: path,
		})
		require.NoError(t, err)
		return files, blobs, owner, fileID
	}

	t.Run("generates all variants", func(t *testing.T) {
		files, blobs, owner, fileID := setup(t)
		handler := thumbs.NewHandler(files, blobs, nil)

		require.NoError(t, handler.Handle(ctx, payload(t, thumbs.Job{UserID: owner, FileID: fileID})))

		file, err := files.FileByID(ctx, fileID)
		require.NoError(t, err)
		for _, suffix := range []string{"_500", "_250", "_100"} {
			assert.True(t, blobs.Exists(ctx, file.LocalPath+suffix), "variant %s missing", suffix)
		}
	})

	t.Run("variant has requested width", func(t *testing.T) {
		files, blobs, owner, fileID := setup(t)
		handler := thumbs.NewHandler(files, blobs, nil)
		require.NoError(t, handler.Handle(ctx, payload(t, thumbs.Job{UserID: owner, FileID: fileID})))

		file, err := files.FileByID(ctx, fileID)
		require.NoError(t, err)

		r, err := blobs.Open(ctx, file.LocalPath+"_250")
		require.NoError(t, err)
		defer func() { _ = r.Close() }()

		cfg, _, err := image.DecodeConfig(r)
		require.NoError(t, err)
		assert.Equal(t, 250, cfg.Width)
	})

	t.Run("missing fileId", func(t *testing.T) {
		files, blobs, owner, _ := setup(t)
		handler := thumbs.NewHandler(files, blobs, nil)
		assert.Error(t, handler.Handle(ctx, payload(t, thumbs.Job{UserID: owner})))
	})

	t.Run("missing userId", func(t *testing.T) {
		files, blobs, _, fileID := setup(t)
		handler := thumbs.NewHandler(files, blobs, nil)
		assert.Error(t, handler.Handle(ctx, payload(t, thumbs.Job{FileID: fileID})))
	})

	t.Run("file owned by someone else", func(t *testing.T) {
		files, blobs, _, fileID := setup(t)
		stranger := files.AddUser("bob@example.com", "digest")
		handler := thumbs.NewHandler(files, blobs, nil)
		assert.Error(t, handler.Handle(ctx, payload(t, thumbs.Job{UserID: stranger, FileID: fileID})))
	})

	t.Run("non-image file", func(t *testing.T) {
		files, blobs, owner, _ := setup(t)
		path, err := blobs.Write(ctx, []byte("plain text"))
		require.NoError(t, err)
		docID, err := files.InsertFile(ctx, &metadata.File{
			UserID:    owner,
			Name:      "doc.txt",
			Type:      metadata.TypeFile,
			ParentID:  metadata.RootID,
			LocalPath: path,
		})
		require.NoError(t, err)

		handler := thumbs.NewHandler(files, blobs, nil)
		assert.Error(t, handler.Handle(ctx, payload(t, thumbs.Job{UserID: owner, FileID: docID})))
	})
}
