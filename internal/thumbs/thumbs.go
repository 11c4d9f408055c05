// Package thumbs derives resized image variants after upload. Jobs are
// consumed off a queue independently of the request path; a failed job
// is logged and dropped, and the affected image simply lacks variants.
package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/stashd/stashd/internal/blob"
	"github.com/stashd/stashd/internal/metadata"
	"github.com/stashd/stashd/pkg/queue"
)

// QueueName is the queue thumbnail jobs travel on.
const QueueName = "thumbnails"

// Widths is the fixed set of generated variants. Each is written next
// to the original blob as "<blob>_<width>".
var Widths = []int{500, 250, 100}

// Job identifies the image to process. It is transient and not
// persisted beyond the queue.
type Job struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// Producer enqueues thumbnail jobs. Satisfied by *queue.Enqueuer;
// tests substitute a recorder.
type Producer interface {
	Enqueue(ctx context.Context, payload any) error
}

// NewHandler returns the queue handler that generates thumbnail
// variants for uploaded images.
func NewHandler(files metadata.Store, blobs *blob.Store, log *slog.Logger) queue.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &generator{files: files, blobs: blobs, log: log}
	return queue.NewTaskHandler(g.handle)
}

type generator struct {
	files metadata.Store
	blobs *blob.Store
	log   *slog.Logger
}

func (g *generator) handle(ctx context.Context, job Job) error {
	if job.FileID == "" {
		return errors.New("thumbs: missing fileId")
	}
	if job.UserID == "" {
		return errors.New("thumbs: missing userId")
	}

	file, err := g.files.FileByIDOwned(ctx, job.FileID, job.UserID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return fmt.Errorf("thumbs: file %s not found", job.FileID)
		}
		return err
	}
	if file.Type != metadata.TypeImage {
		return fmt.Errorf("thumbs: file %s is not an image", job.FileID)
	}

	r, err := g.blobs.Open(ctx, file.LocalPath)
	if err != nil {
		return fmt.Errorf("thumbs: failed to open original blob: %w", err)
	}
	defer func() { _ = r.Close() }()

	img, err := imaging.Decode(r)
	if err != nil {
		return fmt.Errorf("thumbs: failed to decode image: %w", err)
	}

	format, err := imaging.FormatFromExtension(filepath.Ext(file.Name))
	if err != nil {
		format = imaging.PNG
	}

	for _, width := range Widths {
		resized := imaging.Resize(img, width, 0, imaging.Lanczos)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, format); err != nil {
			g.log.ErrorContext(ctx, "failed to encode thumbnail",
				slog.String("file_id", file.ID),
				slog.Int("width", width),
				slog.String("error", err.Error()))
			continue
		}

		if _, err := g.blobs.WriteVariant(ctx, file.LocalPath, strconv.Itoa(width), buf.Bytes()); err != nil {
			g.log.ErrorContext(ctx, "failed to write thumbnail",
				slog.String("file_id", file.ID),
				slog.Int("width", width),
				slog.String("error", err.Error()))
			continue
		}
	}

	g.log.InfoContext(ctx, "thumbnails generated", slog.String("file_id", file.ID))
	return nil
}
