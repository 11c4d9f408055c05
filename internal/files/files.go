// Package files implements the storage core: creating file and folder
// entities, enforcing hierarchy and ownership, resolving visibility and
// serving content.
package files

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"slices"
	"time"

	"github.com/stashd/stashd/internal/blob"
	"github.com/stashd/stashd/internal/metadata"
	"github.com/stashd/stashd/internal/thumbs"
)

// PageSize is the fixed number of entities per listing page.
const PageSize = 20

// Service is the file storage core. All operations are safe for
// concurrent callers; no lock is held across store or disk I/O. The
// parent-folder check in Create is not transactional with the insert —
// a concurrent mutation of the parent between check and use is an
// accepted best-effort race.
type Service struct {
	meta     metadata.Store
	blobs    *blob.Store
	producer thumbs.Producer
	log      *slog.Logger
}

// NewService creates the file service. producer may be nil, in which
// case image uploads skip thumbnail enqueueing.
func NewService(meta metadata.Store, blobs *blob.Store, producer thumbs.Producer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{meta: meta, blobs: blobs, producer: producer, log: log}
}

// CreateInput carries the client-supplied fields of a new entity.
// Data is the base64-encoded content, required for non-folder types.
type CreateInput struct {
	Name     string
	Type     metadata.FileType
	ParentID string
	IsPublic bool
	Data     string
}

// Create validates and persists a new entity. For non-folder types the
// blob is written before the metadata insert, so a record never
// references a missing blob. Image uploads enqueue a thumbnail job;
// the enqueue result never gates the response.
func (s *Service) Create(ctx context.Context, user *metadata.User, in CreateInput) (*metadata.File, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	if !in.Type.Valid() {
		return nil, ErrMissingType
	}
	if in.Type != metadata.TypeFolder && in.Data == "" {
		return nil, ErrMissingData
	}

	parentID := in.ParentID
	if parentID == "" {
		parentID = metadata.RootID
	}
	if parentID != metadata.RootID {
		parent, err := s.meta.FileByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.Type != metadata.TypeFolder {
			return nil, ErrParentNotFolder
		}
	}

	file := &metadata.File{
		UserID:    user.ID,
		Name:      in.Name,
		Type:      in.Type,
		IsPublic:  in.IsPublic,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}

	if in.Type != metadata.TypeFolder {
		data, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, errors.Join(ErrMissingData, err)
		}

		path, err := s.blobs.Write(ctx, data)
		if err != nil {
			return nil, err
		}
		file.LocalPath = path
	}

	id, err := s.meta.InsertFile(ctx, file)
	if err != nil {
		// The blob, if any, is now an orphan; acceptable and cleanable.
		return nil, err
	}
	file.ID = id

	if in.Type == metadata.TypeImage && s.producer != nil {
		if err := s.producer.Enqueue(ctx, thumbs.Job{UserID: user.ID, FileID: id}); err != nil {
			s.log.ErrorContext(ctx, "failed to enqueue thumbnail job",
				slog.String("file_id", id),
				slog.String("error", err.Error()))
		}
	}

	return file, nil
}

// Get fetches an entity. It is visible when public or when the viewer
// owns it; otherwise the entity is reported as not found, whether or
// not it exists.
func (s *Service) Get(ctx context.Context, viewer *metadata.User, id string) (*metadata.File, error) {
	file, err := s.meta.FileByID(ctx, id)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !visible(viewer, file) {
		return nil, ErrNotFound
	}
	return file, nil
}

// List returns page (0-based) of the user's entities under parentID, at
// most PageSize per page. Out-of-range pages yield an empty slice.
// Ordering is insertion order and is not stable under concurrent inserts.
func (s *Service) List(ctx context.Context, user *metadata.User, parentID string, page int) ([]metadata.File, error) {
	if parentID == "" {
		parentID = metadata.RootID
	}
	if page < 0 {
		page = 0
	}
	return s.meta.FilesByParent(ctx, user.ID, parentID, int64(page)*PageSize, PageSize)
}

// SetPublic flips the visibility flag of an entity the user owns. No
// other state is mutated.
func (s *Service) SetPublic(ctx context.Context, user *metadata.User, id string, public bool) (*metadata.File, error) {
	file, err := s.meta.SetFilePublic(ctx, id, user.ID, public)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

var thumbnailSizes = []string{"500", "250", "100"}

// Content streams an entity's bytes with a MIME type derived from its
// name. For images, size selects a thumbnail variant (500, 250 or 100).
// Missing blobs and denied visibility are both reported as not found.
func (s *Service) Content(ctx context.Context, viewer *metadata.User, id, size string) (io.ReadCloser, string, error) {
	file, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, "", err
	}
	if file.Type == metadata.TypeFolder {
		return nil, "", ErrNotAFile
	}

	if size != "" && !slices.Contains(thumbnailSizes, size) {
		return nil, "", ErrInvalidSize
	}

	path := file.LocalPath
	if size != "" && file.Type == metadata.TypeImage {
		path += "_" + size
	}

	r, err := s.blobs.Open(ctx, path)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(file.Name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return r, mimeType, nil
}

// Counts reports the number of users and files for the stats endpoint.
func (s *Service) Counts(ctx context.Context) (users, files int64, err error) {
	users, err = s.meta.CountUsers(ctx)
	if err != nil {
		return 0, 0, err
	}
	files, err = s.meta.CountFiles(ctx)
	if err != nil {
		return 0, 0, err
	}
	return users, files, nil
}

func visible(viewer *metadata.User, file *metadata.File) bool {
	if file.IsPublic {
		return true
	}
	return viewer != nil && viewer.ID == file.UserID
}
