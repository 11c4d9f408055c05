// Package blob stores file contents as opaque-named files on local
// disk. Blobs live directly under a configured root; thumbnail variants
// are co-located as "<blob>_<width>".
//
// The store is not transactional with the metadata store. Callers write
// the blob before inserting metadata so a record never references a
// missing blob; an orphaned blob is acceptable and separately cleanable.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidConfig is returned when the storage root is empty.
	ErrInvalidConfig = errors.New("blob: storage root must not be empty")
	// ErrInvalidPath is returned for paths outside the storage root.
	ErrInvalidPath = errors.New("blob: path escapes storage root")
	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("blob: not found")
	// ErrWriteFailed wraps disk failures during blob writes.
	ErrWriteFailed = errors.New("blob: write failed")
)

// Config is the environment-sourced blob storage configuration. The
// default root matches the original deployment layout.
type Config struct {
	Root string `env:"FOLDER_PATH" envDefault:"/tmp/files_manager"`
}

// Store persists opaque byte blobs under a single root directory.
// All paths handed out and accepted are absolute and confined to the
// root; anything else is rejected.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at cfg.Root. The directory is
// created lazily on first write, matching the original behavior where a
// fresh deployment has no storage directory until the first upload.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, ErrInvalidConfig
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("blob: failed to resolve storage root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string {
	return s.root
}

// Write stores data under a freshly generated opaque name and returns
// the absolute path. Partial files are removed on failure.
func (s *Store) Write(ctx context.Context, data []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", errors.Join(ErrWriteFailed, err)
	}

	path := filepath.Join(s.root, uuid.NewString())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return "", errors.Join(ErrWriteFailed, err)
	}
	return path, nil
}

// WriteVariant stores data next to an existing blob under the
// "<blob>_<suffix>" naming convention and returns the variant path.
func (s *Store) WriteVariant(ctx context.Context, blobPath, suffix string, data []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	path := blobPath + "_" + suffix
	if err := s.check(path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return "", errors.Join(ErrWriteFailed, err)
	}
	return path, nil
}

// Open returns a reader over the blob at path, or ErrNotFound.
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := s.check(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blob: failed to open %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Exists reports whether a blob exists at path.
func (s *Store) Exists(ctx context.Context, path string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	if err := s.check(path); err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// check rejects paths that resolve outside the storage root.
func (s *Store) check(path string) error {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("blob: failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return ErrInvalidPath
	}
	return nil
}
