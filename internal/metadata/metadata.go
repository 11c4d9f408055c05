// Package metadata persists user and file records. The production
// implementation is backed by MongoDB; an in-memory implementation backs
// tests.
//
// Identifiers cross the package boundary as hex object-id strings. The
// root of the file hierarchy is the sentinel RootID, never a real record.
package metadata

import (
	"context"
	"errors"
	"time"
)

// RootID is the parent identifier of top-level files and folders.
const RootID = "0"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("metadata: not found")

// FileType enumerates the kinds of file entities.
type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// Valid reports whether t is one of the accepted file types.
func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// User is an account record. Registration owns the collection; this
// service only reads it.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
}

// File is a single entity in the hierarchy. LocalPath is the on-disk
// blob location and must never reach clients.
type File struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  string    `json:"parentId"`
	LocalPath string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Store is the persistence contract for users and files.
//
// FilesByParent returns records in insertion order. The order is not
// stable under concurrent inserts; callers needing determinism must add
// an explicit sort key.
type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)

	UserByID(ctx context.Context, id string) (*User, error)
	UserByCredentials(ctx context.Context, email, hashedPassword string) (*User, error)

	FileByID(ctx context.Context, id string) (*File, error)
	FileByIDOwned(ctx context.Context, id, userID string) (*File, error)
	FilesByParent(ctx context.Context, userID, parentID string, skip, limit int64) ([]File, error)
	InsertFile(ctx context.Context, f *File) (string, error)
	SetFilePublic(ctx context.Context, id, userID string, public bool) (*File, error)

	Healthcheck(ctx context.Context) error
}
