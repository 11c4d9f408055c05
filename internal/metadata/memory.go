package metadata

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore implements Store in memory. It preserves insertion order
// for listings and generates hex object ids, matching the production
// store's observable behavior. Intended for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
	files []File
	byID  map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]User),
		byID:  make(map[string]int),
	}
}

// AddUser seeds a user record and returns its generated id.
func (s *MemoryStore) AddUser(email, hashedPassword string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := bson.NewObjectID().Hex()
	s.users[id] = User{ID: id, Email: email, HashedPassword: hashedPassword}
	return id
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) CountFiles(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.files)), nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UserByCredentials(ctx context.Context, email, hashedPassword string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email && u.HashedPassword == hashedPassword {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FileByID(ctx context.Context, id string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	f := s.files[idx]
	return &f, nil
}

func (s *MemoryStore) FileByIDOwned(ctx context.Context, id, userID string) (*File, error) {
	f, err := s.FileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != userID {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *MemoryStore) FilesByParent(ctx context.Context, userID, parentID string, skip, limit int64) ([]File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]File, 0, limit)
	var seen int64
	for _, f := range s.files {
		if f.UserID != userID || f.ParentID != parentID {
			continue
		}
		if seen < skip {
			seen++
			continue
		}
		if limit > 0 && int64(len(matched)) >= limit {
			break
		}
		matched = append(matched, f)
	}
	return matched, nil
}

func (s *MemoryStore) InsertFile(ctx context.Context, f *File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := *f
	record.ID = bson.NewObjectID().Hex()
	s.byID[record.ID] = len(s.files)
	s.files = append(s.files, record)
	return record.ID, nil
}

func (s *MemoryStore) SetFilePublic(ctx context.Context, id, userID string, public bool) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok || s.files[idx].UserID != userID {
		return nil, ErrNotFound
	}
	s.files[idx].IsPublic = public
	f := s.files[idx]
	return &f, nil
}

func (s *MemoryStore) Healthcheck(ctx context.Context) error {
	return nil
}
