package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection = "users"
	filesCollection = "files"
)

// MongoStore implements Store on top of a MongoDB database.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a Store backed by the given database handle.
func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	if db == nil {
		return nil, errors.New("metadata: nil database handle")
	}
	return &MongoStore{db: db}, nil
}

type userDoc struct {
	ID       bson.ObjectID `bson:"_id"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
}

func (d userDoc) toUser() *User {
	return &User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		HashedPassword: d.Password,
	}
}

type fileDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	UserID    string        `bson:"userId"`
	Name      string        `bson:"name"`
	Type      string        `bson:"type"`
	IsPublic  bool          `bson:"isPublic"`
	ParentID  string        `bson:"parentId"`
	LocalPath string        `bson:"localPath,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d fileDoc) toFile() *File {
	return &File{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Name:      d.Name,
		Type:      FileType(d.Type),
		IsPublic:  d.IsPublic,
		ParentID:  d.ParentID,
		LocalPath: d.LocalPath,
		CreatedAt: d.CreatedAt,
	}
}

func (s *MongoStore) users() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

func (s *MongoStore) files() *mongo.Collection {
	return s.db.Collection(filesCollection)
}

// CountUsers reports the number of user records.
func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("metadata: failed to count users: %w", err)
	}
	return n, nil
}

// CountFiles reports the number of file records.
func (s *MongoStore) CountFiles(ctx context.Context) (int64, error) {
	n, err := s.files().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("metadata: failed to count files: %w", err)
	}
	return n, nil
}

// UserByID fetches a user by hex id. Malformed ids behave as absent.
func (s *MongoStore) UserByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc userDoc
	if err := s.users().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: failed to find user: %w", err)
	}
	return doc.toUser(), nil
}

// UserByCredentials fetches the user matching an email and password
// digest. No-match is indistinguishable from a wrong password.
func (s *MongoStore) UserByCredentials(ctx context.Context, email, hashedPassword string) (*User, error) {
	var doc userDoc
	filter := bson.M{"email": email, "password": hashedPassword}
	if err := s.users().FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: failed to find user by credentials: %w", err)
	}
	return doc.toUser(), nil
}

// FileByID fetches a file by hex id. Malformed ids behave as absent.
func (s *MongoStore) FileByID(ctx context.Context, id string) (*File, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc fileDoc
	if err := s.files().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: failed to find file: %w", err)
	}
	return doc.toFile(), nil
}

// FileByIDOwned fetches a file scoped to its owner.
func (s *MongoStore) FileByIDOwned(ctx context.Context, id, userID string) (*File, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc fileDoc
	filter := bson.M{"_id": oid, "userId": userID}
	if err := s.files().FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: failed to find owned file: %w", err)
	}
	return doc.toFile(), nil
}

// FilesByParent lists an owner's files under a parent in natural
// (insertion) order.
func (s *MongoStore) FilesByParent(ctx context.Context, userID, parentID string, skip, limit int64) ([]File, error) {
	filter := bson.M{"userId": userID, "parentId": parentID}
	opts := options.Find().SetSkip(skip).SetLimit(limit)

	cursor, err := s.files().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to list files: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	files := make([]File, 0, limit)
	for cursor.Next(ctx) {
		var doc fileDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("metadata: failed to decode file: %w", err)
		}
		files = append(files, *doc.toFile())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("metadata: cursor error: %w", err)
	}
	return files, nil
}

// InsertFile inserts a record with a freshly generated id and returns
// the id. The insert is atomic.
func (s *MongoStore) InsertFile(ctx context.Context, f *File) (string, error) {
	if f == nil {
		return "", errors.New("metadata: nil file")
	}

	doc := fileDoc{
		ID:        bson.NewObjectID(),
		UserID:    f.UserID,
		Name:      f.Name,
		Type:      string(f.Type),
		IsPublic:  f.IsPublic,
		ParentID:  f.ParentID,
		LocalPath: f.LocalPath,
		CreatedAt: f.CreatedAt,
	}
	if _, err := s.files().InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("metadata: failed to insert file: %w", err)
	}
	return doc.ID.Hex(), nil
}

// SetFilePublic flips the isPublic flag of an owner's file and returns
// the updated record. Absent or foreign files yield ErrNotFound.
func (s *MongoStore) SetFilePublic(ctx context.Context, id, userID string, public bool) (*File, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{"_id": oid, "userId": userID}
	update := bson.M{"$set": bson.M{"isPublic": public}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc fileDoc
	if err := s.files().FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: failed to update file visibility: %w", err)
	}
	return doc.toFile(), nil
}

// Healthcheck pings the server. Callers bound it with a short deadline
// so liveness probes never hang on store timeouts.
func (s *MongoStore) Healthcheck(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("metadata: healthcheck failed: %w", err)
	}
	return nil
}
