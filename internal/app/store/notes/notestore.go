package notestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound covers a note that does not exist and a note owned by someone
// else. Every operation filters on both _id and owner_id in a single storage
// call, so the two cases are structurally indistinguishable — nothing leaks
// whether a foreign note exists, and there is no check-then-act window.
var ErrNotFound = errors.New("note not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notes")}
}

// List returns all of the owner's notes sorted by updated_at descending.
// Returns an empty slice when the owner has no notes.
func (s *Store) List(ctx context.Context, ownerID primitive.ObjectID) ([]models.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notes := []models.Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Create inserts a new note for the owner, assigning its id and stamping
// created_at == updated_at.
func (s *Store) Create(ctx context.Context, ownerID primitive.ObjectID, title, content string) (models.Note, error) {
	now := time.Now().UTC()
	n := models.Note{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

// Get loads one note by id, scoped to the owner.
func (s *Store) Get(ctx context.Context, ownerID, id primitive.ObjectID) (*models.Note, error) {
	var n models.Note
	err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update sets title, content, and updated_at on the owner's note in one
// atomic match-and-act call, returning the post-update document.
// Last-write-wins; there is no conflict detection.
func (s *Store) Update(ctx context.Context, ownerID, id primitive.ObjectID, title, content string) (*models.Note, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Note
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{
			"title":      title,
			"content":    content,
			"updated_at": time.Now().UTC(),
		}},
		opts,
	).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Delete removes the owner's note in one atomic match-and-act call.
// Hard delete; there is no tombstone.
func (s *Store) Delete(ctx context.Context, ownerID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
