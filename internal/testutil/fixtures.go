package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/notehub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// UniqueEmail returns an email address no other fixture in this run uses.
func UniqueEmail() string {
	return fmt.Sprintf("user-%s@test.com", uuid.NewString()[:8])
}

// CreateUser creates a password-based test user.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AuthMethods:  []string{models.AuthPassword},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateNote creates a test note owned by the given user.
func (f *Fixtures) CreateNote(ctx context.Context, ownerID primitive.ObjectID, title, content string) models.Note {
	f.t.Helper()

	now := time.Now().UTC()
	note := models.Note{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("notes").InsertOne(ctx, note)
	if err != nil {
		f.t.Fatalf("failed to create test note: %v", err)
	}

	return note
}
