package notestore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	notestore "github.com/dalemusser/notehub/internal/app/store/notes"
	"github.com/dalemusser/notehub/internal/domain/models"
	"github.com/dalemusser/notehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// insertNoteAt writes a note with an explicit updated_at so ordering tests
// don't depend on insert timing.
func insertNoteAt(t *testing.T, ctx context.Context, db *mongo.Database, ownerID primitive.ObjectID, title string, updatedAt time.Time) models.Note {
	t.Helper()
	n := models.Note{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   "content of " + title,
		CreatedAt: updatedAt.Add(-time.Hour),
		UpdatedAt: updatedAt,
	}
	if _, err := db.Collection("notes").InsertOne(ctx, n); err != nil {
		t.Fatalf("failed to insert note: %v", err)
	}
	return n
}

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, owner, "Groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID.IsZero() {
		t.Error("expected a generated id")
	}
	if created.OwnerID != owner {
		t.Errorf("owner = %s, want %s", created.OwnerID.Hex(), owner.Hex())
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected created_at == updated_at on a new note, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := store.Get(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Groceries" || got.Content != "milk, eggs" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestList_OrdersByUpdatedAtDesc(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)
	oldest := insertNoteAt(t, ctx, db, owner, "oldest", base.Add(-2*time.Minute))
	middle := insertNoteAt(t, ctx, db, owner, "middle", base.Add(-1*time.Minute))
	newest := insertNoteAt(t, ctx, db, owner, "newest", base)

	notes, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	wantOrder := []primitive.ObjectID{newest.ID, middle.ID, oldest.ID}
	for i, want := range wantOrder {
		if notes[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, notes[i].Title, wantOrder)
		}
	}

	// Listing is a pure read: a second call returns the same result.
	again, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("second List failed: %v", err)
	}
	if len(again) != len(notes) {
		t.Errorf("second List returned %d notes, want %d", len(again), len(notes))
	}
	for i := range notes {
		if again[i].ID != notes[i].ID || !again[i].UpdatedAt.Equal(notes[i].UpdatedAt) {
			t.Errorf("second List diverged at position %d", i)
		}
	}
}

func TestList_EmptyForNewOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	notes, err := store.List(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if notes == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes, got %d", len(notes))
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := primitive.NewObjectID()
	theirs := primitive.NewObjectID()
	now := time.Now().UTC()
	insertNoteAt(t, ctx, db, mine, "mine", now)
	insertNoteAt(t, ctx, db, theirs, "theirs", now)

	notes, err := store.List(ctx, mine)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if notes[0].Title != "mine" {
		t.Errorf("listed a foreign note: %q", notes[0].Title)
	}
}

func TestGet_WrongOwner_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	note, err := store.Create(ctx, owner, "private", "secret")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = store.Get(ctx, primitive.NewObjectID(), note.ID)
	if !errors.Is(err, notestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign note, got %v", err)
	}
}

func TestGet_Missing_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Get(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, notestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_ReplacesFieldsAndAdvancesUpdatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, owner, "draft", "v1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := store.Update(ctx, owner, created.ID, "final", "v2")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "final" || updated.Content != "v2" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.ID != created.ID || updated.OwnerID != owner {
		t.Error("update must preserve id and owner")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdate_WrongOwner_NotFoundAndUnchanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, owner, "private", "secret")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = store.Update(ctx, primitive.NewObjectID(), created.ID, "hijacked", "gone")
	if !errors.Is(err, notestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign update, got %v", err)
	}

	got, err := store.Get(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "private" || got.Content != "secret" {
		t.Errorf("foreign update mutated the note: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, owner, "temp", "to delete")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, owner, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = store.Get(ctx, owner, created.ID)
	if !errors.Is(err, notestore.ErrNotFound) {
		t.Errorf("expected the note to be gone, got %v", err)
	}

	// Deleting again reports not found, same as a note that never existed.
	if err := store.Delete(ctx, owner, created.ID); !errors.Is(err, notestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestDelete_WrongOwner_NotFoundAndIntact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, owner, "keep", "mine")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, primitive.NewObjectID(), created.ID); !errors.Is(err, notestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign delete, got %v", err)
	}

	count, err := db.Collection("notes").CountDocuments(ctx, bson.M{"_id": created.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Error("foreign delete removed the note")
	}
}
