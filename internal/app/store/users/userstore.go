package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notehub/internal/app/system/normalize"
	"github.com/dalemusser/notehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicateEmail is returned when attempting to create a user with an
// email that already exists. It is raised off the unique index, not the
// pre-check, so a second concurrent insert of the same email still fails.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields and stamping timestamps.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertFederated resolves a federated sign-in to exactly one user record.
// It looks up by email first: an existing account (password or federated) is
// linked by adding the provider to auth_methods — never duplicated. Only when
// no account matches is a federated-only user provisioned.
func (s *Store) UpsertFederated(ctx context.Context, email, name, provider string) (models.User, error) {
	existing, err := s.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.linkAuthMethod(ctx, existing, provider)
	case errors.Is(err, mongo.ErrNoDocuments):
		// fall through to provision
	default:
		return models.User{}, err
	}

	created, err := s.Create(ctx, models.User{
		Name:        name,
		Email:       email,
		AuthMethods: []string{provider},
	})
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with a concurrent first sign-in for the same email;
		// the winner's record is the canonical one.
		winner, lookupErr := s.GetByEmail(ctx, email)
		if lookupErr != nil {
			return models.User{}, lookupErr
		}
		return s.linkAuthMethod(ctx, winner, provider)
	}
	return created, err
}

func (s *Store) linkAuthMethod(ctx context.Context, u *models.User, provider string) (models.User, error) {
	for _, m := range u.AuthMethods {
		if m == provider {
			return *u, nil
		}
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{
			"$addToSet": bson.M{"auth_methods": provider},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.User{}, err
	}
	u.AuthMethods = append(u.AuthMethods, provider)
	return *u, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Password helpers                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

const bcryptCost = 12

// dummyHash is a bcrypt hash of an unguessable placeholder. When no user
// matches an email, the sign-in path still runs one bcrypt comparison against
// this hash so "no such email" and "wrong password" cost the same time.
var dummyHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("notehub-no-such-user"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// HashPassword hashes a password using bcrypt with a cost of 12.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty hash
// (federated-only account, or no account at all) is compared against a fixed
// dummy hash and always fails, without a timing shortcut.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
