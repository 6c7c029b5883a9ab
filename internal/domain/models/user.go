package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth method values stored in User.AuthMethods.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// User is one account record: credentials plus profile.
//
// NOTE:
//   - Email is stored normalized (trimmed, lowercased) and carries a unique
//     index, so uniqueness is enforced by the storage layer.
//   - PasswordHash is empty for federated-only accounts.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethods  []string           `bson:"auth_methods,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the profile name, or "User" when none was provided.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return "User"
	}
	return u.Name
}
