package authz

import (
	"net/http"

	"github.com/dalemusser/notehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the requester's Mongo ObjectID, display name, and a found
// flag. If no user is present in context or the subject id is malformed, it
// returns NilObjectID and false. This ensures callers can trust that ok=true
// means a valid, authenticated user with a valid ObjectID — every notes
// operation starts here and passes the id explicitly into the store, never
// reading identity ambiently below the handler.
func UserCtx(r *http.Request) (ownerID primitive.ObjectID, name string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed subject id in session - fail closed for security.
		// This should not happen in normal operation; indicates session corruption.
		return primitive.NilObjectID, "", false
	}
	return oid, user.Name, true
}
