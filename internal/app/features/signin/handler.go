package signin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/app/system/httpjson"
	"github.com/dalemusser/notehub/internal/app/system/normalize"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
	"github.com/dalemusser/notehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// genericRejection is the one message every failed password sign-in gets.
// A missing field, an unknown email, and a wrong password must be
// indistinguishable in both response shape and timing.
const genericRejection = "invalid email or password"

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/signin                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Unauthorized(w, genericRejection)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpjson.Unauthorized(w, genericRejection)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var u *models.User
	found, err := h.Users.GetByEmail(ctx, normalize.Email(req.Email))
	switch {
	case err == nil:
		u = found
	case errors.Is(err, mongo.ErrNoDocuments):
		// Keep u nil; CheckPassword below still burns a bcrypt comparison
		// so the unknown-email path costs the same as a wrong password.
	default:
		h.Log.Error("find user failed", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !userstore.CheckPassword(hash, req.Password) || u == nil {
		httpjson.Unauthorized(w, genericRejection)
		return
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.DisplayName(),
		Email: u.Email,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", su.ID))
		httpjson.Internal(w)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", su.ID),
		zap.String("method", models.AuthPassword))

	httpjson.Write(w, http.StatusOK, signinResponse{
		ID:    su.ID,
		Name:  su.Name,
		Email: su.Email,
	})
}
