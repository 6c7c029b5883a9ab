package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/httpjson"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
	"github.com/dalemusser/notehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// minPasswordLen is the minimum accepted password length at signup.
const minPasswordLen = 6

type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users: userstore.New(db),
		Log:   logger,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/signup                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpjson.BadRequest(w, "email and password are required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.BadRequest(w, "password must be at least 6 characters long")
		return
	}

	hash, err := userstore.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// No pre-existence check: the unique email index is the arbiter, so two
	// identical concurrent signups resolve to exactly one success.
	u, err := h.Users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		AuthMethods:  []string{models.AuthPassword},
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Conflict(w, "email already in use")
			return
		}
		h.Log.Error("create user failed", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))

	httpjson.Write(w, http.StatusOK, signupResponse{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	})
}
