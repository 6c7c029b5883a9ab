package notes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	notestore "github.com/dalemusser/notehub/internal/app/store/notes"
	"github.com/dalemusser/notehub/internal/app/system/authz"
	"github.com/dalemusser/notehub/internal/app/system/httpjson"
	"github.com/dalemusser/notehub/internal/app/system/sanitize"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Notes *notestore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Notes: notestore.New(db),
		Log:   logger,
	}
}

// notePayload is the request body for create and update.
type notePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// validate enforces the non-empty title/content contract and sanitizes both
// fields. Validation runs before any storage call, so a 400 never mutates.
func (p *notePayload) validate() error {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
		return errors.New("title and content are required")
	}
	p.Title = sanitize.Title(p.Title)
	p.Content = sanitize.Content(p.Content)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Notes.List(ctx, ownerID)
	if err != nil {
		h.Log.Error("list notes failed", zap.Error(err), zap.String("owner_id", ownerID.Hex()))
		httpjson.Internal(w)
		return
	}

	httpjson.Write(w, http.StatusOK, list)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notes                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "unauthorized")
		return
	}

	var p notePayload
	if err := httpjson.Decode(w, r, &p); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if err := p.validate(); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.Create(ctx, ownerID, p.Title, p.Content)
	if err != nil {
		h.Log.Error("create note failed", zap.Error(err), zap.String("owner_id", ownerID.Hex()))
		httpjson.Internal(w)
		return
	}

	httpjson.Write(w, http.StatusOK, n)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notes/{id}                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "unauthorized")
		return
	}

	id, err := noteID(r)
	if err != nil {
		httpjson.BadRequest(w, "invalid note id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, notestore.ErrNotFound) {
			httpjson.NotFound(w, "note not found")
			return
		}
		h.Log.Error("get note failed", zap.Error(err), zap.String("note_id", id.Hex()))
		httpjson.Internal(w)
		return
	}

	httpjson.Write(w, http.StatusOK, n)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /notes/{id}                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "unauthorized")
		return
	}

	id, err := noteID(r)
	if err != nil {
		httpjson.BadRequest(w, "invalid note id")
		return
	}

	var p notePayload
	if err := httpjson.Decode(w, r, &p); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if err := p.validate(); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.Update(ctx, ownerID, id, p.Title, p.Content)
	if err != nil {
		if errors.Is(err, notestore.ErrNotFound) {
			httpjson.NotFound(w, "note not found")
			return
		}
		h.Log.Error("update note failed", zap.Error(err), zap.String("note_id", id.Hex()))
		httpjson.Internal(w)
		return
	}

	httpjson.Write(w, http.StatusOK, n)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /notes/{id}                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "unauthorized")
		return
	}

	id, err := noteID(r)
	if err != nil {
		httpjson.BadRequest(w, "invalid note id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notes.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, notestore.ErrNotFound) {
			httpjson.NotFound(w, "note not found")
			return
		}
		h.Log.Error("delete note failed", zap.Error(err), zap.String("note_id", id.Hex()))
		httpjson.Internal(w)
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]bool{"success": true})
}

// noteID parses the {id} URL parameter.
func noteID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}
