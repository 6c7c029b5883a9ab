package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/notehub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/app/system/httpjson"
	"github.com/dalemusser/notehub/internal/app/system/timeouts"
	"github.com/dalemusser/notehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateTTL bounds how long an initiated OAuth flow stays redeemable.
const stateTTL = 10 * time.Minute

// Handler handles Google federated sign-in: the consent redirect, the
// callback, and linking the asserted identity to exactly one user record.
type Handler struct {
	Users      *userstore.Store
	StateStore *oauthstate.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://notehub.example.com/auth/signin/callback"
}

// NewHandler creates a new Google sign-in handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        userstore.New(db),
		StateStore:   oauthstate.New(db),
		SessionMgr:   sessionMgr,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/signin/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/signin                                                             |
| Initiates the federated flow by redirecting to Google's consent screen.      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRedirect(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		httpjson.Write(w, http.StatusServiceUnavailable, map[string]string{
			"error": "google sign-in is not configured",
		})
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(stateTTL)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/signin/callback                                                    |
| Exchanges the code, fetches the Google profile, links or provisions the      |
| user record, and issues a session.                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		httpjson.Unauthorized(w, "google sign-in was denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		httpjson.Unauthorized(w, "invalid sign-in state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		httpjson.Internal(w)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		httpjson.Unauthorized(w, "invalid sign-in state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		httpjson.Unauthorized(w, "invalid sign-in code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		httpjson.Unauthorized(w, "google sign-in failed")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		httpjson.Unauthorized(w, "google sign-in failed")
		return
	}
	if googleUser.Email == "" {
		h.Log.Warn("Google profile missing email", zap.String("google_id", googleUser.ID))
		httpjson.Unauthorized(w, "google sign-in failed")
		return
	}

	// Email-first link-or-provision: an existing password account with this
	// email is linked, never duplicated.
	upsertCtx, cancelUpsert := context.WithTimeout(ctx, timeouts.Short())
	defer cancelUpsert()

	u, err := h.Users.UpsertFederated(upsertCtx, googleUser.Email, googleUser.Name, models.AuthGoogle)
	if err != nil {
		h.Log.Error("federated upsert failed", zap.Error(err), zap.String("google_id", googleUser.ID))
		httpjson.Internal(w)
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
		zap.String("method", models.AuthGoogle))

	dest := safeReturn(returnURL)
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Google profile lookup                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState produces a cryptographically secure one-time state token.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// safeReturn only honors same-site relative return paths.
func safeReturn(returnURL string) string {
	if returnURL == "" || returnURL[0] != '/' || (len(returnURL) > 1 && returnURL[1] == '/') {
		return "/notes"
	}
	return returnURL
}
