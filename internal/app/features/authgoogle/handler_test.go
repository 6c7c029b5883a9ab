package authgoogle

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/notehub/internal/app/store/oauthstate"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func newTestHandler(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()
	return NewHandler(db, newSessionManager(t), "client-id", "client-secret", "http://localhost:3000", zap.NewNop())
}

func TestServeRedirect_NotConfigured(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	req := httptest.NewRequest("GET", "/auth/signin", nil)
	rec := httptest.NewRecorder()
	h.ServeRedirect(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServeRedirect_SendsToGoogleAndPersistsState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := httptest.NewRequest("GET", "/auth/signin?return=/notes", nil)
	rec := httptest.NewRecorder()
	h.ServeRedirect(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("redirect location = %q, expected Google's consent endpoint", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Fatalf("redirect location %q carries no state parameter", loc)
	}

	// The state in the redirect must be redeemable exactly once.
	u, err := rec.Result().Location()
	if err != nil {
		t.Fatalf("failed to parse redirect location: %v", err)
	}
	state := u.Query().Get("state")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	returnURL, valid, err := oauthstate.New(db).Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("expected the issued state to validate")
	}
	if returnURL != "/notes" {
		t.Errorf("returnURL = %q, want %q", returnURL, "/notes")
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	req := httptest.NewRequest("GET", "/auth/signin/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	req := httptest.NewRequest("GET", "/auth/signin/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := httptest.NewRequest("GET", "/auth/signin/callback?state=never-issued&code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d for an unissued state", rec.Code, http.StatusUnauthorized)
	}
}

func TestGenerateState_Unique(t *testing.T) {
	a, err := generateState()
	if err != nil {
		t.Fatalf("generateState failed: %v", err)
	}
	b, err := generateState()
	if err != nil {
		t.Fatalf("generateState failed: %v", err)
	}
	if a == b {
		t.Error("expected distinct state tokens")
	}
	if len(a) < 32 {
		t.Errorf("state token %q too short", a)
	}
}

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/notes"},
		{"/notes?tag=work", "/notes?tag=work"},
		{"/settings", "/settings"},
		{"https://evil.example.com", "/notes"},
		{"//evil.example.com", "/notes"},
		{"notes", "/notes"},
	}

	for _, tc := range tests {
		if got := safeReturn(tc.in); got != tc.want {
			t.Errorf("safeReturn(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
