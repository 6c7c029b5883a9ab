package signin_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	signinfeature "github.com/dalemusser/notehub/internal/app/features/signin"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/notehub/internal/app/system/httpjson"
	"github.com/dalemusser/notehub/internal/domain/models"
	"github.com/dalemusser/notehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const genericRejection = "invalid email or password"

type signinBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type errBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

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

func newHandler(t *testing.T, db *mongo.Database) *signinfeature.Handler {
	t.Helper()
	return signinfeature.NewHandler(db, newSessionManager(t), zap.NewNop())
}

func signinRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	return testutil.NewJSONRequest(t, "POST", "/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
}

// rejectionOf runs a sign-in attempt and returns the 401 body, failing the
// test on any other status.
func rejectionOf(t *testing.T, h *signinfeature.Handler, req *http.Request) errBody {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleSignin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusUnauthorized, rec.Body.String())
	}
	var body errBody
	testutil.DecodeJSON(t, rec, &body)
	return body
}

func TestHandleSignin_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	f := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := userstore.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := f.CreateUser(ctx, "Ada", testutil.UniqueEmail(), hash)

	rec := httptest.NewRecorder()
	h.HandleSignin(rec, signinRequest(t, user.Email, "correct horse battery"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body signinBody
	testutil.DecodeJSON(t, rec, &body)
	if body.ID != user.ID.Hex() || body.Email != user.Email || body.Name != "Ada" {
		t.Errorf("response = %+v, want the signed-in identity", body)
	}

	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie on successful sign-in")
	}
}

func TestHandleSignin_CaseInsensitiveEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	f := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := userstore.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	f.CreateUser(ctx, "Ada", "ada@example.com", hash)

	rec := httptest.NewRecorder()
	h.HandleSignin(rec, signinRequest(t, "ADA@Example.COM", "correct horse battery"))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for a differently-cased email", rec.Code, http.StatusOK)
	}
}

func TestHandleSignin_RejectionsAreIndistinguishable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	f := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := userstore.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := f.CreateUser(ctx, "Ada", testutil.UniqueEmail(), hash)

	// Wrong password, unknown email, and missing fields must all produce
	// the exact same body, so callers cannot probe which emails exist.
	wrongPassword := rejectionOf(t, h, signinRequest(t, user.Email, "wrong"))
	unknownEmail := rejectionOf(t, h, signinRequest(t, testutil.UniqueEmail(), "correct horse battery"))
	missingFields := rejectionOf(t, h, signinRequest(t, "", ""))

	for _, body := range []errBody{wrongPassword, unknownEmail, missingFields} {
		if body.Error != genericRejection {
			t.Errorf("error = %q, want %q", body.Error, genericRejection)
		}
		if body.Code != httpjson.CodeUnauthorized {
			t.Errorf("code = %q, want %q", body.Code, httpjson.CodeUnauthorized)
		}
	}
}

func TestHandleSignin_FederatedOnlyAccount_RejectsPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	store := userstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := testutil.UniqueEmail()
	if _, err := store.UpsertFederated(ctx, email, "Grace", models.AuthGoogle); err != nil {
		t.Fatalf("UpsertFederated failed: %v", err)
	}

	// Federated-only accounts have no password hash; any password attempt
	// gets the same generic rejection.
	body := rejectionOf(t, h, signinRequest(t, email, "any password at all"))
	if body.Error != genericRejection {
		t.Errorf("error = %q, want %q", body.Error, genericRejection)
	}
}

func TestHandleSignin_MalformedBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := httptest.NewRequest("POST", "/auth/signin", nil)
	body := rejectionOf(t, h, req)
	if body.Error != genericRejection {
		t.Errorf("error = %q, want %q", body.Error, genericRejection)
	}
}
