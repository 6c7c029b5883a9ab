package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	healthfeature "github.com/dalemusser/notehub/internal/app/features/health"
	"github.com/dalemusser/notehub/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_Healthy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := healthfeature.NewHandler(db.Client(), zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("body = %+v, want status ok and database connected", body)
	}
}
