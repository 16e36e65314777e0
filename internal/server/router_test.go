package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"finanzas/internal/logger"
	"finanzas/internal/metrics"
	"finanzas/internal/testutil"
	"finanzas/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	m := metrics.New()
	db := testutil.SetupTestDB(t)
	return NewRouter(NewServices(db, m), Options{
		Metrics:     m,
		CORSOrigins: []string{"http://localhost:5173"},
	})
}

func TestNewRouter(t *testing.T) {
	router := setupRouter(t)

	t.Run("health check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("protected route requires token", func(t *testing.T) {
		for _, path := range []string{"/api/v1/accounts", "/api/v1/dashboard/stats", "/api/v1/data/transactions.csv"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s: expected 401, got %d", path, rec.Code)
			}
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/accounts", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("expected allowed origin header, got %q", got)
		}
	})
}
