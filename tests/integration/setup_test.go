package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"finanzas/internal/logger"
	"finanzas/internal/metrics"
	"finanzas/internal/server"
	"finanzas/internal/testutil"
	"finanzas/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

// setupApp creates the production router backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	m := metrics.New()
	router := server.NewRouter(server.NewServices(db, m), server.Options{Metrics: m})

	return &testApp{DB: db, Router: router}
}

// request makes a JSON request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	return app.rawRequest(method, path, "application/json", strings.NewReader(body), token)
}

func (app *testApp) rawRequest(method, path, contentType string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustStatus fails the test unless rec carries the expected status.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// object returns result[key] as a JSON object.
func object(t *testing.T, result map[string]any, key string) map[string]any {
	t.Helper()
	obj, ok := result[key].(map[string]any)
	if !ok {
		t.Fatalf("expected object under %q, got %T", key, result[key])
	}
	return obj
}

// errorCode extracts error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := object(t, parseJSON(t, rec), "error")["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := object(t, result, "user")
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// categoryID looks up one of the user's categories by name and type.
func (app *testApp) categoryID(t *testing.T, token, name, categoryType string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/categories?page_size=100&type="+categoryType, "", token)
	mustStatus(t, rec, http.StatusOK)
	data, _ := parseJSON(t, rec)["data"].([]any)
	for _, item := range data {
		c := item.(map[string]any)
		if c["name"] == name {
			return c["id"].(string)
		}
	}
	t.Fatalf("category %s/%s not found", categoryType, name)
	return ""
}

// createAccount creates an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/accounts", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return object(t, parseJSON(t, rec), "account")["id"].(string)
}

// createTransaction creates a transaction and returns its ID.
func (app *testApp) createTransaction(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/transactions", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return object(t, parseJSON(t, rec), "transaction")["id"].(string)
}

// accountBalance fetches an account's current balance in cents.
func (app *testApp) accountBalance(t *testing.T, token, accountID string) int64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	mustStatus(t, rec, http.StatusOK)
	return int64(object(t, parseJSON(t, rec), "account")["balance"].(float64))
}
