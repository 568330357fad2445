package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesmart/internal/auth"
	"savesmart/internal/config"
	"savesmart/internal/core"
	"savesmart/internal/log"
	"savesmart/internal/storage"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		Port:        "3000",
		JWTSecret:   testSecret,
		TokenTTL:    time.Hour,
		BcryptCost:  4,
		BackendURL:  "http://localhost:3000",
		FrontendURL: "http://localhost:5173",
	}
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(store.Users, tokens, cfg.BcryptCost)
	google := auth.NewGoogleAuthenticator("", "", "")

	return NewServer(cfg, logger, store, authSvc, google, "test")
}

// do issues a request against the server's handler chain and decodes the
// JSON envelope when there is one.
func do(t *testing.T, srv *Server, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	var envelope map[string]any
	if ct := rr.Header().Get("Content-Type"); ct != "" && rr.Body.Len() > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &envelope)
	}
	return rr, envelope
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, srv *Server, username, email string) string {
	t.Helper()
	rr, env := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	data := env["data"].(map[string]any)
	return data["token"].(string)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rr, env := do(t, srv, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "test", env["version"])
	assert.NotEmpty(t, env["timestamp"])
}

func TestRegisterAndProfile(t *testing.T) {
	srv := newTestServer(t)

	rr, env := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	data := env["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")
	token := data["token"].(string)
	require.NotEmpty(t, token)

	rr, env = do(t, srv, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := env["data"].(map[string]any)
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password")
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing fields", map[string]string{"username": "alice"}},
		{"bad email", map[string]string{"username": "alice", "email": "not-an-email", "password": "secret123"}},
		{"short password", map[string]string{"username": "alice", "email": "a@b.co", "password": "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := do(t, srv, http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, false, env["success"])
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "alice@example.com")

	rr, _ := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "other", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLoginGoogleProviderRejected(t *testing.T) {
	srv := newTestServer(t)

	rr, _ := do(t, srv, http.MethodPost, "/api/auth/test-google", "", map[string]string{
		"googleId": "g-1", "email": "alice@example.com", "name": "Alice",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = do(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rr, _ := do(t, srv, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = do(t, srv, http.MethodGet, "/api/users", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Expired token: valid signature, past expiry. Must be a 401, never 500.
	expired, err := auth.NewTokenManager(testSecret, -time.Minute).Generate(1)
	require.NoError(t, err)
	rr, _ = do(t, srv, http.MethodGet, "/api/users", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestExpenseAmountValidation(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	create := func(amount string) *httptest.ResponseRecorder {
		rr, _ := do(t, srv, http.MethodPost, "/api/avoided-expenses", token, map[string]any{
			"name": "coffee", "amount": amount, "expense_date": "2025-06-01",
		})
		return rr
	}

	assert.Equal(t, http.StatusBadRequest, create("0").Code)
	assert.Equal(t, http.StatusBadRequest, create("-1").Code)
	assert.Equal(t, http.StatusCreated, create("0.01").Code)
}

func TestDeficitDateOrder(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rr, _ := do(t, srv, http.MethodPost, "/api/deficits", token, map[string]any{
		"name": "rent", "amount": "100",
		"start_date": "2025-02-01", "end_date": "2025-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, srv, http.MethodPost, "/api/deficits", token, map[string]any{
		"name": "rent", "amount": "100",
		"start_date": "2025-01-01", "end_date": "2025-01-01",
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestListPaginationEnvelope(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	for i := 1; i <= 25; i++ {
		rr, _ := do(t, srv, http.MethodPost, "/api/avoided-expenses", token, map[string]any{
			"name": "expense", "amount": "1",
			"expense_date": core.NewDate(2025, 1, i).String(),
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, env := do(t, srv, http.MethodGet, "/api/avoided-expenses?limit=10&page=2", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	items := env["data"].([]any)
	assert.Len(t, items, 10)

	p := env["pagination"].(map[string]any)
	assert.EqualValues(t, 2, p["page"])
	assert.EqualValues(t, 10, p["limit"])
	assert.EqualValues(t, 25, p["total"])
	assert.EqualValues(t, 3, p["totalPages"])
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rr, env := do(t, srv, http.MethodPost, "/api/categories", token, map[string]string{"name": "groceries"})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := int64(env["data"].(map[string]any)["id"].(float64))

	// Duplicate name conflicts even before any soft delete.
	rr, _ = do(t, srv, http.MethodPost, "/api/categories", token, map[string]string{"name": "groceries"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	path := "/api/categories/" + strconv.FormatInt(id, 10)
	rr, _ = do(t, srv, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Soft-deleted rows stay retrievable by id.
	rr, env = do(t, srv, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, env["data"].(map[string]any)["is_active"])

	rr, env = do(t, srv, http.MethodGet, "/api/categories/active", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, env["data"].([]any))

	rr, env = do(t, srv, http.MethodPost, path+"/activate", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, env["data"].(map[string]any)["is_active"])
}

func TestGetMissingResource(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rr, env := do(t, srv, http.MethodGet, "/api/goals/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, false, env["success"])
}

func TestTestGoogleIssuesWorkingToken(t *testing.T) {
	srv := newTestServer(t)

	rr, env := do(t, srv, http.MethodPost, "/api/auth/test-google", "", map[string]string{
		"googleId": "g-1", "email": "alice@example.com", "name": "Alice Smith",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	token := env["data"].(map[string]any)["token"].(string)

	rr, env = do(t, srv, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "google", env["data"].(map[string]any)["provider"])
}

func TestAvailabilityProbes(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "alice@example.com")

	rr, env := do(t, srv, http.MethodGet, "/api/auth/check-email/alice@example.com", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	data := env["data"].(map[string]any)
	assert.Equal(t, false, data["available"])
	assert.Equal(t, "local", data["provider"])

	rr, env = do(t, srv, http.MethodGet, "/api/auth/check-username/bob", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, env["data"].(map[string]any)["available"])
}

func TestGoogleAuthDisabled(t *testing.T) {
	srv := newTestServer(t)
	rr, env := do(t, srv, http.MethodGet, "/api/auth/google", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, false, env["success"])
}

func TestDeficitActiveAndRangeEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rr, env := do(t, srv, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	userID := strconv.FormatInt(int64(env["data"].(map[string]any)["id"].(float64)), 10)

	rr, _ = do(t, srv, http.MethodPost, "/api/deficits", token, map[string]any{
		"name": "january", "amount": "100",
		"start_date": "2025-01-01", "end_date": "2025-01-31",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, env = do(t, srv, http.MethodGet, "/api/deficits/user/"+userID+"/active?date=2025-01-15", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, env["data"].([]any), 1)

	rr, env = do(t, srv, http.MethodGet,
		"/api/deficits/user/"+userID+"/by-date-range?startDate=2025-02-01&endDate=2025-02-28", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, env["data"].([]any))

	rr, _ = do(t, srv, http.MethodGet, "/api/deficits/user/"+userID+"/by-date-range?startDate=2025-02-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExpenseExportCSV(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rr, _ := do(t, srv, http.MethodPost, "/api/avoided-expenses", token, map[string]any{
		"name": "with, comma", "amount": "9.99", "expense_date": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, _ = do(t, srv, http.MethodGet, "/api/avoided-expenses/export", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Body.String(), `"with, comma"`)
	assert.Contains(t, rr.Body.String(), "9.99")
}
