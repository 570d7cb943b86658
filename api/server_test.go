package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farmfinance/backend/database"
	"farmfinance/backend/handlers"
	"farmfinance/backend/logger"
	"farmfinance/backend/middleware"
	"farmfinance/backend/models"
	"farmfinance/backend/reports"
	"farmfinance/backend/security"
	"farmfinance/backend/services"
	"farmfinance/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	http.Handler
	store *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, database.DriverSQLite))

	st := store.New(db, database.DriverSQLite)
	settings := services.NewSettingsService(st)
	_, err = settings.EnsureDefaults(context.Background())
	require.NoError(t, err)

	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	h := handlers.New(handlers.Deps{
		Store:    st,
		Auth:     services.NewAuthService(st, security.NewHasher(4), tokens, settings),
		Ledger:   services.NewLedgerService(st, time.UTC),
		Users:    services.NewUserService(st),
		Feedback: services.NewFeedbackService(st),
		Settings: settings,
		Reporter: reports.NewReporter(st, time.UTC),
	})
	srv := NewServer(Options{
		Handler:        h,
		Authenticator:  middleware.NewAuthenticator(tokens, st, nil),
		Logger:         logger.NewWithWriter(&bytes.Buffer{}),
		AllowedOrigins: []string{"https://farm.example.com"},
	})
	return &testServer{Handler: srv.Handler(), store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	var out map[string]interface{}
	if rr.Body.Len() > 0 && rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr, out
}

func (s *testServer) signUp(t *testing.T, username string) (token, id string) {
	t.Helper()
	rr, body := s.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return body["token"].(string), body["user"].(map[string]interface{})["id"].(string)
}

func TestRoutesServedWithAndWithoutPrefix(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		rr, body := s.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "ok", body["status"], path)
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader), path)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rr, body := s.do(t, "GET", "/api/expenses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "No authentication token, access denied", body["message"])

	rr, body = s.do(t, "GET", "/expenses", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestLedgerFlowThroughRouter(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp(t, "asha")

	rr, body := s.do(t, "POST", "/api/expenses", token, map[string]interface{}{
		"amount": 120.5, "category": "Fertilizer", "date": "2024-04-02",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := body["data"].(map[string]interface{})["id"].(string)

	// /expenses/stats must not be captured by /expenses/{id}
	rr, body = s.do(t, "GET", "/api/expenses/stats", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, body["data"], "categorySummary")

	rr, _ = s.do(t, "GET", "/expenses/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, body = s.do(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "asha", body["user"].(map[string]interface{})["username"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	token, id := s.signUp(t, "asha")

	rr, body := s.do(t, "GET", "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Access denied. Admin privileges required.", body["message"])

	ctx := context.Background()
	u, err := s.store.GetUserByID(ctx, id)
	require.NoError(t, err)
	u.Role = models.RoleAdmin
	require.NoError(t, s.store.UpdateUser(ctx, &u))

	rr, body = s.do(t, "GET", "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, body, "stats")

	rr, body = s.do(t, "GET", "/admin/stats/monthly?year=2024", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["monthlyData"], 12)
}

func TestPreflightAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/expenses", nil)
	req.Header.Set("Origin", "https://farm.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://farm.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	rr, body := s.do(t, "GET", "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route not found", body["message"])
}
