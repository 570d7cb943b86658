package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/security"

	"firebase.google.com/go/v4/auth"
)

type memoryUsers map[string]models.User

func (m memoryUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := m[id]
	if !ok {
		return models.User{}, fmt.Errorf("get user: %w", models.ErrNotFound)
	}
	return u, nil
}

func (m memoryUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range m {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("get user by email: %w", models.ErrNotFound)
}

type fakeFirebase map[string]string

func (f fakeFirebase) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	email, ok := f[idToken]
	if !ok {
		return nil, errors.New("firebase: invalid id token")
	}
	return &auth.Token{UID: "fb-" + email, Claims: map[string]interface{}{"email": email}}, nil
}

func decodeFailure(t *testing.T, rr *httptest.ResponseRecorder) Failure {
	t.Helper()
	var body Failure
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestExtractToken(t *testing.T) {
	testCases := []struct {
		name          string
		authHeader    string
		expectedToken string
	}{
		{
			name:          "Valid Bearer token",
			authHeader:    "Bearer test-token-123",
			expectedToken: "test-token-123",
		},
		{
			name:          "Missing Bearer prefix",
			authHeader:    "test-token-123",
			expectedToken: "",
		},
		{
			name:          "Empty auth header",
			authHeader:    "",
			expectedToken: "",
		},
		{
			name:          "Bearer with no token",
			authHeader:    "Bearer ",
			expectedToken: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token := extractToken(tc.authHeader)
			if token != tc.expectedToken {
				t.Errorf("Expected token '%s', got '%s'", tc.expectedToken, token)
			}
		})
	}
}

func TestAuthenticator(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	expired := security.NewTokenIssuer("test-secret", time.Nanosecond)

	users := memoryUsers{
		"u1": {ID: "u1", Email: "ravi@example.com", Role: models.RoleUser, IsActive: true},
		"u2": {ID: "u2", Email: "old@example.com", Role: models.RoleUser, IsActive: false},
		"u3": {ID: "u3", Email: "meera@example.com", Role: models.RoleAdmin, IsActive: true},
	}
	firebase := fakeFirebase{"firebase-token": "meera@example.com", "stranger-token": "nobody@example.com"}

	valid, _ := issuer.Issue("u1")
	inactive, _ := issuer.Issue("u2")
	ghost, _ := issuer.Issue("deleted")
	stale, _ := expired.Issue("u1")
	time.Sleep(time.Millisecond)

	testCases := []struct {
		name         string
		header       string
		expectedCode int
		expectedUser string
		message      string
		code         string
	}{
		{"Valid token", "Bearer " + valid, http.StatusOK, "u1", "", ""},
		{"Firebase token", "Bearer firebase-token", http.StatusOK, "u3", "", ""},
		{"No token", "", http.StatusUnauthorized, "", "No authentication token, access denied", ""},
		{"Garbage token", "Bearer nope", http.StatusUnauthorized, "", "Token is not valid", CodeInvalidToken},
		{"Expired token", "Bearer " + stale, http.StatusUnauthorized, "", "Token has expired. Please login again.", CodeTokenExpired},
		{"User deleted", "Bearer " + ghost, http.StatusUnauthorized, "", "Token is valid, but user not found", ""},
		{"Firebase user without account", "Bearer stranger-token", http.StatusUnauthorized, "", "Token is valid, but user not found", ""},
		{"Inactive user", "Bearer " + inactive, http.StatusUnauthorized, "", "Your account has been deactivated. Please contact support.", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen models.Identity
			h := NewAuthenticator(issuer, users, firebase).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.expectedCode {
				t.Fatalf("Expected status %d, got %d (%s)", tc.expectedCode, rr.Code, rr.Body.String())
			}
			if tc.expectedCode == http.StatusOK {
				if seen.UserID != tc.expectedUser {
					t.Errorf("Expected user %s in context, got %s", tc.expectedUser, seen.UserID)
				}
				return
			}

			body := decodeFailure(t, rr)
			if body.Success {
				t.Error("Expected success to be false")
			}
			if body.Message != tc.message {
				t.Errorf("Expected message %q, got %q", tc.message, body.Message)
			}
			if body.Code != tc.code {
				t.Errorf("Expected code %q, got %q", tc.code, body.Code)
			}
		})
	}
}

func TestAuthenticatorWithoutFirebase(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	h := NewAuthenticator(issuer, memoryUsers{}, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	req.Header.Set("Authorization", "Bearer firebase-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticatorSkipsPreflight(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	h := NewAuthenticator(issuer, memoryUsers{}, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/expenses", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected preflight to pass through, got %d", rr.Code)
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter(&buf)

	var seen string
	h := RequestID(base)(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/expenses", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "req-42" {
		t.Errorf("Expected request id req-42 in context, got %q", seen)
	}
	if rr.Header().Get(RequestIDHeader) != "req-42" {
		t.Error("Expected the request id to be echoed")
	}
	out := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"status":201`, `"path":"/expenses"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log line to contain %s, got %s", want, out)
		}
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}
	if body := decodeFailure(t, rr); body.Message != "Internal server error" {
		t.Errorf("Unexpected message %q", body.Message)
	}
}
