package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowedOrigins := []string{
		"https://example.com",
		"http://localhost:5173",
	}

	testCases := []struct {
		name     string
		origin   string
		expected bool
	}{
		{
			name:     "Allowed origin",
			origin:   "https://example.com",
			expected: true,
		},
		{
			name:     "Another allowed origin",
			origin:   "http://localhost:5173",
			expected: true,
		},
		{
			name:     "Disallowed origin",
			origin:   "https://evil.com",
			expected: false,
		},
		{
			name:     "Empty origin",
			origin:   "",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := isAllowedOrigin(tc.origin, allowedOrigins)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for origin %s", tc.expected, result, tc.origin)
			}
		})
	}
}

func TestCORSHeaders(t *testing.T) {
	allowed := []string{"https://farm.example.com", "https://admin.example.com"}

	testCases := []struct {
		name           string
		development    bool
		origin         string
		expectedOrigin string
	}{
		{"Allowed origin is echoed", false, "https://admin.example.com", "https://admin.example.com"},
		{"Unknown origin gets the first allowed", false, "https://evil.com", "https://farm.example.com"},
		{"Development echoes any origin", true, "http://192.168.1.4:5173", "http://192.168.1.4:5173"},
		{"No origin", true, "", "https://farm.example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := CORS(allowed, tc.development)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.expectedOrigin {
				t.Errorf("Expected origin %q, got %q", tc.expectedOrigin, got)
			}
			if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("Expected credentials to be allowed")
			}
			if !called {
				t.Error("Expected the next handler to run")
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if called {
		t.Error("Preflight should not reach the next handler")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected a default origin to be allowed, got %q", got)
	}
}
