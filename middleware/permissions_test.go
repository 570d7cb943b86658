package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"farmfinance/backend/models"
)

func TestRequireAdmin(t *testing.T) {
	testCases := []struct {
		name     string
		identity *models.Identity
		expected int
	}{
		{"Admin passes", &models.Identity{UserID: "u1", Role: models.RoleAdmin}, http.StatusOK},
		{"User is forbidden", &models.Identity{UserID: "u2", Role: models.RoleUser}, http.StatusForbidden},
		{"Anonymous is unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tc.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tc.identity))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, rr.Code)
			}
			if tc.expected == http.StatusForbidden {
				body := decodeFailure(t, rr)
				if body.Message != "Access denied. Admin privileges required." {
					t.Errorf("Unexpected message %q", body.Message)
				}
			}
		})
	}
}

func TestRequireRoleUserAllowsAdmin(t *testing.T) {
	h := RequireRole(models.RoleUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), models.Identity{UserID: "a", Role: models.RoleAdmin}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
}
