package middleware

import (
	"net/http"
	"strings"

	"farmfinance/backend/models"
	"farmfinance/backend/services"
)

// RequireRole is a middleware that ensures the user has at least the specified role
func RequireRole(requiredRole string) func(http.Handler) http.Handler {
	message := "Access denied. " + titleCase(requiredRole) + " privileges required."
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeFailure(w, http.StatusUnauthorized, "No authentication token, access denied", "")
				return
			}

			if !services.IsRoleAtLeast(id.Role, requiredRole) {
				writeFailure(w, http.StatusForbidden, message, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a middleware that ensures the user is an admin
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
