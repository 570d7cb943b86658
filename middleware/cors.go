package middleware

import (
	"net/http"

	"farmfinance/backend/logger"
)

// defaultOrigins are used when no origins are configured.
var defaultOrigins = []string{
	"http://localhost:5173", // Vite development server
	"http://localhost:3000",
	"http://localhost:8080",
}

// CORS creates a middleware that handles CORS headers. In development any
// origin is echoed back.
func CORS(allowedOrigins []string, development bool) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultOrigins
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case isAllowedOrigin(origin, allowedOrigins):
				w.Header().Set("Access-Control-Allow-Origin", origin)
			case development && origin != "":
				log := logger.FromContext(r.Context())
				log.Debug().Str("origin", origin).Msg("Development mode: allowing origin")
				w.Header().Set("Access-Control-Allow-Origin", origin)
			default:
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigins[0])
			}
			w.Header().Add("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization, X-Requested-With, Accept, Origin, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "3600") // Cache preflight request results

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isAllowedOrigin checks if the provided origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}
