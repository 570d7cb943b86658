package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/security"
)

// Define context keys
type contextKey string

const UserIDKey contextKey = "user_id"
const UserRoleKey contextKey = "user_role"

const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"
)

// UserLoader is the part of the store the authenticator needs.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Authenticator resolves the bearer token of a request to an active user.
// Local session tokens are tried first; when a Firebase verifier is
// configured, a token that is not a local one is checked as a Firebase ID
// token and mapped to the local account with the same email.
type Authenticator struct {
	tokens   *security.TokenIssuer
	users    UserLoader
	firebase FirebaseVerifier
}

func NewAuthenticator(tokens *security.TokenIssuer, users UserLoader, fb FirebaseVerifier) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, firebase: fb}
}

// Middleware rejects requests without a valid token and stores the caller's
// identity in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for OPTIONS requests (CORS preflight)
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r.Header.Get("Authorization"))
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, "No authentication token, access denied", "")
			return
		}

		ctx := r.Context()
		log := logger.FromContext(ctx)

		user, err := a.resolve(ctx, token)
		switch {
		case err == nil:
		case security.IsExpired(err):
			writeFailure(w, http.StatusUnauthorized, "Token has expired. Please login again.", CodeTokenExpired)
			return
		case errors.Is(err, models.ErrNotFound):
			writeFailure(w, http.StatusUnauthorized, "Token is valid, but user not found", "")
			return
		case errors.Is(err, errBadToken):
			log.Debug().Err(err).Msg("Rejected token")
			writeFailure(w, http.StatusUnauthorized, "Token is not valid", CodeInvalidToken)
			return
		default:
			log.Error().Err(err).Msg("Failed to load authenticated user")
			writeFailure(w, http.StatusInternalServerError, "Internal server error", "")
			return
		}

		if !user.IsActive {
			writeFailure(w, http.StatusUnauthorized, "Your account has been deactivated. Please contact support.", "")
			return
		}

		ctx = WithIdentity(ctx, models.Identity{UserID: user.ID, Role: user.Role})
		ctx = logger.WithContext(ctx, logger.WithFields(log, map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		}))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var errBadToken = errors.New("invalid token")

func (a *Authenticator) resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := a.tokens.Parse(token)
	if err == nil {
		return a.users.GetUserByID(ctx, claims.UserID)
	}
	if security.IsExpired(err) {
		return models.User{}, err
	}
	if a.firebase == nil {
		return models.User{}, errors.Join(errBadToken, err)
	}

	fbToken, fbErr := a.firebase.VerifyIDToken(ctx, token)
	if fbErr != nil {
		return models.User{}, errors.Join(errBadToken, fbErr)
	}
	email := firebaseEmail(fbToken)
	if email == "" {
		return models.User{}, errors.Join(errBadToken, errors.New("firebase token has no email"))
	}
	return a.users.GetUserByEmail(ctx, email)
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// WithIdentity stores the authenticated caller in ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.UserID)
	return context.WithValue(ctx, UserRoleKey, id.Role)
}

// IdentityFromContext returns the caller stored by the authenticator.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return models.Identity{}, false
	}
	role, _ := ctx.Value(UserRoleKey).(string)
	return models.Identity{UserID: userID, Role: role}, true
}
