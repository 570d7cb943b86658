package middleware

import (
	"context"
	"encoding/base64"
	"fmt"

	"farmfinance/backend/config"
	"farmfinance/backend/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase ID tokens. *auth.Client implements it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// InitializeFirebase builds a Firebase Auth client from the configured
// service account. It returns a nil client when no credentials are set, in
// which case only local session tokens are accepted.
func InitializeFirebase(ctx context.Context, cfg *config.Config) (*auth.Client, error) {
	log := logger.FromContext(ctx)

	var credentials []byte
	switch {
	case cfg.FirebaseServiceAccountJSON != "":
		log.Info().Msg("Using JSON Firebase credentials from environment")
		credentials = []byte(cfg.FirebaseServiceAccountJSON)
	case cfg.FirebaseServiceAccountBase64 != "":
		log.Info().Msg("Using base64-encoded Firebase credentials from environment")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountBase64)
		if err != nil {
			return nil, fmt.Errorf("decode firebase credentials: %w", err)
		}
		credentials = decoded
	default:
		log.Info().Msg("No Firebase credentials found, Firebase sign-in disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase auth client: %w", err)
	}

	log.Info().Str("project", cfg.FirebaseProjectID).Msg("Firebase Admin SDK initialized")
	return client, nil
}

// firebaseEmail pulls the verified email claim out of a Firebase token.
func firebaseEmail(token *auth.Token) string {
	if token == nil {
		return ""
	}
	email, _ := token.Claims["email"].(string)
	return email
}
