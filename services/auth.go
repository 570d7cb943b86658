package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/security"
	"farmfinance/backend/store"
)

const (
	msgAccountRequired = "You need to create an account first before logging in. Please click on Sign up / Register to get started."
	msgAccountInactive = "Your account has been deactivated. Please contact support."
	msgBadCredentials  = "Invalid credentials"
	msgUserExists      = "User already exists with that email or username"
	msgSignupDisabled  = "User registration is currently disabled"
)

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.SafeUser `json:"user"`
}

type AuthService struct {
	store    *store.Store
	hasher   security.Hasher
	tokens   *security.TokenIssuer
	settings *SettingsService
	now      func() time.Time
}

func NewAuthService(s *store.Store, hasher security.Hasher, tokens *security.TokenIssuer, settings *SettingsService) *AuthService {
	return &AuthService{store: s, hasher: hasher, tokens: tokens, settings: settings, now: time.Now}
}

// Register creates a local account and signs the new user in.
func (a *AuthService) Register(ctx context.Context, in models.RegisterInput) (AuthResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return AuthResult{}, err
	}

	if a.settings != nil && !a.settings.Bool(ctx, SettingEnableRegistration, true) {
		return AuthResult{}, models.NewError(models.ErrForbidden, msgSignupDisabled)
	}

	exists, err := a.store.UserExists(ctx, in.Email, in.Username)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, models.NewError(models.ErrConflict, msgUserExists)
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := a.now().UTC()
	u := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		AuthProvider: models.AuthProviderLocal,
		LastLogin:    &now,
		Preferences:  models.DefaultPreferences(),
		FarmDetails:  models.DefaultFarmDetails(),
	}
	if err := a.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return AuthResult{}, models.NewError(models.ErrConflict, msgUserExists)
		}
		return AuthResult{}, err
	}

	log := logger.FromContext(ctx)
	log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("User registered")

	return a.session(u)
}

// Login checks the credentials and issues a token. Unknown, inactive and
// mismatched accounts get distinct messages.
func (a *AuthService) Login(ctx context.Context, in models.LoginInput) (AuthResult, error) {
	if err := in.Validate(); err != nil {
		return AuthResult{}, err
	}

	u, err := a.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		return AuthResult{}, models.NewError(models.ErrUnauthorized, msgAccountRequired)
	}
	if err != nil {
		return AuthResult{}, err
	}

	if !u.IsActive {
		return AuthResult{}, models.NewError(models.ErrUnauthorized, msgAccountInactive)
	}

	ok, err := a.hasher.Verify(u.PasswordHash, in.Password)
	if err != nil {
		// Firebase-only accounts carry no usable hash.
		log := logger.FromContext(ctx)
		log.Debug().Err(err).Str("user_id", u.ID).Msg("Password hash not comparable")
	}
	if !ok {
		return AuthResult{}, models.NewError(models.ErrUnauthorized, msgBadCredentials)
	}

	now := a.now().UTC()
	if err := a.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		return AuthResult{}, err
	}
	u.LastLogin = &now

	return a.session(u)
}

func (a *AuthService) session(u models.User) (AuthResult, error) {
	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{Token: token, User: models.NewSafeUser(u)}, nil
}
